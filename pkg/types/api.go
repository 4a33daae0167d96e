package types

// ChatRequest is the payload accepted by POST /chat: the full ordered
// transcript plus optional generation parameters.
type ChatRequest struct {
	// Ordered conversation so far, oldest first. The last message is the
	// turn to answer.
	Messages []Message `json:"messages"`
	// Maximum number of new tokens to generate. Zero or omitted uses the
	// server default.
	// example: 200
	MaxTokens int `json:"max_tokens,omitempty" example:"200"`
	// Sampling temperature (higher = more random). Zero or omitted uses the
	// server default.
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
}

// ChatResponse is the assistant message produced for a ChatRequest.
type ChatResponse struct {
	// Always "assistant".
	// example: assistant
	Role Role `json:"role" example:"assistant"`
	// Generated reply text.
	// example: Hi! How can I help?
	Content string `json:"content" example:"Hi! How can I help?"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// HealthResponse is returned by GET / as a cheap liveness probe.
type HealthResponse struct {
	// example: ok
	Status string `json:"status" example:"ok"`
	// ID of the loaded model.
	// example: gemma-3-1b-it-q4
	Model string `json:"model" example:"gemma-3-1b-it-q4"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// ID of the loaded model.
	// example: gemma-3-1b-it-q4
	Model string `json:"model" example:"gemma-3-1b-it-q4"`
	// Execution device the model is bound to (cuda, metal or cpu).
	// example: cuda
	Device string `json:"device" example:"cuda"`
	// Numeric precision in use (f16 on accelerators, f32 on cpu).
	// example: f16
	Precision string `json:"precision" example:"f16"`
	// Lifecycle state of the model handle (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Total requests served since startup.
	// example: 42
	RequestsTotal uint64 `json:"requests_total" example:"42"`
	// Last generation error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
