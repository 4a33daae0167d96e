package types

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known chat roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single role-tagged turn in a conversation. Messages are
// immutable once created; an ordered slice of them forms the transcript.
type Message struct {
	// Author of the message.
	// example: user
	Role Role `json:"role" example:"user"`
	// Message text.
	// example: Hello there!
	Content string `json:"content" example:"Hello there!"`
}

// Model describes a loadable snapshot on disk.
type Model struct {
	// Stable identifier for the model.
	// example: gemma-3-1b-it-q4
	ID string `json:"id" example:"gemma-3-1b-it-q4"`
	// Human-friendly name.
	// example: Gemma 3 1B (Q4)
	Name string `json:"name" example:"Gemma 3 1B (Q4)"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/gemma-3-1b-it.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/gemma-3-1b-it.Q4_K_M.gguf"`
	// Optional family used to pick the chat template (e.g., gemma, llama3).
	// example: gemma
	Family string `json:"family,omitempty" example:"gemma"`
}
