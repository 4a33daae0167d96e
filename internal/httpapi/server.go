package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatd/internal/engine"
	"chatd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Generate(ctx context.Context, messages []types.Message, opts engine.GenOpts) (types.Message, error)
	Status() types.StatusResponse
	Model() types.Model
	Ready() bool
}

// NewMux builds the router: one generation route plus health/status/metrics
// scaffolding.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)

	// Root doubles as the original health check: status plus model id.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.HealthResponse{Status: "ok", Model: svc.Model().ID})
	})

	r.Post("/chat", func(w http.ResponseWriter, r *http.Request) { handleChat(svc, w, r) })

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleChat godoc
// @Summary      Generate the next assistant message
// @Description  Formats the transcript with the model's chat template and runs one generation pass.
// @Accept       json
// @Produce      json
// @Param        request body types.ChatRequest true "Transcript and generation parameters"
// @Success      200 {object} types.ChatResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      503 {object} types.ErrorResponse
// @Failure      500 {object} types.ErrorResponse
// @Router       /chat [post]
func handleChat(svc Service, w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Messages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "messages are required")
		return
	}
	for _, m := range req.Messages {
		if !m.Role.Valid() {
			writeJSONError(w, http.StatusBadRequest, "unknown role: "+string(m.Role))
			return
		}
	}
	if strings.TrimSpace(req.Messages[len(req.Messages)-1].Content) == "" {
		writeJSONError(w, http.StatusBadRequest, "last message content is empty")
		return
	}

	start := time.Now()
	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()

	msg, err := svc.Generate(ctx, req.Messages, engine.GenOpts{
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		// If context was canceled (client disconnect or shutdown), just return.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := statusForError(err)
		IncrementGenerateFailure(reasonForStatus(status))
		writeJSONError(w, status, err.Error())
		logEnd(r, status, time.Since(start), err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(types.ChatResponse{Role: msg.Role, Content: msg.Content}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	logEnd(r, http.StatusOK, time.Since(start), nil)
}

// statusForError maps well-known engine errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case engine.IsEmptyTranscript(err):
		return http.StatusBadRequest
	case engine.IsNotReady(err), engine.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func reasonForStatus(status int) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusBadRequest:
		return "bad_request"
	}
	return "internal"
}
