// Package engine owns the process-wide model handle: one model loaded at
// startup, bound to the selected device, read-only for the rest of the
// process lifetime. There is no queueing, batching or multi-instance
// management here; requests are formatted, generated and returned one call
// at a time.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chatd/internal/device"
	"chatd/internal/prompt"
	"chatd/pkg/types"
)

// State is the lifecycle of the model handle.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Config collects everything the Engine needs at construction time.
type Config struct {
	Model  types.Model
	Device device.Device
	// Template overrides the family-derived chat template when set.
	Template    string
	ContextSize int
	Threads     int
	// GPULayers caps accelerator offload; zero lets the engine decide from
	// the device (full offload on accelerators, none on cpu).
	GPULayers int
	// Defaults for requests that omit generation parameters.
	MaxTokens   int
	Temperature float64

	Adapter InferenceAdapter
	Logger  zerolog.Logger
}

// GenOpts are per-request generation parameters. Zero values fall back to
// the engine defaults.
type GenOpts struct {
	MaxTokens   int
	Temperature float64
}

// fullOffload asks llama.cpp for every layer; it clamps to the model's count.
const fullOffload = 999

// Engine is the singleton model handle.
type Engine struct {
	model  types.Model
	dev    device.Device
	format prompt.Func
	opts   StartOptions

	defaultMaxTokens   int
	defaultTemperature float64

	adapter InferenceAdapter
	log     zerolog.Logger

	mu       sync.Mutex // guards state fields below
	genMu    sync.Mutex // serializes calls into the single session
	session  InferSession
	state    State
	lastErr  string
	requests uint64
	started  time.Time
}

// New constructs an Engine in the loading state. Call Load before serving.
func New(cfg Config) *Engine {
	tmpl := cfg.Template
	if tmpl == "" {
		tmpl = cfg.Model.Family
	}
	gpuLayers := cfg.GPULayers
	if gpuLayers == 0 && cfg.Device.Accelerated() {
		gpuLayers = fullOffload
	}
	adapter := cfg.Adapter
	if adapter == nil {
		adapter = NewLlamaAdapter()
	}
	return &Engine{
		model:  cfg.Model,
		dev:    cfg.Device,
		format: prompt.ForFamily(tmpl),
		opts: StartOptions{
			ContextSize: cfg.ContextSize,
			Threads:     cfg.Threads,
			GPULayers:   gpuLayers,
			F16:         cfg.Device.Precision == device.PrecisionF16,
		},
		defaultMaxTokens:   cfg.MaxTokens,
		defaultTemperature: cfg.Temperature,
		adapter:            adapter,
		log:                cfg.Logger,
		state:              StateLoading,
		started:            time.Now(),
	}
}

// Load opens the model session. A failure here is a startup failure: the
// caller is expected to exit rather than serve.
func (e *Engine) Load() error {
	e.log.Info().
		Str("model", e.model.ID).
		Str("path", e.model.Path).
		Str("device", string(e.dev.Kind)).
		Str("precision", string(e.dev.Precision)).
		Msg("loading model")
	sess, err := e.adapter.Start(e.model.Path, e.opts)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateError
		e.lastErr = err.Error()
		return err
	}
	e.session = sess
	e.state = StateReady
	e.log.Info().Str("model", e.model.ID).Msg("model loaded")
	return nil
}

// Ready reports whether the model handle can serve requests.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateReady && e.session != nil
}

// Model returns the loaded model descriptor.
func (e *Engine) Model() types.Model { return e.model }

// Generate formats the transcript with the model's chat template, runs one
// bounded generation pass and returns the assistant message. Calls are
// serialized; the underlying session is not reentrant.
func (e *Engine) Generate(ctx context.Context, messages []types.Message, opts GenOpts) (types.Message, error) {
	if len(messages) == 0 {
		return types.Message{}, ErrEmptyTranscript()
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = e.defaultMaxTokens
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = e.defaultTemperature
	}
	p := e.format(messages)

	e.mu.Lock()
	if e.state != StateReady || e.session == nil {
		e.mu.Unlock()
		return types.Message{}, ErrNotReady()
	}
	sess := e.session
	e.requests++
	e.mu.Unlock()

	start := time.Now()
	e.log.Debug().Int("messages", len(messages)).Int("prompt_chars", len(p)).Msg("generate start")

	// Hold the session lock for the duration of the call; one outstanding
	// generation at a time.
	e.genMu.Lock()
	res, err := sess.Generate(ctx, p, InferParams{
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
	}, nil)
	e.genMu.Unlock()

	if err != nil {
		e.mu.Lock()
		e.lastErr = err.Error()
		e.mu.Unlock()
		e.log.Error().Err(err).Dur("dur", time.Since(start)).Msg("generate failed")
		return types.Message{}, err
	}
	e.log.Debug().Dur("dur", time.Since(start)).Int("chars", len(res.Content)).Msg("generate done")
	return types.Message{Role: types.RoleAssistant, Content: strings.TrimSpace(res.Content)}, nil
}

// Status snapshots the handle for GET /status.
func (e *Engine) Status() types.StatusResponse {
	e.mu.Lock()
	defer e.mu.Unlock()
	return types.StatusResponse{
		Model:          e.model.ID,
		Device:         string(e.dev.Kind),
		Precision:      string(e.dev.Precision),
		State:          string(e.state),
		RequestsTotal:  e.requests,
		LastError:      e.lastErr,
		UptimeSeconds:  int64(time.Since(e.started).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
}

// Close releases the session. Only called on process shutdown.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Close()
	e.session = nil
	e.state = StateLoading
	return err
}
