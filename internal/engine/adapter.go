package engine

import "context"

// InferenceAdapter abstracts the model runtime used by the Engine.
// Concrete implementations (e.g., llama.cpp) should satisfy this interface.
type InferenceAdapter interface {
	// Start loads the model at the given path and returns a reusable session.
	Start(modelPath string, opts StartOptions) (InferSession, error)
}

// StartOptions captures load-time parameters passed to the adapter.
type StartOptions struct {
	ContextSize int
	Threads     int
	// GPULayers is the number of layers to offload to the accelerator.
	// Zero keeps everything on the CPU.
	GPULayers int
	// F16 selects reduced-precision KV memory on accelerators.
	F16 bool
}

// InferSession is a loaded model. Sessions are not safe for concurrent use;
// the Engine serializes calls into one.
type InferSession interface {
	// Generate produces a completion for the prompt. The onToken callback,
	// when non-nil, is invoked per token. Implementations must return when
	// the context is canceled.
	Generate(ctx context.Context, prompt string, params InferParams, onToken func(string) error) (FinalResult, error)
	// Close releases any resources associated with the session.
	Close() error
}

// InferParams captures per-request generation parameters.
type InferParams struct {
	Temperature float32
	TopP        float32
	TopK        int
	MaxTokens   int
	Stop        []string
	Seed        int
}

// FinalResult summarizes the generation.
type FinalResult struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage contains token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
