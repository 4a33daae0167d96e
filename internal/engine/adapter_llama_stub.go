//go:build !llama

package engine

// This file provides a no-CGO stub for the llama adapter. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real adapter lives in adapter_llama.go (tagged 'llama').

import (
	"context"
)

// llamaBuilt indicates this binary was compiled without real llama support.
var llamaBuilt = false

// llamaAdapter is a stub that satisfies InferenceAdapter but refuses to load
// a model without the 'llama' build tag. This avoids any mocked behavior in
// production binaries built without CGO support.
type llamaAdapter struct{}

func NewLlamaAdapter() InferenceAdapter { return &llamaAdapter{} }

type llamaSession struct{}

func (a *llamaAdapter) Start(modelPath string, opts StartOptions) (InferSession, error) {
	// Fail fast: llama runtime not available in this build.
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (s *llamaSession) Generate(ctx context.Context, prompt string, params InferParams, onToken func(string) error) (FinalResult, error) {
	select {
	case <-ctx.Done():
		return FinalResult{}, ctx.Err()
	default:
	}
	return FinalResult{}, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (s *llamaSession) Close() error { return nil }
