//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaAdapter loads gguf models in-process via go-llama.cpp.
type llamaAdapter struct{}

func NewLlamaAdapter() InferenceAdapter { return &llamaAdapter{} }

// llamaSession owns the loaded model.
type llamaSession struct {
	model   *llama.LLama
	threads int
}

func (a *llamaAdapter) Start(modelPath string, opts StartOptions) (InferSession, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{}
	if opts.ContextSize > 0 {
		mo = append(mo, llama.SetContext(opts.ContextSize))
	}
	if opts.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(opts.GPULayers))
	}
	if opts.F16 {
		mo = append(mo, llama.EnableF16Memory)
	}
	m, err := llama.New(modelPath, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaSession{model: m, threads: opts.Threads}, nil
}

func (s *llamaSession) Generate(ctx context.Context, prompt string, params InferParams, onToken func(string) error) (FinalResult, error) {
	if s.model == nil {
		return FinalResult{}, errors.New("llama model not initialized")
	}

	// Bridge token streaming to onToken and respect cancellation.
	s.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if onToken != nil {
			if err := onToken(tok); err != nil {
				return false
			}
		}
		return true
	})
	po := mapInferParamsToPredictOptions(params, s.threads)
	text, err := s.model.Predict(prompt, po...)
	if err != nil {
		if ctx.Err() != nil {
			return FinalResult{}, ctx.Err()
		}
		return FinalResult{}, err
	}
	return FinalResult{
		Content:      text,
		FinishReason: "stop",
	}, nil
}

func (s *llamaSession) Close() error {
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}
func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// mapInferParamsToPredictOptions converts adapter params into go-llama.cpp options.
func mapInferParamsToPredictOptions(params InferParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(maxi(1, params.MaxTokens)),
		llama.SetThreads(maxi(1, threads)),
		llama.SetTopP(zf(params.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(params.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(zf(params.Temperature, llama.DefaultOptions.Temperature)),
	}
	if params.Seed != 0 {
		po = append(po, llama.SetSeed(params.Seed))
	}
	if len(params.Stop) > 0 {
		po = append(po, llama.SetStopWords(params.Stop...))
	}
	return po
}
