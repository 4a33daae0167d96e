// Package registry resolves model snapshots on disk. A snapshot is either a
// single *.gguf file or a directory containing one (the layout produced by
// `chatctl pull`).
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chatd/internal/common/fsutil"
	"chatd/pkg/types"
)

// LoadDir scans a directory for *.gguf files and builds a model list from
// filenames. ID is the filename without extension; Path is absolute.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			// Snapshot directory: take the first gguf inside, named after the dir.
			if p, ok := firstGGUF(filepath.Join(abs, name)); ok {
				models = append(models, newModel(name, p))
			}
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		models = append(models, newModel(id, filepath.Join(abs, name)))
	}
	return models, nil
}

// Resolve maps a model reference to a snapshot on disk. The reference may be
// a direct path to a *.gguf file, or an id found under modelsDir.
func Resolve(modelsDir, ref string) (types.Model, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return types.Model{}, fmt.Errorf("empty model reference")
	}
	if strings.HasSuffix(strings.ToLower(ref), ".gguf") {
		p, err := fsutil.ExpandHome(ref)
		if err != nil {
			return types.Model{}, err
		}
		if !fsutil.PathExists(p) {
			return types.Model{}, fmt.Errorf("model file not found: %s", p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return types.Model{}, err
		}
		base := filepath.Base(abs)
		return newModel(strings.TrimSuffix(base, filepath.Ext(base)), abs), nil
	}
	models, err := LoadDir(modelsDir)
	if err != nil {
		return types.Model{}, fmt.Errorf("scan models dir: %w", err)
	}
	for _, m := range models {
		if m.ID == ref {
			return m, nil
		}
	}
	// Fall back to prefix match so "gemma-3-1b-it" finds a quantized file.
	for _, m := range models {
		if strings.HasPrefix(m.ID, ref) {
			return m, nil
		}
	}
	return types.Model{}, fmt.Errorf("model %q not found in %s (run `chatctl pull` first)", ref, modelsDir)
}

func newModel(id, path string) types.Model {
	return types.Model{ID: id, Name: id, Path: path, Family: familyOf(id)}
}

// firstGGUF returns the lexically first *.gguf file in dir.
func firstGGUF(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".gguf") {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// familyOf guesses the chat-template family from a model id.
func familyOf(id string) string {
	id = strings.ToLower(id)
	switch {
	case strings.Contains(id, "gemma"):
		return "gemma"
	case strings.Contains(id, "llama"):
		return "llama3"
	case strings.Contains(id, "qwen"):
		return "qwen2"
	case strings.Contains(id, "mistral"):
		return "mistral"
	}
	return ""
}
