package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	d := t.TempDir()
	touch(t, filepath.Join(d, "gemma-3-1b-it.Q4_K_M.gguf"))
	touch(t, filepath.Join(d, "notes.txt"))
	touch(t, filepath.Join(d, "qwen2-7b", "model.gguf"))

	models, err := LoadDir(d)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("models=%d: %+v", len(models), models)
	}
	byID := map[string]string{}
	for _, m := range models {
		byID[m.ID] = m.Family
	}
	if fam, ok := byID["gemma-3-1b-it.Q4_K_M"]; !ok || fam != "gemma" {
		t.Fatalf("gemma entry wrong: %+v", models)
	}
	if fam, ok := byID["qwen2-7b"]; !ok || fam != "qwen2" {
		t.Fatalf("snapshot-dir entry wrong: %+v", models)
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestResolveByID(t *testing.T) {
	d := t.TempDir()
	touch(t, filepath.Join(d, "gemma-3-1b-it.Q4_K_M.gguf"))

	m, err := Resolve(d, "gemma-3-1b-it.Q4_K_M")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.Family != "gemma" || m.Path == "" {
		t.Fatalf("unexpected model: %+v", m)
	}

	// Prefix match finds the quantized file.
	if _, err := Resolve(d, "gemma-3-1b-it"); err != nil {
		t.Fatalf("prefix resolve: %v", err)
	}
}

func TestResolveByPath(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "mistral-7b.gguf")
	touch(t, p)

	m, err := Resolve(d, p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.ID != "mistral-7b" || m.Family != "mistral" {
		t.Fatalf("unexpected model: %+v", m)
	}

	if _, err := Resolve(d, filepath.Join(d, "missing.gguf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResolveNotFound(t *testing.T) {
	d := t.TempDir()
	touch(t, filepath.Join(d, "other.gguf"))
	if _, err := Resolve(d, "gemma"); err == nil {
		t.Fatalf("expected not-found error")
	}
	if _, err := Resolve(d, ""); err == nil {
		t.Fatalf("expected error for empty ref")
	}
}
