package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nmodels_dir: /tmp\nmodel: m1\nmax_tokens: 123\ntemperature: 0.5\n")
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":9999" || cfg.ModelsDir != "/tmp" || cfg.Model != "m1" || cfg.MaxTokens != 123 || cfg.Temperature != 0.5 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","models_dir":"/m","model":"m2","template":"gemma","threads":4}`)
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":7070" || cfg.ModelsDir != "/m" || cfg.Model != "m2" || cfg.Template != "gemma" || cfg.Threads != 4 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nmodels_dir=\"/x\"\nmodel=\"m3\"\ncontext_size=2048\n")
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":8081" || cfg.ModelsDir != "/x" || cfg.Model != "m3" || cfg.ContextSize != 2048 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil { t.Fatalf("expected error on empty path") }
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil { t.Fatalf("expected unsupported extension error") }
}

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "addr: :8080\n: broken\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected YAML unmarshal error")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Addr != DefaultAddr || cfg.ModelsDir != DefaultModelsDir || cfg.Model != DefaultModelID {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxTokens != DefaultMaxTokens || cfg.Temperature != DefaultTemperature {
		t.Fatalf("unexpected generation defaults: %+v", cfg)
	}

	// Explicit values survive.
	cfg = Config{Addr: ":1", Model: "m", MaxTokens: 5, Temperature: 0.1}
	cfg.ApplyDefaults()
	if cfg.Addr != ":1" || cfg.Model != "m" || cfg.MaxTokens != 5 || cfg.Temperature != 0.1 {
		t.Fatalf("defaults clobbered explicit values: %+v", cfg)
	}
}

func TestHubToken(t *testing.T) {
	t.Setenv(HubTokenEnv, "  hf_abc123  ")
	if got := HubToken(); got != "hf_abc123" {
		t.Fatalf("token=%q", got)
	}
	t.Setenv(HubTokenEnv, "")
	if got := HubToken(); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}
