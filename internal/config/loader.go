package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults applied by the daemon when a field is left unspecified.
const (
	DefaultAddr        = ":8080"
	DefaultModelsDir   = "models"
	DefaultModelID     = "gemma-3-1b-it"
	DefaultMaxTokens   = 200
	DefaultTemperature = 0.7
)

// HubTokenEnv names the environment variable carrying the Hugging Face
// access token used by the snapshot downloader.
const HubTokenEnv = "HUGGINGFACE_TOKEN"

// Config holds runtime parameters for the daemon and the client tools.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr        string  `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir   string  `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	Model       string  `json:"model" yaml:"model" toml:"model"`
	Template    string  `json:"template" yaml:"template" toml:"template"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	Temperature float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	ContextSize int     `json:"context_size" yaml:"context_size" toml:"context_size"`
	Threads     int     `json:"threads" yaml:"threads" toml:"threads"`
	LogLevel    string  `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFile     string  `json:"log_file" yaml:"log_file" toml:"log_file"`

	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unspecified fields in place.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.Model == "" {
		c.Model = DefaultModelID
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
}

// HubToken returns the Hugging Face access token from the environment.
func HubToken() string {
	return strings.TrimSpace(os.Getenv(HubTokenEnv))
}
