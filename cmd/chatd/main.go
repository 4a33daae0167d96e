package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"chatd/internal/config"
	"chatd/internal/device"
	"chatd/internal/engine"
	"chatd/internal/httpapi"
	"chatd/internal/registry"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := config.DefaultAddr
	if v := os.Getenv("CHATD_ADDR"); v != "" {
		defaultAddr = v
	}
	defaultModel := config.DefaultModelID
	if v := os.Getenv("CHATD_MODEL"); v != "" {
		defaultModel = v
	}
	configPath := flag.String("config", "", "Optional config file (yaml/json/toml)")
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	modelsDir := flag.String("models-dir", config.DefaultModelsDir, "Directory holding model snapshots")
	model := flag.String("model", defaultModel, "Model id or path to a *.gguf file")
	template := flag.String("template", "", "Chat template family override (gemma|llama3|qwen2|mistral|plain)")
	maxTokens := flag.Int("max-tokens", 0, "Default maximum new tokens per request")
	temperature := flag.Float64("temperature", 0, "Default sampling temperature")
	ctxSize := flag.Int("ctx-size", 0, "Model context size (0=library default)")
	threads := flag.Int("threads", 0, "Inference threads (0=library default)")
	logFile := flag.String("log-file", "", "Also write logs to this file")
	logLevel := flag.String("log-level", "", "Log level: debug|info|warn|error")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated CORS origins (empty disables CORS)")
	flag.Parse()

	cfg := config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			boot := bootstrapLogger()
			boot.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
	}
	// Flags win over the config file.
	applyFlag(&cfg.Addr, *addr, defaultAddr)
	applyFlag(&cfg.ModelsDir, *modelsDir, config.DefaultModelsDir)
	applyFlag(&cfg.Model, *model, defaultModel)
	if *template != "" {
		cfg.Template = *template
	}
	if *maxTokens > 0 {
		cfg.MaxTokens = *maxTokens
	}
	if *temperature > 0 {
		cfg.Temperature = *temperature
	}
	if *ctxSize > 0 {
		cfg.ContextSize = *ctxSize
	}
	if *threads > 0 {
		cfg.Threads = *threads
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if origins := splitCSV(*corsOrigins); len(origins) > 0 {
		cfg.CORSEnabled = true
		cfg.CORSOrigins = origins
	}
	cfg.ApplyDefaults()

	log := newLogger(cfg)

	dev := device.Detect()
	log.Info().
		Str("device", string(dev.Kind)).
		Str("precision", string(dev.Precision)).
		Str("cpu_variant", dev.Variant).
		Msg("device selected")

	mdl, err := registry.Resolve(cfg.ModelsDir, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve model")
	}

	eng := engine.New(engine.Config{
		Model:       mdl,
		Device:      dev,
		Template:    cfg.Template,
		ContextSize: cfg.ContextSize,
		Threads:     cfg.Threads,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Logger:      log,
	})
	// Startup-only concern: a bad snapshot means the process cannot serve.
	if err := eng.Load(); err != nil {
		log.Fatal().Err(err).Str("model", mdl.ID).Msg("failed to load model")
	}
	defer eng.Close()

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{"GET", "POST", "OPTIONS"}, []string{"Accept", "Content-Type"})

	mux := httpapi.NewMux(eng)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("model", mdl.ID).Msg("chatd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}

// applyFlag sets dst from a flag value unless the flag kept its default and
// the config file already provided one.
func applyFlag(dst *string, val, def string) {
	if val != def || *dst == "" {
		*dst = val
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		p := strings.TrimSpace(part)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// bootstrapLogger is used before the configured logger exists.
func bootstrapLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// newLogger builds the process logger: console output, optional file copy,
// level from config.
func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.LogFile != "" {
		f, ferr := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if ferr == nil {
			w = zerolog.MultiLevelWriter(w, f)
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
