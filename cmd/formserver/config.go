package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from .env files.
type Config struct {
	Addr            string        `env:"FORMSERVER_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"FORMSERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"FORMSERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"FORMSERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	MaxBodyBytes    int64         `env:"FORMSERVER_MAX_BODY_BYTES" envDefault:"1048576"`
	LogLevel        string        `env:"FORMSERVER_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"FORMSERVER_LOG_FORMAT" envDefault:"json"`
	Localize        bool          `env:"FORMSERVER_LOCALIZE" envDefault:"true"`
	Language        string        `env:"FORMSERVER_LANGUAGE" envDefault:"en"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName     string        `env:"OTEL_SERVICE_NAME" envDefault:"formserver"`
}

// LoadConfig loads the given .env files (missing files are ignored) and
// parses the environment into a Config.
func LoadConfig(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("formserver: load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("formserver: parse env: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("formserver: log level %q: %w", cfg.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("formserver: log format %q: must be json or text", cfg.LogFormat)
}
