package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application.
type Config struct {
	// Hostname is the public hostname where this service is reachable.
	Hostname string `env:"BULLETIN_HOSTNAME" envDefault:"localhost"`

	// Port is the HTTP server port.
	Port int `env:"PORT" envDefault:"3000"`

	// DatabaseURL selects the record store: postgres:// for Postgres,
	// sqlite:// or a bare path for SQLite.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://bulletin.db"`

	// ImageDir is where uploaded images are stored.
	ImageDir string `env:"BULLETIN_IMAGE_DIR" envDefault:"./data/image"`

	// DefaultLocale is used when Accept-Language matches nothing supported.
	DefaultLocale string `env:"BULLETIN_DEFAULT_LOCALE" envDefault:"ja"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// OTLPEndpoint enables tracing when set.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// ServiceName is reported as the service.name trace resource.
	ServiceName string `env:"BULLETIN_SERVICE_NAME" envDefault:"bulletin"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Level parses LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %d", cfg.Port)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(cfg.ImageDir) == "" {
		return nil, fmt.Errorf("BULLETIN_IMAGE_DIR is required")
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
