package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Environment    string        `env:"ENVIRONMENT"     envDefault:"development"`
	LogLevelName   string        `env:"LOG_LEVEL"       envDefault:"info"`
	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string        `env:"REDIS_URL"       envDefault:"redis://localhost:6379/0"`
	SessionTTL     time.Duration `env:"SESSION_TTL"     envDefault:"0s"`
	SQLitePath     string        `env:"SQLITE_PATH"     envDefault:"./data/quest.db"`
	RandomSeed     uint64        `env:"RANDOM_SEED"     envDefault:"0"`
	PublishEvents  bool          `env:"PUBLISH_EVENTS"  envDefault:"true"`

	LogLevel slog.Level
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	switch cfg.StorageBackend {
	case BackendRedis, BackendSQLite, BackendMemory:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.SessionTTL < 0 {
		return nil, fmt.Errorf("SESSION_TTL must not be negative, got %s", cfg.SessionTTL)
	}

	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	return &cfg, nil
}

// IsProduction reports whether the logger should emit JSON.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
