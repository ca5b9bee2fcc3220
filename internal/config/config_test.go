package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, time.Duration(0), cfg.SessionTTL)
	assert.Equal(t, "./data/quest.db", cfg.SQLitePath)
	assert.Equal(t, uint64(0), cfg.RandomSeed)
	assert.True(t, cfg.PublishEvents)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STORAGE_BACKEND", " SQLite ")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("SQLITE_PATH", "/tmp/q.db")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("PUBLISH_EVENTS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "/tmp/q.db", cfg.SQLitePath)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.False(t, cfg.PublishEvents)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "STORAGE_BACKEND", "postgres"},
		{"negative ttl", "SESSION_TTL", "-1m"},
		{"malformed ttl", "SESSION_TTL", "soon"},
		{"malformed seed", "RANDOM_SEED", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"Info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), "level %q", in)
	}
}
