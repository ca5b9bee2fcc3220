package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/internal/storage/redisstore"
	"github.com/jwebster45206/quest-engine/internal/storage/sqlite"
	"github.com/jwebster45206/quest-engine/pkg/engine"
	"github.com/jwebster45206/quest-engine/pkg/rules"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log := logger.Setup(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, notifier, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open storage", "backend", cfg.StorageBackend, "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()

	eng := engine.New(store, rules.NewRoller(cfg.RandomSeed), log)
	if notifier != nil {
		eng.SetNotifier(notifier)
	}

	app := &cli{eng: eng, in: os.Stdin, out: os.Stdout, width: wrapWidth}
	if err := app.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

// openStorage connects the configured backend. The notifier is only set
// for Redis with event publishing enabled.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, engine.Notifier, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		store, err := redisstore.Connect(cfg.RedisURL, cfg.SessionTTL, log)
		if err != nil {
			return nil, nil, err
		}
		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := store.WaitForConnection(waitCtx, 15, 2*time.Second); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		if !cfg.PublishEvents {
			return store, nil, nil
		}
		return store, events.NewBroadcaster(store.Client(), log), nil
	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		log.Warn("Using in-memory storage; sessions last only for this process")
		return storage.NewMemoryStorage(), nil, nil
	}
}
