// Package engine is the quest's decision and state-transition core. It
// loads a session, runs the player's request through the rules, and
// persists the result. Callers serialize requests per session; the engine
// holds no locks of its own.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/pkg/gameerr"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/rules"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// Notifier is told about every persisted session change.
type Notifier interface {
	SessionUpdated(ctx context.Context, s *state.Session) error
}

// Engine runs quest operations against a storage backend.
type Engine struct {
	storage   storage.Storage
	inventory *inventory.Store
	table     *rules.Table
	notifier  Notifier
	logger    *slog.Logger
}

// New creates an engine. A nil roller uses the shared random source.
func New(store storage.Storage, roller rules.Roller, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		storage:   store,
		inventory: inventory.New(store, logger),
		table:     rules.NewTable(roller),
		logger:    logger,
	}
}

// SetNotifier registers n to receive session updates. Pass nil to disable.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

// CreateSession starts a new game for ownerID.
func (e *Engine) CreateSession(ctx context.Context, ownerID string) (*state.Session, error) {
	s := state.NewSession(ownerID)
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	logger.WithSessionID(e.logger, s.ID).Info("Session created", "owner_id", ownerID)
	return s, nil
}

// GetSession loads a session by ID.
func (e *Engine) GetSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	return e.load(ctx, id)
}

// Restart wipes the inventory and resets the session to its opening state.
func (e *Engine) Restart(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.inventory.Clear(ctx, id); err != nil {
		return nil, e.internal("restart session", err)
	}
	s.Reset()
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	logger.WithSessionID(e.logger, id).Info("Session restarted")
	return s, nil
}

func (e *Engine) load(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	s, err := e.storage.LoadSession(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, gameerr.NotFound("session", id)
		}
		return nil, e.internal("load session", err)
	}
	return s, nil
}

func (e *Engine) save(ctx context.Context, s *state.Session) error {
	if err := e.storage.SaveSession(ctx, s); err != nil {
		return e.internal("save session", err)
	}
	if e.notifier != nil {
		if err := e.notifier.SessionUpdated(ctx, s); err != nil {
			logger.WithError(logger.WithSessionID(e.logger, s.ID), err).Warn("Failed to publish session update")
		}
	}
	return nil
}

// internal passes domain errors through and wraps everything else so
// storage detail never reaches the caller as anything but an internal error.
func (e *Engine) internal(op string, err error) error {
	var ge *gameerr.Error
	if errors.As(err, &ge) {
		return err
	}
	logger.WithError(e.logger, err).Error("Engine operation failed", "op", op)
	return gameerr.Internal(op, err)
}
