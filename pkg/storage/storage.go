package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// ErrNotFound is returned when a session or item does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines a unified interface for session and inventory persistence.
// Implementations perform each call independently; there is no transaction
// spanning several calls.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations
	SaveSession(ctx context.Context, s *state.Session) error
	LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error)

	// Inventory operations
	LoadInventory(ctx context.Context, sessionID uuid.UUID) ([]state.Item, error)
	// InsertItem stores a new item, assigning an ID when it has none.
	InsertItem(ctx context.Context, item *state.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*state.Item, error)
	// FindItemByName returns any one item of the session whose name matches
	// case-insensitively.
	FindItemByName(ctx context.Context, sessionID uuid.UUID, name string) (*state.Item, error)
	DeleteAllForSession(ctx context.Context, sessionID uuid.UUID) error
}
