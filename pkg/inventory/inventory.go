// Package inventory implements per-session item operations on top of a
// storage.Storage. Multi-step mutations in the engine go through here so
// that a transactional store could be swapped in without touching callers.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/pkg/gameerr"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
)

// Store is a session-scoped view of inventory storage.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates an inventory store backed by s.
func New(s storage.Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{storage: s, logger: logger}
}

// List returns every item held by the session.
func (st *Store) List(ctx context.Context, sessionID uuid.UUID) ([]state.Item, error) {
	items, err := st.storage.LoadInventory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return items, nil
}

// Names returns the folded names of every item the session holds.
func (st *Store) Names(ctx context.Context, sessionID uuid.UUID) (map[string]bool, error) {
	items, err := st.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return textnorm.FoldSet(state.ItemNames(items)), nil
}

// Has reports whether the session holds an item with the given name.
func (st *Store) Has(ctx context.Context, sessionID uuid.UUID, name string) (bool, error) {
	_, err := st.storage.FindItemByName(ctx, sessionID, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up item %q: %w", name, err)
	}
}

// GrantIfAbsent inserts one item unless the session already holds one with
// the same name. It reports whether an item was inserted.
func (st *Store) GrantIfAbsent(ctx context.Context, sessionID uuid.UUID, spec state.ItemSpec) (bool, error) {
	if textnorm.Fold(spec.Name) == "" {
		return false, nil
	}
	has, err := st.Has(ctx, sessionID, spec.Name)
	if err != nil {
		return false, err
	}
	if has {
		logger.WithSessionID(st.logger, sessionID).Debug("Item already held, skipping grant", "item", spec.Name)
		return false, nil
	}
	if err := st.storage.InsertItem(ctx, state.NewItem(sessionID, spec)); err != nil {
		return false, fmt.Errorf("failed to grant item %q: %w", spec.Name, err)
	}
	logger.WithSessionID(st.logger, sessionID).Debug("Item granted", "item", spec.Name)
	return true, nil
}

// RemoveOne deletes a single item matching name. It fails with a
// gameerr NotFound error when the session holds no such item.
func (st *Store) RemoveOne(ctx context.Context, sessionID uuid.UUID, name string) error {
	it, err := st.storage.FindItemByName(ctx, sessionID, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return gameerr.NotFound("inventory item", name)
		}
		return fmt.Errorf("failed to look up item %q: %w", name, err)
	}
	if err := st.storage.DeleteItem(ctx, it.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return gameerr.NotFound("inventory item", name)
		}
		return fmt.Errorf("failed to remove item %q: %w", name, err)
	}
	logger.WithSessionID(st.logger, sessionID).Debug("Item removed", "item", name)
	return nil
}

// RemoveOneBestEffort is RemoveOne with the not-found case ignored.
func (st *Store) RemoveOneBestEffort(ctx context.Context, sessionID uuid.UUID, name string) error {
	if err := st.RemoveOne(ctx, sessionID, name); err != nil && !errors.Is(err, gameerr.ErrNotFound) {
		return err
	}
	return nil
}

// Consume deletes a specific item by ID.
func (st *Store) Consume(ctx context.Context, item *state.Item) error {
	if err := st.storage.DeleteItem(ctx, item.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return gameerr.NotFound("inventory item", item.ID)
		}
		return fmt.Errorf("failed to consume item %s: %w", item.ID, err)
	}
	return nil
}

// Find returns an item by ID regardless of the session holding it.
func (st *Store) Find(ctx context.Context, itemID uuid.UUID) (*state.Item, error) {
	it, err := st.storage.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, gameerr.NotFound("inventory item", itemID)
		}
		return nil, fmt.Errorf("failed to look up item %s: %w", itemID, err)
	}
	return it, nil
}

// Clear deletes every item of the session.
func (st *Store) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := st.storage.DeleteAllForSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear inventory: %w", err)
	}
	return nil
}
