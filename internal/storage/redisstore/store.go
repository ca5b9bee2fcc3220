// Package redisstore keeps sessions and inventories in Redis.
//
// Key layout:
//
//	session:<id>            session JSON
//	inventory:<sessionID>   hash of itemID -> item JSON
//	item:<itemID>           owning sessionID
//
// When a TTL is configured, saving a session refreshes the session key, its
// inventory hash and the item:<itemID> key of every item it holds.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
	"github.com/redis/go-redis/v9"
)

// Store implements storage.Storage on Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Ensure Store implements Storage interface
var _ storage.Storage = (*Store)(nil)

// New wraps an existing client. A zero ttl keeps keys forever.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, ttl: ttl, logger: logger}
}

// Connect parses redisURL and creates a store on a fresh client. It does
// not wait for the server; see WaitForConnection.
func Connect(redisURL string, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return New(redis.NewClient(opt), ttl, logger), nil
}

// Client returns the underlying Redis client.
func (r *Store) Client() *redis.Client {
	return r.client
}

func sessionKey(id uuid.UUID) string   { return "session:" + id.String() }
func inventoryKey(id uuid.UUID) string { return "inventory:" + id.String() }
func itemKey(id uuid.UUID) string      { return itemKeyFor(id.String()) }
func itemKeyFor(id string) string      { return "item:" + id }

// Health and lifecycle methods

func (r *Store) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Store) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *Store) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.Info("Redis connection established")
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}
	return fmt.Errorf("redis not available after %d attempts", maxRetries)
}

// Session operations

func (r *Store) SaveSession(ctx context.Context, s *state.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	var itemIDs []string
	if r.ttl > 0 {
		itemIDs, err = r.client.HKeys(ctx, inventoryKey(s.ID)).Result()
		if err != nil {
			r.logger.Error("Failed to list inventory for expiry refresh", "session_id", s.ID, "error", err)
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(s.ID), data, r.ttl)
		if r.ttl > 0 {
			pipe.Expire(ctx, inventoryKey(s.ID), r.ttl)
			for _, id := range itemIDs {
				pipe.Expire(ctx, itemKeyFor(id), r.ttl)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	r.logger.Debug("Session saved", "session_id", s.ID)
	return nil
}

func (r *Store) LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s state.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Inventory operations

func (r *Store) LoadInventory(ctx context.Context, sessionID uuid.UUID) ([]state.Item, error) {
	vals, err := r.client.HVals(ctx, inventoryKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	items := make([]state.Item, 0, len(vals))
	for _, v := range vals {
		var it state.Item
		if err := json.Unmarshal([]byte(v), &it); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item: %w", err)
		}
		items = append(items, it)
	}

	// Hash order is arbitrary; present items in the order they were gained.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *Store) InsertItem(ctx context.Context, item *state.Item) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, inventoryKey(item.SessionID), item.ID.String(), data)
		pipe.Set(ctx, itemKey(item.ID), item.SessionID.String(), r.ttl)
		if r.ttl > 0 {
			pipe.Expire(ctx, inventoryKey(item.SessionID), r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	r.logger.Debug("Item inserted", "session_id", item.SessionID, "item_id", item.ID, "name", item.Name)
	return nil
}

func (r *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	sessionID, err := r.itemOwner(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, inventoryKey(sessionID), id.String())
		pipe.Del(ctx, itemKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (r *Store) FindItemByID(ctx context.Context, id uuid.UUID) (*state.Item, error) {
	sessionID, err := r.itemOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := r.client.HGet(ctx, inventoryKey(sessionID), id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	var it state.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return &it, nil
}

func (r *Store) FindItemByName(ctx context.Context, sessionID uuid.UUID, name string) (*state.Item, error) {
	items, err := r.LoadInventory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if textnorm.Equal(items[i].Name, name) {
			return &items[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *Store) DeleteAllForSession(ctx context.Context, sessionID uuid.UUID) error {
	ids, err := r.client.HKeys(ctx, inventoryKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list inventory: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, inventoryKey(sessionID))
	for _, id := range ids {
		keys = append(keys, itemKeyFor(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear inventory: %w", err)
	}

	r.logger.Debug("Inventory cleared", "session_id", sessionID, "items", len(ids))
	return nil
}

func (r *Store) itemOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	raw, err := r.client.Get(ctx, itemKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, storage.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to load item index: %w", err)
	}
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt item index for %s: %w", id, err)
	}
	return sessionID, nil
}
