package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
)

// MemoryStorage keeps sessions and items in process memory. It backs the
// "memory" storage backend and the engine tests.
type MemoryStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]state.Session
	items     map[uuid.UUID]state.Item
	order     []uuid.UUID // item insertion order
	pingError error
}

// Ensure MemoryStorage implements Storage interface
var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[uuid.UUID]state.Session),
		items:    make(map[uuid.UUID]state.Item),
	}
}

// SetPingError configures Ping to fail with err; nil restores success.
func (m *MemoryStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) SaveSession(ctx context.Context, s *state.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if prev, ok := m.sessions[s.ID]; ok && !prev.CreatedAt.IsZero() {
		s.CreatedAt = prev.CreatedAt
	} else if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStorage) LoadInventory(ctx context.Context, sessionID uuid.UUID) ([]state.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []state.Item
	for _, id := range m.order {
		if it := m.items[id]; it.SessionID == sessionID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *MemoryStorage) InsertItem(ctx context.Context, item *state.Item) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if _, exists := m.items[item.ID]; !exists {
		m.order = append(m.order, item.ID)
	}
	m.items[item.ID] = *item
	return nil
}

func (m *MemoryStorage) DeleteItem(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	m.deleteLocked(id)
	return nil
}

func (m *MemoryStorage) FindItemByID(ctx context.Context, id uuid.UUID) (*state.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (m *MemoryStorage) FindItemByName(ctx context.Context, sessionID uuid.UUID, name string) (*state.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := textnorm.Fold(name)
	for _, id := range m.order {
		it := m.items[id]
		if it.SessionID == sessionID && textnorm.Fold(it.Name) == want {
			return &it, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStorage) DeleteAllForSession(ctx context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range append([]uuid.UUID(nil), m.order...) {
		if m.items[id].SessionID == sessionID {
			m.deleteLocked(id)
		}
	}
	return nil
}

func (m *MemoryStorage) deleteLocked(id uuid.UUID) {
	delete(m.items, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
