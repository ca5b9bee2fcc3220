// Package storagetest runs the same behavioral checks against every
// storage.Storage implementation.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises store against the storage contract. newStore must return
// an empty store; it is called once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Helper()

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Ping(context.Background()))
	})

	t.Run("session round trip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		sess := state.NewSession("owner-1")
		sess.Health = 42
		sess.Narrative = state.RiddleMarker + " Загадка"
		require.NoError(t, s.SaveSession(ctx, sess))
		assert.False(t, sess.UpdatedAt.IsZero(), "SaveSession should stamp UpdatedAt")

		got, err := s.LoadSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		assert.Equal(t, "owner-1", got.OwnerID)
		assert.Equal(t, 42, got.Health)
		assert.Equal(t, sess.Location, got.Location)
		assert.Equal(t, sess.Narrative, got.Narrative)
		assert.False(t, got.CreatedAt.IsZero())

		sess.Health = 7
		require.NoError(t, s.SaveSession(ctx, sess))
		got, err = s.LoadSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Health)
	})

	t.Run("missing session", func(t *testing.T) {
		s := newStore(t)
		_, err := s.LoadSession(context.Background(), uuid.New())
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})

	t.Run("inventory insert find delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		sid := uuid.New()
		other := uuid.New()

		sword := state.NewItem(sid, state.ItemSpec{Name: "Меч", Description: "Острый меч для боя"})
		require.NoError(t, s.InsertItem(ctx, sword))
		require.NotEqual(t, uuid.Nil, sword.ID, "InsertItem should assign an ID")
		require.NoError(t, s.InsertItem(ctx, state.NewItem(sid, state.ItemSpec{Name: "меч"})))
		require.NoError(t, s.InsertItem(ctx, state.NewItem(other, state.ItemSpec{Name: "зелье"})))

		items, err := s.LoadInventory(ctx, sid)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		found, err := s.FindItemByID(ctx, sword.ID)
		require.NoError(t, err)
		assert.Equal(t, sid, found.SessionID)
		assert.Equal(t, "Меч", found.Name)
		assert.Equal(t, "Острый меч для боя", found.Description)

		byName, err := s.FindItemByName(ctx, sid, "МЕЧ")
		require.NoError(t, err)
		assert.Equal(t, sid, byName.SessionID)

		_, err = s.FindItemByName(ctx, sid, "зелье")
		assert.True(t, errors.Is(err, storage.ErrNotFound), "item of another session must not match, got %v", err)

		require.NoError(t, s.DeleteItem(ctx, sword.ID))
		_, err = s.FindItemByID(ctx, sword.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
		assert.True(t, errors.Is(s.DeleteItem(ctx, sword.ID), storage.ErrNotFound))

		items, err = s.LoadInventory(ctx, sid)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("delete all for session", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		sid := uuid.New()
		other := uuid.New()

		for _, name := range []string{"меч", "зелье", "трава"} {
			require.NoError(t, s.InsertItem(ctx, state.NewItem(sid, state.ItemSpec{Name: name})))
		}
		keep := state.NewItem(other, state.ItemSpec{Name: "фляга"})
		require.NoError(t, s.InsertItem(ctx, keep))

		require.NoError(t, s.DeleteAllForSession(ctx, sid))

		items, err := s.LoadInventory(ctx, sid)
		require.NoError(t, err)
		assert.Empty(t, items)

		_, err = s.FindItemByID(ctx, keep.ID)
		assert.NoError(t, err, "other sessions keep their items")

		require.NoError(t, s.DeleteAllForSession(ctx, uuid.New()), "clearing an empty inventory is not an error")
	})

	t.Run("missing item", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindItemByID(context.Background(), uuid.New())
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})
}
