package redisstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/engine"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/jwebster45206/quest-engine/pkg/storage/storagetest"
	"github.com/jwebster45206/quest-engine/pkg/world"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := Connect("redis://"+mr.Addr(), ttl, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		store, _ := setupTestStore(t, 0)
		return store
	})
}

func TestStore_KeyLayout(t *testing.T) {
	store, mr := setupTestStore(t, 0)
	ctx := context.Background()

	s := state.NewSession("owner")
	require.NoError(t, store.SaveSession(ctx, s))
	item := state.NewItem(s.ID, state.ItemSpec{Name: "меч"})
	require.NoError(t, store.InsertItem(ctx, item))

	assert.True(t, mr.Exists("session:"+s.ID.String()))
	fields, err := mr.HKeys("inventory:" + s.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{item.ID.String()}, fields)
	owner, err := mr.Get("item:" + item.ID.String())
	require.NoError(t, err)
	assert.Equal(t, s.ID.String(), owner)

	require.NoError(t, store.DeleteAllForSession(ctx, s.ID))
	assert.False(t, mr.Exists("inventory:"+s.ID.String()))
	assert.False(t, mr.Exists("item:"+item.ID.String()))
}

func TestStore_SessionTTL(t *testing.T) {
	store, mr := setupTestStore(t, time.Hour)
	ctx := context.Background()

	s := state.NewSession("owner")
	require.NoError(t, store.SaveSession(ctx, s))
	require.NoError(t, store.InsertItem(ctx, state.NewItem(s.ID, state.ItemSpec{Name: "зелье"})))

	assert.Equal(t, time.Hour, mr.TTL("session:"+s.ID.String()))
	assert.Equal(t, time.Hour, mr.TTL("inventory:"+s.ID.String()))

	mr.FastForward(2 * time.Hour)

	_, err := store.LoadSession(ctx, s.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	items, err := store.LoadInventory(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_SessionTTLRefreshesItemIndex(t *testing.T) {
	store, mr := setupTestStore(t, time.Hour)
	ctx := context.Background()

	s := state.NewSession("owner")
	require.NoError(t, store.SaveSession(ctx, s))
	potion := state.NewItem(s.ID, state.ItemSpec{Name: "зелье"})
	herb := state.NewItem(s.ID, state.ItemSpec{Name: "трава"})
	require.NoError(t, store.InsertItem(ctx, potion))
	require.NoError(t, store.InsertItem(ctx, herb))

	mr.FastForward(50 * time.Minute)
	require.NoError(t, store.SaveSession(ctx, s))
	assert.Equal(t, time.Hour, mr.TTL("item:"+potion.ID.String()))
	assert.Equal(t, time.Hour, mr.TTL("item:"+herb.ID.String()))

	mr.FastForward(20 * time.Minute)

	found, err := store.FindItemByID(ctx, potion.ID)
	require.NoError(t, err)
	assert.Equal(t, "зелье", found.Name)
	require.NoError(t, store.DeleteItem(ctx, herb.ID))

	items, err := store.LoadInventory(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"зелье"}, state.ItemNames(items))
}

func TestStore_EngineInventoryOutlivesFirstTTL(t *testing.T) {
	store, mr := setupTestStore(t, time.Hour)
	ctx := context.Background()
	eng := engine.New(store, nil, testLogger())

	s := state.NewSession("owner")
	s.SetLocation(world.Cave)
	require.NoError(t, store.SaveSession(ctx, s))
	for _, name := range []string{"трава", "фляга"} {
		require.NoError(t, store.InsertItem(ctx, state.NewItem(s.ID, state.ItemSpec{Name: name})))
	}

	_, err := eng.AnswerRiddle(ctx, s.ID, "сыр")
	require.NoError(t, err)

	mr.FastForward(50 * time.Minute)
	_, err = eng.ApplyTurn(ctx, s.ID, string(world.GoVillage))
	require.NoError(t, err)
	mr.FastForward(20 * time.Minute)

	artifact, err := store.FindItemByName(ctx, s.ID, "артефакт")
	require.NoError(t, err)
	got, err := eng.UseItem(ctx, s.ID, artifact.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Narrative, "нельзя использовать напрямую")

	_, err = eng.Craft(ctx, s.ID, "potion_from_herb")
	require.NoError(t, err)
	items, err := eng.ListInventory(ctx, s.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"артефакт", "зелье"}, state.ItemNames(items))

	_, err = eng.ApplyTurn(ctx, s.ID, string(world.ReturnArtifact))
	require.NoError(t, err)
	items, err = eng.ListInventory(ctx, s.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"зелье", "меч"}, state.ItemNames(items))
}

func TestStore_NoTTLByDefault(t *testing.T) {
	store, mr := setupTestStore(t, 0)
	s := state.NewSession("owner")
	require.NoError(t, store.SaveSession(context.Background(), s))
	assert.Equal(t, time.Duration(0), mr.TTL("session:"+s.ID.String()))
}

func TestStore_InventoryOrder(t *testing.T) {
	store, _ := setupTestStore(t, 0)
	ctx := context.Background()
	sid := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"трава", "фляга", "меч"} {
		it := state.NewItem(sid, state.ItemSpec{Name: name})
		it.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.InsertItem(ctx, it))
	}

	items, err := store.LoadInventory(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, []string{"трава", "фляга", "меч"}, state.ItemNames(items))
}

func TestStore_ServerErrors(t *testing.T) {
	store, mr := setupTestStore(t, 0)
	ctx := context.Background()
	mr.Close()

	assert.Error(t, store.Ping(ctx))
	_, err := store.LoadSession(ctx, uuid.New())
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrNotFound), "transport errors are not not-found")
}

func TestWaitForConnection(t *testing.T) {
	store, _ := setupTestStore(t, 0)
	require.NoError(t, store.WaitForConnection(context.Background(), 3, time.Millisecond))

	down := New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), 0, testLogger())
	t.Cleanup(func() { _ = down.Close() })
	err := down.WaitForConnection(context.Background(), 2, time.Millisecond)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = down.WaitForConnection(ctx, 5, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect("not a url", 0, testLogger())
	assert.Error(t, err)
}
