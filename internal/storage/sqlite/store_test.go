package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/storage/sqlite/migrations"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/jwebster45206/quest-engine/pkg/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "quest.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ", testLogger())
	assert.Error(t, err)
}

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return openTempStore(t)
	})
}

func TestOpen_CreatesDirAndReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "quest.db")

	store, err := Open(ctx, path, testLogger())
	require.NoError(t, err)
	sess := state.NewSession("owner")
	sess.Health = 64
	require.NoError(t, store.SaveSession(ctx, sess))
	require.NoError(t, store.InsertItem(ctx, state.NewItem(sess.ID, state.ItemSpec{Name: "артефакт"})))
	require.NoError(t, store.Close())

	// Migrations are recorded, so a second open must not fail or wipe data.
	store, err = Open(ctx, path, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	got, err := store.LoadSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 64, got.Health)

	items, err := store.LoadInventory(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"артефакт"}, state.ItemNames(items))

	var applied int
	require.NoError(t, store.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+migrationTable).Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestStore_CreatedAtSurvivesUpdate(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	sess := state.NewSession("owner")
	require.NoError(t, store.SaveSession(ctx, sess))
	first, err := store.LoadSession(ctx, sess.ID)
	require.NoError(t, err)

	sess.Narrative = "Дальше."
	require.NoError(t, store.SaveSession(ctx, sess))
	second, err := store.LoadSession(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "Дальше.", second.Narrative)
}

func TestStore_InventoryOrderAndFoldedLookup(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	sid := uuid.New()

	for _, name := range []string{"Трава", "фляга", "ТРАВА"} {
		require.NoError(t, store.InsertItem(ctx, state.NewItem(sid, state.ItemSpec{Name: name})))
	}

	items, err := store.LoadInventory(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, []string{"Трава", "фляга", "ТРАВА"}, state.ItemNames(items))

	found, err := store.FindItemByName(ctx, sid, " трава ")
	require.NoError(t, err)
	assert.Equal(t, items[0].ID, found.ID, "first matching item is returned")
}

func TestStore_DuplicateItemID(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	item := state.NewItem(uuid.New(), state.ItemSpec{Name: "меч"})
	require.NoError(t, store.InsertItem(ctx, item))

	dup := *item
	err := store.InsertItem(ctx, &dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestApplyMigrations_RunsEachFileOnce(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, applyMigrations(ctx, store.sqlDB, migrations.FS))

	extra := fstest.MapFS{
		"001_init.sql":  {Data: []byte("-- +migrate Up\nCREATE TABLE sessions (id TEXT);\n")},
		"002_notes.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE notes (id TEXT);\n-- +migrate Down\nDROP TABLE notes;\n")},
	}
	require.NoError(t, applyMigrations(ctx, store.sqlDB, extra))
	require.NoError(t, applyMigrations(ctx, store.sqlDB, extra))

	var applied int
	require.NoError(t, store.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+migrationTable).Scan(&applied))
	assert.Equal(t, 2, applied)
	var tables int
	require.NoError(t, store.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'notes'").Scan(&tables))
	assert.Equal(t, 1, tables)
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (x INT);\n", extractUpMigration(content))
	assert.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
}
