// Package sqlite provides a SQLite-backed session and inventory store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/storage/sqlite/migrations"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists sessions and inventories in SQLite.
type Store struct {
	sqlDB  *sql.DB
	logger *slog.Logger
}

// Ensure Store implements Storage interface
var _ storage.Storage = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path, creating its directory when needed,
// and applies embedded migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("SQLite storage opened", "path", cleanPath)
	return &Store{sqlDB: sqlDB, logger: logger}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) SaveSession(ctx context.Context, sess *state.Session) error {
	if sess == nil {
		return errors.New("session cannot be nil")
	}

	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, owner_id, location, narrative, health, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   owner_id = excluded.owner_id,
		   location = excluded.location,
		   narrative = excluded.narrative,
		   health = excluded.health,
		   updated_at = excluded.updated_at`,
		sess.ID.String(),
		sess.OwnerID,
		sess.Location,
		sess.Narrative,
		sess.Health,
		toMillis(sess.CreatedAt),
		toMillis(sess.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT owner_id, location, narrative, health, created_at, updated_at
		 FROM sessions WHERE id = ?`, id.String())

	sess := state.Session{ID: id}
	var createdAt, updatedAt int64
	if err := row.Scan(&sess.OwnerID, &sess.Location, &sess.Narrative, &sess.Health, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess.CreatedAt = fromMillis(createdAt)
	sess.UpdatedAt = fromMillis(updatedAt)
	return &sess, nil
}

const itemColumns = `id, session_id, name, description, created_at`

func (s *Store) LoadInventory(ctx context.Context, sessionID uuid.UUID) ([]state.Item, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE session_id = ? ORDER BY seq`,
		sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	defer rows.Close()

	var items []state.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

func (s *Store) InsertItem(ctx context.Context, item *state.Item) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO inventory_items (id, session_id, name, name_folded, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID.String(),
		item.SessionID.String(),
		item.Name,
		textnorm.Fold(item.Name),
		item.Description,
		toMillis(item.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item %s already exists", item.ID)
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) FindItemByID(ctx context.Context, id uuid.UUID) (*state.Item, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id.String())
	return scanItem(row)
}

func (s *Store) FindItemByName(ctx context.Context, sessionID uuid.UUID, name string) (*state.Item, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items
		 WHERE session_id = ? AND name_folded = ?
		 ORDER BY seq LIMIT 1`,
		sessionID.String(), textnorm.Fold(name))
	return scanItem(row)
}

func (s *Store) DeleteAllForSession(ctx context.Context, sessionID uuid.UUID) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM inventory_items WHERE session_id = ?`, sessionID.String())
	if err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug("Inventory cleared", "session_id", sessionID, "items", n)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*state.Item, error) {
	var (
		it                state.Item
		rawID, rawSession string
		createdAt         int64
	)
	if err := row.Scan(&rawID, &rawSession, &it.Name, &it.Description, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}

	var err error
	if it.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse item id %q: %w", rawID, err)
	}
	if it.SessionID, err = uuid.Parse(rawSession); err != nil {
		return nil, fmt.Errorf("parse session id %q: %w", rawSession, err)
	}
	it.CreatedAt = fromMillis(createdAt)
	return &it, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
