// Package state persists workspace state (the focused root and focus
// history) in SQLite.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hayeah/goo"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Import SQLite driver
)

// Store is a key-value store plus focus history. It implements tree.Store.
type Store struct {
	DB   *sqlx.DB
	path string
}

// Focus is one entry of the focus history.
type Focus struct {
	Path      string
	FocusedAt time.Time
	Count     int
}

// Open opens (creating if needed) the database at path and applies
// pending migrations. A nil logger discards migration logs.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := goo.ProvideDBMigrator(db, logger).Up(migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}
	return &Store{DB: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

var migrations = []goo.Migration{
	{
		Name: "create_kv",
		Up: `
			CREATE TABLE IF NOT EXISTS kv (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			);
		`,
	},
	{
		Name: "create_focus_history",
		Up: `
			CREATE TABLE IF NOT EXISTS focus_history (
				path TEXT PRIMARY KEY,
				focused_at INTEGER NOT NULL,
				seq INTEGER NOT NULL,
				count INTEGER NOT NULL DEFAULT 1
			);
			CREATE INDEX IF NOT EXISTS idx_focus_history_seq ON focus_history(seq);
		`,
	},
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.GetContext(ctx, &value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// RecordFocus moves path to the front of the focus history.
func (s *Store) RecordFocus(ctx context.Context, path string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO focus_history (path, focused_at, seq, count)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM focus_history), 1)
		ON CONFLICT(path) DO UPDATE SET
			focused_at = excluded.focused_at,
			seq = excluded.seq,
			count = focus_history.count + 1`,
		path, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record focus: %w", err)
	}
	return nil
}

// RecentFoci returns up to limit history entries, most recent first.
func (s *Store) RecentFoci(ctx context.Context, limit int) ([]Focus, error) {
	var rows []struct {
		Path      string `db:"path"`
		FocusedAt int64  `db:"focused_at"`
		Count     int    `db:"count"`
	}
	err := s.DB.SelectContext(ctx, &rows,
		"SELECT path, focused_at, count FROM focus_history ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list focus history: %w", err)
	}

	foci := make([]Focus, 0, len(rows))
	for _, r := range rows {
		foci = append(foci, Focus{
			Path:      r.Path,
			FocusedAt: time.Unix(0, r.FocusedAt),
			Count:     r.Count,
		})
	}
	return foci, nil
}
