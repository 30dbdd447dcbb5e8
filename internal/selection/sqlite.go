package selection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists selections in a SQLite database so they survive restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the selection database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS selections (
		session_id TEXT PRIMARY KEY,
		region     TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (Selection, error) {
	var (
		sel     Selection
		updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT region, updated_at FROM selections WHERE session_id = ?`, sessionID,
	).Scan(&sel.Region, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Selection{}, ErrNoSelection
	}
	if err != nil {
		return Selection{}, fmt.Errorf("load selection: %w", err)
	}

	sel.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return Selection{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	return sel, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sessionID string, sel Selection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO selections (session_id, region, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET region = excluded.region, updated_at = excluded.updated_at`,
		sessionID, sel.Region, sel.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

// Ping checks the database connection, for readiness probes.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
