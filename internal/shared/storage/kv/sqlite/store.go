// Package sqlite provides a SQLite-backed slot store for device-local caches.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register the "sqlite" database/sql driver

	"nutrisnap-backend/internal/shared/storage/kv"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_slots (
	slot_key   TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store persists slots in a single SQLite table.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (creating if needed) the SQLite file at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, kv.ErrInvalidKey
	}
	var value []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE slot_key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get slot: %w", err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return kv.ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}
	const query = `
INSERT INTO kv_slots (slot_key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(slot_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.sqlDB.ExecContext(ctx, query, key, value, s.now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("set slot: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return kv.ErrInvalidKey
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM kv_slots WHERE slot_key = ?`, key); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

var _ kv.Store = (*Store)(nil)
