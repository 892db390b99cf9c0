// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// =============================================================================
// KEY-VALUE STORE
// =============================================================================

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// KV is a flat key->string store backed by SQLite.
//
// Writes are committed immediately (no batching) so a crash loses at most
// the in-flight turn, never committed preferences.
type KV struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens the default store at ~/.verity/verity.db, creating the
// directory and schema as needed.
func Open() (*KV, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("storage: resolve home: %w", err)
	}
	dir := filepath.Join(home, ".verity")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return OpenAt(filepath.Join(dir, "verity.db"))
}

// OpenAt opens a store at an explicit path. Use ":memory:" in tests.
func OpenAt(path string) (*KV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	// Single connection: modernc sqlite serializes writers anyway, and one
	// connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: init schema: %w", err)
	}

	return &KV{db: db}, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *KV) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("storage: get %q: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value. The write is
// durable when Put returns.
func (s *KV) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("storage: put %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database.
func (s *KV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
