// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	// Registers the pure-Go "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS configurations (
	command_key TEXT PRIMARY KEY,
	payload     TEXT NOT NULL
)`

// SQLiteStore is a SQLite-backed Store.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite-backed store at path, creating the database and
// its table if needed.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &StoreUnavailableError{Path: path, Cause: errors.New("storage path is required")}
	}

	cleanPath := filepath.Clean(path)
	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, &StoreUnavailableError{Path: cleanPath, Cause: err}
	}
	// A single connection keeps writes ordered within one process.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, &StoreUnavailableError{Path: cleanPath, Cause: err}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get fetches the configuration stored for key.
func (s *SQLiteStore) Get(ctx context.Context, key CommandKey) (Configuration, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM configurations WHERE command_key = ?`, string(key),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Configuration{}, false, nil
	}
	if err != nil {
		return Configuration{}, false, fmt.Errorf("read settings for %q: %w", key, err)
	}

	cfg, err := decodeConfiguration(key, []byte(payload))
	if err != nil {
		return Configuration{}, false, fmt.Errorf("read settings for %q: %w", key, err)
	}
	return cfg, true, nil
}

// Put persists cfg, overwriting any previous record for its key.
func (s *SQLiteStore) Put(ctx context.Context, cfg Configuration) error {
	if strings.TrimSpace(string(cfg.CommandKey())) == "" {
		return errors.New("command key is required")
	}

	payload, err := encodeConfiguration(cfg)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO configurations (command_key, payload) VALUES (?, ?)
		 ON CONFLICT(command_key) DO UPDATE SET payload = excluded.payload`,
		string(cfg.CommandKey()), string(payload),
	)
	if err != nil {
		return fmt.Errorf("write settings for %q: %w", cfg.CommandKey(), err)
	}
	return nil
}

// Keys lists every stored command key in ascending order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]CommandKey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT command_key FROM configurations ORDER BY command_key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []CommandKey
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("list settings: %w", err)
		}
		keys = append(keys, CommandKey(k))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return keys, nil
}
