// Package storage is the client's durable key/value store. It holds the
// session tokens, the PIN hash, the lock state and the app version.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Fixed keys.
const (
	KeyAuthTokens    = "couple-fine-auth-tokens"
	KeySessionBackup = "couple-fine-session-backup"
	KeyPinHash       = "couple-fine-pin-hash"
	KeyLockState     = "couple-fine-lock-state"
	KeyAppVersion    = "couple-fine-app-version"
)

// Store is a sqlite-backed key/value store in WAL mode.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: connect: %w", err)
	}

	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value under key. ok is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("storage: delete %s: %w", key, err)
		}
	}
	return nil
}

// Keys returns every stored key in order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("storage: keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("storage: keys: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetJSON decodes the value under key into dst.
func (s *Store) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v encoded as JSON.
func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}

// CheckAppVersion compares version with the stored one. When they differ,
// every key except the PIN hash is removed, version is stored and wiped is
// true. The first run only stores the version.
func (s *Store) CheckAppVersion(ctx context.Context, version string) (wiped bool, err error) {
	stored, ok, err := s.Get(ctx, KeyAppVersion)
	if err != nil {
		return false, err
	}
	if ok && stored == version {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if ok {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key <> ?`, KeyPinHash); err != nil {
			return false, fmt.Errorf("storage: wipe: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		KeyAppVersion, version, s.now().UnixMilli()); err != nil {
		return false, fmt.Errorf("storage: set version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("storage: commit: %w", err)
	}
	return ok, nil
}
