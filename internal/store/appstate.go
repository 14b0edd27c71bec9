// ABOUTME: Durable key-value app state over the app_state table
// ABOUTME: Holds current board/routine selection, caregiver PIN hash and similar scalars

package store

import (
	"context"
	"database/sql"
	"time"
)

// SetState writes a key with overwrite semantics.
func (s *SQLiteStore) SetState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO app_state (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return storageErr("saving app state", err)
	}
	return nil
}

// GetState reads a key. Returns ErrNotFound when the key is absent.
func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", storageErr("querying app state", err)
	}
	return value, nil
}

// DeleteState removes a key. Deleting an absent key is not an error.
func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, key)
	if err != nil {
		return storageErr("deleting app state", err)
	}
	return nil
}
