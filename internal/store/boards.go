// ABOUTME: Board CRUD over the boards table
// ABOUTME: List ordering is contractual: core boards first, then creation order

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateBoard inserts a new board. Fails with ErrConstraintViolation if the
// owning profile does not exist.
func (s *SQLiteStore) CreateBoard(ctx context.Context, b *Board) error {
	if err := checkStruct(b); err != nil {
		return err
	}
	b.CreatedAt = stampTime(b.CreatedAt)
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}

	query := `
		INSERT INTO boards (id, profile_id, name, is_core, grid_cols, grid_rows, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.ProfileID, b.Name, b.IsCore, b.GridCols, b.GridRows,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		return storageErr("inserting board", err)
	}

	s.logger.Debug("created board", "id", b.ID, "profile_id", b.ProfileID, "is_core", b.IsCore)
	return nil
}

// GetBoard retrieves a board by ID.
// Returns ErrNotFound if the board doesn't exist.
func (s *SQLiteStore) GetBoard(ctx context.Context, id string) (*Board, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, name, is_core, grid_cols, grid_rows, created_at, updated_at
		FROM boards
		WHERE id = ?
	`, id)
	return scanBoard(row.Scan)
}

// ListBoardsByProfile returns a profile's boards, core boards first, then by
// creation order. The ordering is a contract the UI relies on.
func (s *SQLiteStore) ListBoardsByProfile(ctx context.Context, profileID string) ([]*Board, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, name, is_core, grid_cols, grid_rows, created_at, updated_at
		FROM boards
		WHERE profile_id = ?
		ORDER BY is_core DESC, created_at ASC, id ASC
	`, profileID)
	if err != nil {
		return nil, storageErr("querying boards", err)
	}
	defer rows.Close()

	var boards []*Board
	for rows.Next() {
		b, err := scanBoard(rows.Scan)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating board rows", err)
	}
	return boards, nil
}

// GetCoreBoard returns the profile's core board. If duplicates exist (the
// exactly-one-core invariant is soft) the earliest created wins.
func (s *SQLiteStore) GetCoreBoard(ctx context.Context, profileID string) (*Board, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, name, is_core, grid_cols, grid_rows, created_at, updated_at
		FROM boards
		WHERE profile_id = ? AND is_core = 1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`, profileID)
	return scanBoard(row.Scan)
}

// UpdateBoard applies a partial update and refreshes updated_at.
// An empty update is a no-op.
func (s *SQLiteStore) UpdateBoard(ctx context.Context, id string, u BoardUpdate) error {
	if u.GridCols != nil && (*u.GridCols < 2 || *u.GridCols > 6) {
		return &ValidationError{Field: "GridCols", Reason: "must be between 2 and 6"}
	}
	if u.GridRows != nil && (*u.GridRows < 2 || *u.GridRows > 6) {
		return &ValidationError{Field: "GridRows", Reason: "must be between 2 and 6"}
	}

	var sets []string
	var args []any

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.IsCore != nil {
		sets = append(sets, "is_core = ?")
		args = append(args, *u.IsCore)
	}
	if u.GridCols != nil {
		sets = append(sets, "grid_cols = ?")
		args = append(args, *u.GridCols)
	}
	if u.GridRows != nil {
		sets = append(sets, "grid_rows = ?")
		args = append(args, *u.GridRows)
	}
	if len(sets) == 0 {
		return nil
	}
	sets, args = touchUpdatedAt(sets, args)

	return s.execUpdate(ctx, "boards", sets, args, id)
}

// DeleteBoard hard-deletes a board; its buttons cascade.
func (s *SQLiteStore) DeleteBoard(ctx context.Context, id string) error {
	return s.execDelete(ctx, "boards", id)
}

func scanBoard(scan func(dest ...any) error) (*Board, error) {
	var b Board
	var createdAt, updatedAt string

	err := scan(&b.ID, &b.ProfileID, &b.Name, &b.IsCore, &b.GridCols, &b.GridRows, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("scanning board", err)
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &b, nil
}
