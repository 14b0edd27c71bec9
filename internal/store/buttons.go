// ABOUTME: Button CRUD over the buttons table
// ABOUTME: Enforces that position decodes to a cell within the owning board's grid

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateButton inserts a new button. The position must fall within
// [0, grid_cols*grid_rows) of the owning board; an out-of-range position is
// a board-full condition reported as a ValidationError. Position uniqueness
// among a board's buttons is the editor's responsibility, not the database's.
func (s *SQLiteStore) CreateButton(ctx context.Context, b *Button) error {
	if err := checkStruct(b); err != nil {
		return err
	}

	board, err := s.GetBoard(ctx, b.BoardID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("inserting button: %w: board %s does not exist", ErrConstraintViolation, b.BoardID)
		}
		return err
	}
	if b.Position >= board.GridCols*board.GridRows {
		return &ValidationError{
			Field:  "Position",
			Reason: fmt.Sprintf("board is full: position %d outside %dx%d grid", b.Position, board.GridCols, board.GridRows),
		}
	}

	b.CreatedAt = stampTime(b.CreatedAt)

	query := `
		INSERT INTO buttons (id, board_id, label, speech_text, image_path, symbol_path, position, color, is_pinned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var symbol, color any
	if b.SymbolPath != nil {
		symbol = *b.SymbolPath
	}
	if b.Color != nil {
		color = *b.Color
	}
	_, err = s.db.ExecContext(ctx, query,
		b.ID, b.BoardID, b.Label, b.SpeechText, b.ImagePath, symbol,
		b.Position, color, b.IsPinned, formatTime(b.CreatedAt),
	)
	if err != nil {
		return storageErr("inserting button", err)
	}

	s.logger.Debug("created button", "id", b.ID, "board_id", b.BoardID, "position", b.Position)
	return nil
}

// GetButton retrieves a button by ID.
// Returns ErrNotFound if the button doesn't exist.
func (s *SQLiteStore) GetButton(ctx context.Context, id string) (*Button, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, board_id, label, speech_text, image_path, symbol_path, position, color, is_pinned, created_at
		FROM buttons
		WHERE id = ?
	`, id)
	return scanButton(row.Scan)
}

// ListButtonsByBoard returns a board's buttons ordered by ascending position.
func (s *SQLiteStore) ListButtonsByBoard(ctx context.Context, boardID string) ([]*Button, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, board_id, label, speech_text, image_path, symbol_path, position, color, is_pinned, created_at
		FROM buttons
		WHERE board_id = ?
		ORDER BY position ASC, created_at ASC, id ASC
	`, boardID)
	if err != nil {
		return nil, storageErr("querying buttons", err)
	}
	defer rows.Close()

	var buttons []*Button
	for rows.Next() {
		b, err := scanButton(rows.Scan)
		if err != nil {
			return nil, err
		}
		buttons = append(buttons, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating button rows", err)
	}
	return buttons, nil
}

// UpdateButton applies a partial update. An empty update is a no-op.
func (s *SQLiteStore) UpdateButton(ctx context.Context, id string, u ButtonUpdate) error {
	if u.Label != nil && (*u.Label == "" || len(*u.Label) > 120) {
		return &ValidationError{Field: "Label", Reason: "must be non-empty and at most 120 characters"}
	}
	if u.SpeechText != nil && (*u.SpeechText == "" || len(*u.SpeechText) > 120) {
		return &ValidationError{Field: "SpeechText", Reason: "must be non-empty and at most 120 characters"}
	}
	if u.Position != nil && *u.Position < 0 {
		return &ValidationError{Field: "Position", Reason: "must not be negative"}
	}

	var sets []string
	var args []any

	if u.Label != nil {
		sets = append(sets, "label = ?")
		args = append(args, *u.Label)
	}
	if u.SpeechText != nil {
		sets = append(sets, "speech_text = ?")
		args = append(args, *u.SpeechText)
	}
	if u.ImagePath != nil {
		sets = append(sets, "image_path = ?")
		args = append(args, *u.ImagePath)
	}
	if u.SymbolPath != nil {
		sets = append(sets, "symbol_path = ?")
		args = append(args, nullFromSQL(*u.SymbolPath))
	}
	if u.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *u.Position)
	}
	if u.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, nullFromSQL(*u.Color))
	}
	if u.IsPinned != nil {
		sets = append(sets, "is_pinned = ?")
		args = append(args, *u.IsPinned)
	}
	if len(sets) == 0 {
		return nil
	}

	return s.execUpdate(ctx, "buttons", sets, args, id)
}

// DeleteButton hard-deletes a button.
func (s *SQLiteStore) DeleteButton(ctx context.Context, id string) error {
	return s.execDelete(ctx, "buttons", id)
}

func nullFromSQL(ns sql.NullString) any {
	if !ns.Valid {
		return nil
	}
	return ns.String
}

func scanButton(scan func(dest ...any) error) (*Button, error) {
	var b Button
	var symbol, color sql.NullString
	var createdAt string

	err := scan(&b.ID, &b.BoardID, &b.Label, &b.SpeechText, &b.ImagePath,
		&symbol, &b.Position, &color, &b.IsPinned, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("scanning button", err)
	}

	b.SymbolPath = strPtr(symbol)
	b.Color = strPtr(color)
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &b, nil
}
