// ABOUTME: Routine CRUD over the routines table
// ABOUTME: Pinned button ids are a serialized array; dangling ids are tolerated on read

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// CreateRoutine inserts a new routine. Pinned button ids are stored as a
// serialized array without referential checks.
func (s *SQLiteStore) CreateRoutine(ctx context.Context, r *Routine) error {
	if err := checkStruct(r); err != nil {
		return err
	}

	pinned, err := encodePinnedIDs(r.PinnedButtonIDs)
	if err != nil {
		return err
	}
	r.CreatedAt = stampTime(r.CreatedAt)
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	query := `
		INSERT INTO routines (id, profile_id, name, pinned_button_ids_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		r.ID, r.ProfileID, r.Name, pinned, formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if err != nil {
		return storageErr("inserting routine", err)
	}

	s.logger.Debug("created routine", "id", r.ID, "profile_id", r.ProfileID, "pinned", len(r.PinnedButtonIDs))
	return nil
}

// GetRoutine retrieves a routine by ID.
// Returns ErrNotFound if the routine doesn't exist.
func (s *SQLiteStore) GetRoutine(ctx context.Context, id string) (*Routine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, name, pinned_button_ids_json, created_at, updated_at
		FROM routines
		WHERE id = ?
	`, id)
	return scanRoutine(row.Scan)
}

// ListRoutinesByProfile returns a profile's routines in creation order.
func (s *SQLiteStore) ListRoutinesByProfile(ctx context.Context, profileID string) ([]*Routine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, name, pinned_button_ids_json, created_at, updated_at
		FROM routines
		WHERE profile_id = ?
		ORDER BY created_at ASC, id ASC
	`, profileID)
	if err != nil {
		return nil, storageErr("querying routines", err)
	}
	defer rows.Close()

	var routines []*Routine
	for rows.Next() {
		r, err := scanRoutine(rows.Scan)
		if err != nil {
			return nil, err
		}
		routines = append(routines, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating routine rows", err)
	}
	return routines, nil
}

// UpdateRoutine applies a partial update and refreshes updated_at.
// An empty update is a no-op.
func (s *SQLiteStore) UpdateRoutine(ctx context.Context, id string, u RoutineUpdate) error {
	var sets []string
	var args []any

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.PinnedButtonIDs != nil {
		pinned, err := encodePinnedIDs(*u.PinnedButtonIDs)
		if err != nil {
			return err
		}
		sets = append(sets, "pinned_button_ids_json = ?")
		args = append(args, pinned)
	}
	if len(sets) == 0 {
		return nil
	}
	sets, args = touchUpdatedAt(sets, args)

	return s.execUpdate(ctx, "routines", sets, args, id)
}

// DeleteRoutine hard-deletes a routine. Utterances referencing it have their
// routine_id set to NULL by the storage engine.
func (s *SQLiteStore) DeleteRoutine(ctx context.Context, id string) error {
	return s.execDelete(ctx, "routines", id)
}

// ResolveButtons fetches the routine's pinned buttons in pin order, silently
// skipping ids that no longer resolve.
func (r *Routine) ResolveButtons(ctx context.Context, s Store) ([]*Button, error) {
	buttons := make([]*Button, 0, len(r.PinnedButtonIDs))
	for _, id := range r.PinnedButtonIDs {
		b, err := s.GetButton(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		buttons = append(buttons, b)
	}
	return buttons, nil
}

func encodePinnedIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encoding pinned button ids: %w", err)
	}
	return string(data), nil
}

func scanRoutine(scan func(dest ...any) error) (*Routine, error) {
	var r Routine
	var pinnedJSON, createdAt, updatedAt string

	err := scan(&r.ID, &r.ProfileID, &r.Name, &pinnedJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("scanning routine", err)
	}

	if err := json.Unmarshal([]byte(pinnedJSON), &r.PinnedButtonIDs); err != nil {
		return nil, fmt.Errorf("decoding pinned button ids: %w", err)
	}
	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &r, nil
}
