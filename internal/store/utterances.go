// ABOUTME: Utterance history over the utterances table
// ABOUTME: Append plus recency-ordered reads; routine_id is set NULL on routine delete

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateUtterance records a spoken sentence.
func (s *SQLiteStore) CreateUtterance(ctx context.Context, u *Utterance) error {
	if err := checkStruct(u); err != nil {
		return err
	}

	u.SpokenAt = stampTime(u.SpokenAt)

	query := `
		INSERT INTO utterances (id, profile_id, text, routine_id, spoken_at)
		VALUES (?, ?, ?, ?, ?)
	`
	var routineID any
	if u.RoutineID != nil {
		routineID = *u.RoutineID
	}
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.ProfileID, u.Text, routineID, formatTime(u.SpokenAt),
	)
	if err != nil {
		return storageErr("inserting utterance", err)
	}

	s.logger.Debug("recorded utterance", "id", u.ID, "profile_id", u.ProfileID)
	return nil
}

// ListUtterancesByProfile returns a profile's utterances, most recent first.
// If limit is 0 or negative, a default limit of 100 is used.
func (s *SQLiteStore) ListUtterancesByProfile(ctx context.Context, profileID string, limit int) ([]*Utterance, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, text, routine_id, spoken_at
		FROM utterances
		WHERE profile_id = ?
		ORDER BY spoken_at DESC, id DESC
		LIMIT ?
	`, profileID, limit)
	if err != nil {
		return nil, storageErr("querying utterances", err)
	}
	defer rows.Close()

	var utterances []*Utterance
	for rows.Next() {
		var u Utterance
		var routineID sql.NullString
		var spokenAt string

		if err := rows.Scan(&u.ID, &u.ProfileID, &u.Text, &routineID, &spokenAt); err != nil {
			return nil, storageErr("scanning utterance row", err)
		}
		u.RoutineID = strPtr(routineID)
		u.SpokenAt, err = parseTime(spokenAt)
		if err != nil {
			return nil, fmt.Errorf("parsing spoken_at: %w", err)
		}
		utterances = append(utterances, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating utterance rows", err)
	}
	return utterances, nil
}
