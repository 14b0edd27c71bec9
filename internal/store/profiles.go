// ABOUTME: Profile CRUD over the profiles table
// ABOUTME: Serializes the settings JSON blob at this boundary only

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// CreateProfile inserts a new profile. The caller supplies a pre-generated id.
func (s *SQLiteStore) CreateProfile(ctx context.Context, p *Profile) error {
	if err := checkStruct(p); err != nil {
		return err
	}

	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("encoding profile settings: %w", err)
	}
	p.CreatedAt = stampTime(p.CreatedAt)

	query := `
		INSERT INTO profiles (id, name, avatar_path, settings_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	var avatar any
	if p.AvatarPath != nil {
		avatar = *p.AvatarPath
	}
	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.Name, avatar, string(settings), formatTime(p.CreatedAt),
	)
	if err != nil {
		return storageErr("inserting profile", err)
	}

	s.logger.Debug("created profile", "id", p.ID, "name", p.Name)
	return nil
}

// GetProfile retrieves a profile by ID.
// Returns ErrNotFound if the profile doesn't exist.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	query := `
		SELECT id, name, avatar_path, settings_json, created_at
		FROM profiles
		WHERE id = ?
	`
	row := s.db.QueryRowContext(ctx, query, id)
	return scanProfile(row.Scan)
}

// ListProfiles returns all profiles in creation order.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]*Profile, error) {
	query := `
		SELECT id, name, avatar_path, settings_json, created_at
		FROM profiles
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("querying profiles", err)
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating profile rows", err)
	}
	return profiles, nil
}

// UpdateProfile applies a partial update. An empty update is a no-op:
// no row is touched and unlisted fields are never clobbered.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, id string, u ProfileUpdate) error {
	var sets []string
	var args []any

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.AvatarPath != nil {
		sets = append(sets, "avatar_path = ?")
		if u.AvatarPath.Valid {
			args = append(args, u.AvatarPath.String)
		} else {
			args = append(args, nil)
		}
	}
	if u.Settings != nil {
		settings, err := json.Marshal(u.Settings)
		if err != nil {
			return fmt.Errorf("encoding profile settings: %w", err)
		}
		sets = append(sets, "settings_json = ?")
		args = append(args, string(settings))
	}
	if len(sets) == 0 {
		return nil
	}

	return s.execUpdate(ctx, "profiles", sets, args, id)
}

// DeleteProfile hard-deletes a profile. Boards, routines, media assets,
// utterances and usage logs cascade at the storage engine level.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, id string) error {
	return s.execDelete(ctx, "profiles", id)
}

// execUpdate runs a dynamic partial UPDATE against a table keyed by id.
func (s *SQLiteStore) execUpdate(ctx context.Context, table string, sets []string, args []any, id string) error {
	query := "UPDATE " + table + " SET " + joinSets(sets) + " WHERE id = ?"
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr("updating "+table, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated row", "table", table, "id", id)
	return nil
}

// execDelete removes a row by id, relying on declarative cascade rules.
func (s *SQLiteStore) execDelete(ctx context.Context, table, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return storageErr("deleting from "+table, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted row", "table", table, "id", id)
	return nil
}

func joinSets(sets []string) string {
	out := sets[0]
	for _, s := range sets[1:] {
		out += ", " + s
	}
	return out
}

func scanProfile(scan func(dest ...any) error) (*Profile, error) {
	var p Profile
	var avatar sql.NullString
	var settingsJSON, createdAt string

	err := scan(&p.ID, &p.Name, &avatar, &settingsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("scanning profile", err)
	}

	p.AvatarPath = strPtr(avatar)
	if err := json.Unmarshal([]byte(settingsJSON), &p.Settings); err != nil {
		return nil, fmt.Errorf("decoding profile settings: %w", err)
	}
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &p, nil
}

// touchUpdatedAt appends the updated_at refresh every partial update carries
// for tables that track it.
func touchUpdatedAt(sets []string, args []any) ([]string, []any) {
	return append(sets, "updated_at = ?"), append(args, formatTime(time.Now()))
}
