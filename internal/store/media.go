// ABOUTME: MediaAsset CRUD over the media_assets table
// ABOUTME: Tracks locally stored images independent of any button for reuse/export

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateMediaAsset inserts a new media asset record.
func (s *SQLiteStore) CreateMediaAsset(ctx context.Context, m *MediaAsset) error {
	if err := checkStruct(m); err != nil {
		return err
	}

	m.CreatedAt = stampTime(m.CreatedAt)

	query := `
		INSERT INTO media_assets (id, profile_id, file_path, type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.ProfileID, m.FilePath, m.Type, formatTime(m.CreatedAt),
	)
	if err != nil {
		return storageErr("inserting media asset", err)
	}

	s.logger.Debug("created media asset", "id", m.ID, "type", m.Type)
	return nil
}

// GetMediaAsset retrieves a media asset by ID.
// Returns ErrNotFound if the asset doesn't exist.
func (s *SQLiteStore) GetMediaAsset(ctx context.Context, id string) (*MediaAsset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, file_path, type, created_at
		FROM media_assets
		WHERE id = ?
	`, id)
	return scanMediaAsset(row.Scan)
}

// ListMediaAssetsByProfile returns a profile's media assets in creation order.
func (s *SQLiteStore) ListMediaAssetsByProfile(ctx context.Context, profileID string) ([]*MediaAsset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, file_path, type, created_at
		FROM media_assets
		WHERE profile_id = ?
		ORDER BY created_at ASC, id ASC
	`, profileID)
	if err != nil {
		return nil, storageErr("querying media assets", err)
	}
	defer rows.Close()

	var assets []*MediaAsset
	for rows.Next() {
		m, err := scanMediaAsset(rows.Scan)
		if err != nil {
			return nil, err
		}
		assets = append(assets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating media asset rows", err)
	}
	return assets, nil
}

// DeleteMediaAsset hard-deletes a media asset record. The underlying file is
// the caller's concern.
func (s *SQLiteStore) DeleteMediaAsset(ctx context.Context, id string) error {
	return s.execDelete(ctx, "media_assets", id)
}

func scanMediaAsset(scan func(dest ...any) error) (*MediaAsset, error) {
	var m MediaAsset
	var createdAt string

	err := scan(&m.ID, &m.ProfileID, &m.FilePath, &m.Type, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("scanning media asset", err)
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &m, nil
}
