// ABOUTME: Append-only usage log stream over the usage_logs table
// ABOUTME: Writes are gated by the profile's opt-in flag passed explicitly by the caller

package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// AppendUsageLog records an analytics event. The profile's analytics opt-in
// flag is an explicit argument rather than ambient state; when it is false
// the event is dropped without touching the database.
func (s *SQLiteStore) AppendUsageLog(ctx context.Context, entry *UsageLog, analyticsOptIn bool) error {
	if !analyticsOptIn {
		s.logger.Debug("usage logging disabled for profile, dropping event",
			"profile_id", entry.ProfileID, "event_type", entry.EventType)
		return nil
	}
	if err := checkStruct(entry); err != nil {
		return err
	}

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encoding usage metadata: %w", err)
	}

	entry.CreatedAt = stampTime(entry.CreatedAt)

	query := `
		INSERT INTO usage_logs (id, profile_id, event_type, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID, entry.ProfileID, entry.EventType, string(metadataJSON), formatTime(entry.CreatedAt),
	)
	if err != nil {
		return storageErr("inserting usage log", err)
	}

	s.logger.Debug("appended usage log", "id", entry.ID, "event_type", entry.EventType)
	return nil
}

// ListUsageLogsByProfile returns a profile's usage events in append order.
// If limit is 0 or negative, a default limit of 500 is used.
func (s *SQLiteStore) ListUsageLogsByProfile(ctx context.Context, profileID string, limit int) ([]*UsageLog, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, event_type, metadata_json, created_at
		FROM usage_logs
		WHERE profile_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, profileID, limit)
	if err != nil {
		return nil, storageErr("querying usage logs", err)
	}
	defer rows.Close()

	var entries []*UsageLog
	for rows.Next() {
		var e UsageLog
		var metadataJSON, createdAt string

		if err := rows.Scan(&e.ID, &e.ProfileID, &e.EventType, &metadataJSON, &createdAt); err != nil {
			return nil, storageErr("scanning usage log row", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &e.Metadata); err != nil {
			return nil, fmt.Errorf("decoding usage metadata: %w", err)
		}
		e.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating usage log rows", err)
	}
	return entries, nil
}
