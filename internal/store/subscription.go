// ABOUTME: Single-row subscription snapshot persistence
// ABOUTME: INSERT OR REPLACE keeps exactly one evolving entitlement row

package store

import (
	"context"
	"database/sql"
)

// SaveSubscription overwrites the entitlement snapshot row.
func (s *SQLiteStore) SaveSubscription(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT OR REPLACE INTO subscription_status (
			id, status, expires_at_ms, product_id, last_validated_at_ms,
			trial_started_at_ms, grace_period_ends_at_ms, raw_entitlement_json
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	`
	var expires, trial, grace, product any
	if sub.ExpiresAtMs != nil {
		expires = *sub.ExpiresAtMs
	}
	if sub.TrialStartedAtMs != nil {
		trial = *sub.TrialStartedAtMs
	}
	if sub.GracePeriodEndsAtMs != nil {
		grace = *sub.GracePeriodEndsAtMs
	}
	if sub.ProductID != nil {
		product = *sub.ProductID
	}

	_, err := s.db.ExecContext(ctx, query,
		sub.Status, expires, product, sub.LastValidatedAtMs, trial, grace, sub.RawEntitlementJSON,
	)
	if err != nil {
		return storageErr("saving subscription", err)
	}

	s.logger.Debug("saved subscription snapshot", "status", sub.Status)
	return nil
}

// GetSubscription retrieves the entitlement snapshot row.
// Returns ErrNotFound if no snapshot has ever been saved.
func (s *SQLiteStore) GetSubscription(ctx context.Context) (*Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT status, expires_at_ms, product_id, last_validated_at_ms,
		       trial_started_at_ms, grace_period_ends_at_ms, raw_entitlement_json
		FROM subscription_status
		WHERE id = 1
	`)

	var sub Subscription
	var expires, trial, grace sql.NullInt64
	var product sql.NullString

	err := row.Scan(&sub.Status, &expires, &product, &sub.LastValidatedAtMs,
		&trial, &grace, &sub.RawEntitlementJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("scanning subscription", err)
	}

	sub.ExpiresAtMs = int64Ptr(expires)
	sub.TrialStartedAtMs = int64Ptr(trial)
	sub.GracePeriodEndsAtMs = int64Ptr(grace)
	sub.ProductID = strPtr(product)
	return &sub, nil
}

// DeleteSubscription removes the snapshot row (sign-out/data deletion).
func (s *SQLiteStore) DeleteSubscription(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subscription_status WHERE id = 1`)
	if err != nil {
		return storageErr("deleting subscription", err)
	}
	s.logger.Debug("cleared subscription snapshot")
	return nil
}
