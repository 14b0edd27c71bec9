// ABOUTME: Entitlement fact set and status enum
// ABOUTME: The JSON shape of Facts is the durable contract with the persistence layer

package entitlement

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tapspeak/tapspeak/internal/store"
)

// Status is the derived subscription state.
type Status string

const (
	StatusUninitialized      Status = "uninitialized"
	StatusTrialActive        Status = "trial_active"
	StatusActiveSubscribed   Status = "active_subscribed"
	StatusGracePeriod        Status = "grace_period"
	StatusExpiredLimitedMode Status = "expired_limited_mode"
)

// Facts is the stored entitlement fact set. Timestamps are epoch milliseconds;
// this exact shape is the durable contract between the engine, the cache and
// the persistence collaborator, so it must not drift.
type Facts struct {
	Status            Status  `json:"status"`
	ExpiresAt         *int64  `json:"expiresAt"`
	ProductID         *string `json:"productId"`
	LastValidatedAt   int64   `json:"lastValidatedAt"`
	TrialStartedAt    *int64  `json:"trialStartedAt"`
	GracePeriodEndsAt *int64  `json:"gracePeriodEndsAt"`
}

// Encode renders the fact set in its durable JSON form.
func (f *Facts) Encode() (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encoding entitlement facts: %w", err)
	}
	return string(data), nil
}

// DecodeFacts parses the durable JSON form.
func DecodeFacts(raw string) (*Facts, error) {
	var f Facts
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("decoding entitlement facts: %w", err)
	}
	return &f, nil
}

// Millis converts a time into the stored epoch-millisecond form.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// factsFromRow maps the subscription snapshot row into a fact set.
func factsFromRow(sub *store.Subscription) *Facts {
	return &Facts{
		Status:            Status(sub.Status),
		ExpiresAt:         sub.ExpiresAtMs,
		ProductID:         sub.ProductID,
		LastValidatedAt:   sub.LastValidatedAtMs,
		TrialStartedAt:    sub.TrialStartedAtMs,
		GracePeriodEndsAt: sub.GracePeriodEndsAtMs,
	}
}

// rowFromFacts maps a fact set into the subscription snapshot row, carrying
// the raw JSON mirror for offline inspection.
func rowFromFacts(f *Facts) (*store.Subscription, error) {
	raw, err := f.Encode()
	if err != nil {
		return nil, err
	}
	return &store.Subscription{
		Status:              string(f.Status),
		ExpiresAtMs:         f.ExpiresAt,
		ProductID:           f.ProductID,
		LastValidatedAtMs:   f.LastValidatedAt,
		TrialStartedAtMs:    f.TrialStartedAt,
		GracePeriodEndsAtMs: f.GracePeriodEndsAt,
		RawEntitlementJSON:  raw,
	}, nil
}
