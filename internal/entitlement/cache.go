// ABOUTME: Durable mirror of the last known entitlement facts for offline startup
// ABOUTME: Get self-corrects a stale stored status before returning it

package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tapspeak/tapspeak/internal/store"
)

// SubscriptionStore is the slice of the store the cache needs.
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, s *store.Subscription) error
	GetSubscription(ctx context.Context) (*store.Subscription, error)
	DeleteSubscription(ctx context.Context) error
}

// Cache makes the engine's last computed facts available before any network
// round-trip is possible (cold start, offline).
type Cache struct {
	store  SubscriptionStore
	engine Engine
	logger *slog.Logger
	now    func() time.Time
}

// NewCache creates a cache over the given subscription store.
func NewCache(s SubscriptionStore, engine Engine) *Cache {
	return &Cache{
		store:  s,
		engine: engine,
		logger: slog.Default().With("component", "entitlement"),
		now:    time.Now,
	}
}

// Get returns the last persisted fact set, or nil when none exists. The
// cached facts are re-evaluated in-process; when the freshly computed status
// differs from the stored one, the corrected status is persisted before
// returning. A long-dormant install therefore never reports a stale "active"
// after expiry while waiting for a network check.
func (c *Cache) Get(ctx context.Context) (*Facts, error) {
	sub, err := c.store.GetSubscription(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	facts := factsFromRow(sub)
	fresh := c.engine.Evaluate(facts, c.now())
	if fresh != facts.Status {
		c.logger.Info("correcting stale cached entitlement status",
			"stored", facts.Status, "computed", fresh)
		facts.Status = fresh
		if err := c.Set(ctx, facts); err != nil {
			return nil, err
		}
	}
	return facts, nil
}

// Set persists the full fact set with overwrite semantics, not merge.
func (c *Cache) Set(ctx context.Context, f *Facts) error {
	row, err := rowFromFacts(f)
	if err != nil {
		return err
	}
	return c.store.SaveSubscription(ctx, row)
}

// Clear removes the cached facts (sign-out/data deletion).
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.DeleteSubscription(ctx)
}

// SetEntitlement replaces the fact set wholesale after a successful remote
// validation or trial start, stamping the evaluated status. This is the only
// mutation entry point; status queries never mutate facts as a side effect.
func (c *Cache) SetEntitlement(ctx context.Context, f *Facts) error {
	f.Status = c.engine.Evaluate(f, c.now())
	return c.Set(ctx, f)
}
