// ABOUTME: Remote purchase validation client producing entitlement facts
// ABOUTME: Retries transient failures and degrades to ErrRemoteUnavailable when offline

package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"github.com/tapspeak/tapspeak/internal/entitlement"
)

// ErrRemoteUnavailable is returned when the validation service cannot be
// reached. Callers fall back to cached facts rather than propagating failure.
var ErrRemoteUnavailable = errors.New("purchase validation service unreachable")

// Config holds validation service settings.
type Config struct {
	BaseURL string
	APIKey  string
	// SigningSecret verifies the service's signed transaction payload when
	// one is present. Empty disables signature verification.
	SigningSecret string
	// MaxRetryAttempts bounds transient-failure retries. Zero means 2.
	MaxRetryAttempts uint
}

// Client validates purchases against the remote service.
type Client struct {
	http   *resty.Client
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// NewClient creates a purchase validation client.
func NewClient(config Config) *Client {
	if config.MaxRetryAttempts == 0 {
		config.MaxRetryAttempts = 2
	}
	return &Client{
		http:   resty.New().SetBaseURL(config.BaseURL),
		config: config,
		logger: slog.Default().With("component", "purchase"),
		now:    time.Now,
	}
}

// customerInfo is the validation service's response body.
type customerInfo struct {
	Entitlement *struct {
		Active      bool   `json:"active"`
		ExpiresAtMs int64  `json:"expiresAtMs"`
		ProductID   string `json:"productId"`
	} `json:"entitlement"`
	SignedTransaction string `json:"signedTransaction,omitempty"`
}

// Validate asks the service for the customer's active entitlement.
//
// A reachable service that reports no active entitlement returns (nil, nil):
// "not found" is not "revoked", and the caller keeps its cached facts. Only
// an unreachable service yields ErrRemoteUnavailable.
func (c *Client) Validate(ctx context.Context, appUserID string) (*entitlement.Facts, error) {
	var res *resty.Response
	err := retry.Do(
		func() error {
			var rerr error
			res, rerr = c.http.R().
				SetContext(ctx).
				SetHeader("Authorization", "Bearer "+c.config.APIKey).
				SetResult(&customerInfo{}).
				Get(fmt.Sprintf("/v1/subscribers/%s", appUserID))
			if rerr != nil {
				return rerr
			}
			if res.StatusCode() >= http.StatusInternalServerError {
				return fmt.Errorf("status code %d", res.StatusCode())
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.config.MaxRetryAttempts+1),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		c.logger.Warn("purchase validation unreachable", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrRemoteUnavailable, res.StatusCode())
	}

	info, ok := res.Result().(*customerInfo)
	if !ok || info == nil {
		return nil, fmt.Errorf("%w: malformed response", ErrRemoteUnavailable)
	}
	if info.Entitlement == nil || !info.Entitlement.Active {
		c.logger.Debug("no active entitlement reported", "app_user_id", appUserID)
		return nil, nil
	}

	expires := info.Entitlement.ExpiresAtMs
	product := info.Entitlement.ProductID

	if info.SignedTransaction != "" && c.config.SigningSecret != "" {
		tx, err := c.verifyTransaction(info.SignedTransaction)
		if err != nil {
			return nil, fmt.Errorf("verifying signed transaction: %w", err)
		}
		// The signed payload is authoritative over the plain JSON fields
		expires = tx.ExpiresAtMs
		product = tx.ProductID
	}

	facts := &entitlement.Facts{
		ExpiresAt:       &expires,
		ProductID:       &product,
		LastValidatedAt: entitlement.Millis(c.now()),
	}
	c.logger.Info("purchase validated", "product_id", product)
	return facts, nil
}
