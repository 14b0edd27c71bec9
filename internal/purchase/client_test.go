package purchase

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func signedTransaction(t *testing.T, expiresAtMs int64, productID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"expiresAtMs": expiresAtMs,
		"productId":   productID,
		"iat":         time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestClient_Validate_ActiveEntitlement(t *testing.T) {
	expires := time.Now().Add(30 * 24 * time.Hour).UnixMilli()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscribers/user-1", r.URL.Path)
		assert.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"entitlement":{"active":true,"expiresAtMs":%d,"productId":"tapspeak.premium.monthly"}}`, expires)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "api-key"})
	facts, err := client.Validate(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.Equal(t, expires, *facts.ExpiresAt)
	assert.Equal(t, "tapspeak.premium.monthly", *facts.ProductID)
	assert.NotZero(t, facts.LastValidatedAt)
}

func TestClient_Validate_NoEntitlementIsNotRevocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"entitlement":null}`)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "api-key"})
	facts, err := client.Validate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, facts)
}

func TestClient_Validate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "api-key", MaxRetryAttempts: 1})
	_, err := client.Validate(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestClient_Validate_RetriesServerErrors(t *testing.T) {
	var calls int
	expires := time.Now().Add(24 * time.Hour).UnixMilli()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"entitlement":{"active":true,"expiresAtMs":%d,"productId":"p"}}`, expires)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "api-key", MaxRetryAttempts: 2})
	facts, err := client.Validate(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.Equal(t, 2, calls)
}

func TestClient_Validate_SignedTransactionWins(t *testing.T) {
	signedExpires := time.Now().Add(365 * 24 * time.Hour).UnixMilli()
	signed := signedTransaction(t, signedExpires, "tapspeak.premium.yearly")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"entitlement":{"active":true,"expiresAtMs":1,"productId":"stale"},"signedTransaction":%q}`, signed)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "api-key", SigningSecret: testSecret})
	facts, err := client.Validate(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.Equal(t, signedExpires, *facts.ExpiresAt)
	assert.Equal(t, "tapspeak.premium.yearly", *facts.ProductID)
}

func TestClient_Validate_BadSignatureRejected(t *testing.T) {
	signed := signedTransaction(t, time.Now().UnixMilli(), "p")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"entitlement":{"active":true,"expiresAtMs":1,"productId":"p"},"signedTransaction":%q}`, signed)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "api-key", SigningSecret: "different-secret"})
	_, err := client.Validate(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}
