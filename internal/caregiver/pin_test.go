package caregiver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapspeak/tapspeak/internal/store"
)

func setupGate(t *testing.T) *Gate {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewGate(s)
}

func TestGate_SetAndVerify(t *testing.T) {
	gate := setupGate(t)
	ctx := context.Background()

	enabled, err := gate.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, gate.SetPIN(ctx, "4271"))

	enabled, err = gate.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	assert.NoError(t, gate.Verify(ctx, "4271"))
	assert.ErrorIs(t, gate.Verify(ctx, "0000"), ErrWrongPIN)
}

func TestGate_VerifyBeforeSet(t *testing.T) {
	gate := setupGate(t)
	assert.ErrorIs(t, gate.Verify(context.Background(), "4271"), ErrPINNotSet)
}

func TestGate_LengthBounds(t *testing.T) {
	gate := setupGate(t)
	ctx := context.Background()

	assert.Error(t, gate.SetPIN(ctx, "123"))
	assert.Error(t, gate.SetPIN(ctx, "123456789"))
	assert.NoError(t, gate.SetPIN(ctx, "1234"))
	assert.NoError(t, gate.SetPIN(ctx, "12345678"))
}

func TestGate_ReplaceAndClear(t *testing.T) {
	gate := setupGate(t)
	ctx := context.Background()

	require.NoError(t, gate.SetPIN(ctx, "4271"))
	require.NoError(t, gate.SetPIN(ctx, "9999"))
	assert.ErrorIs(t, gate.Verify(ctx, "4271"), ErrWrongPIN)
	assert.NoError(t, gate.Verify(ctx, "9999"))

	require.NoError(t, gate.Clear(ctx))
	enabled, err := gate.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}
