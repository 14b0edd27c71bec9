// ABOUTME: Caregiver PIN gate protecting settings and board editing
// ABOUTME: Stores a bcrypt hash in app_state, never the PIN itself

package caregiver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tapspeak/tapspeak/internal/store"
)

const pinHashKey = "caregiver:pin_hash"

// PIN length bounds. Short PINs are trivially guessable; long ones are a
// typing burden on a shared device.
const (
	MinPINLength = 4
	MaxPINLength = 8
)

var (
	// ErrWrongPIN is returned when verification fails.
	ErrWrongPIN = errors.New("wrong caregiver PIN")
	// ErrPINNotSet is returned when verifying before a PIN exists.
	ErrPINNotSet = errors.New("no caregiver PIN is set")
)

// Gate manages the caregiver PIN.
type Gate struct {
	store store.Store
}

// NewGate creates a PIN gate over the given store.
func NewGate(s store.Store) *Gate {
	return &Gate{store: s}
}

// SetPIN hashes and stores the PIN, replacing any existing one.
func (g *Gate) SetPIN(ctx context.Context, pin string) error {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return fmt.Errorf("PIN must be %d to %d characters", MinPINLength, MaxPINLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing PIN: %w", err)
	}
	return g.store.SetState(ctx, pinHashKey, string(hash))
}

// Enabled reports whether a PIN has been set.
func (g *Gate) Enabled(ctx context.Context) (bool, error) {
	_, err := g.store.GetState(ctx, pinHashKey)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Verify checks the PIN against the stored hash.
func (g *Gate) Verify(ctx context.Context, pin string) error {
	hash, err := g.store.GetState(ctx, pinHashKey)
	if errors.Is(err, store.ErrNotFound) {
		return ErrPINNotSet
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) != nil {
		return ErrWrongPIN
	}
	return nil
}

// Clear removes the PIN, disabling the gate.
func (g *Gate) Clear(ctx context.Context) error {
	return g.store.DeleteState(ctx, pinHashKey)
}
