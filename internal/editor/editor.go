// ABOUTME: Caregiver editing operations over boards and buttons
// ABOUTME: Swaps button positions optimistically with revert on partial failure

package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tapspeak/tapspeak/internal/store"
)

// Editor applies caregiver edits to boards.
type Editor struct {
	store  store.Store
	logger *slog.Logger
}

// NewEditor creates an editor backed by the given store.
func NewEditor(s store.Store) *Editor {
	return &Editor{
		store:  s,
		logger: slog.Default().With("component", "editor"),
	}
}

// SwapPositions exchanges the grid positions of two buttons on the same
// board. The writes are applied one at a time; if the second write fails the
// first is reverted so the board never keeps a half-applied swap.
func (e *Editor) SwapPositions(ctx context.Context, buttonIDA, buttonIDB string) error {
	if buttonIDA == buttonIDB {
		return nil
	}

	a, err := e.store.GetButton(ctx, buttonIDA)
	if err != nil {
		return fmt.Errorf("loading button %s: %w", buttonIDA, err)
	}
	b, err := e.store.GetButton(ctx, buttonIDB)
	if err != nil {
		return fmt.Errorf("loading button %s: %w", buttonIDB, err)
	}
	if a.BoardID != b.BoardID {
		return fmt.Errorf("%w: buttons %s and %s are on different boards",
			store.ErrConstraintViolation, buttonIDA, buttonIDB)
	}

	originalA := a.Position
	if err := e.store.UpdateButton(ctx, a.ID, store.ButtonUpdate{Position: &b.Position}); err != nil {
		return fmt.Errorf("moving button %s: %w", a.ID, err)
	}
	if err := e.store.UpdateButton(ctx, b.ID, store.ButtonUpdate{Position: &originalA}); err != nil {
		// Put the first button back so both keep their pre-swap cells
		if revertErr := e.store.UpdateButton(ctx, a.ID, store.ButtonUpdate{Position: &originalA}); revertErr != nil {
			e.logger.Error("failed to revert partial swap",
				"button_id", a.ID, "error", revertErr)
		}
		return fmt.Errorf("moving button %s: %w", b.ID, err)
	}
	return nil
}
