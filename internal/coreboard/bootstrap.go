// ABOUTME: Seeds the starter core board for a new profile
// ABOUTME: Fills a 4x4 grid from the embedded vocabulary

package coreboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tapspeak/tapspeak/internal/store"
)

// Grid dimensions of the starter board.
const (
	GridCols = 4
	GridRows = 4
)

// BoardName is the display name of the seeded board.
const BoardName = "Core Board"

// Bootstrapper seeds new profiles with a starter core board.
type Bootstrapper struct {
	store  store.Store
	logger *slog.Logger
}

// NewBootstrapper creates a bootstrapper backed by the given store.
func NewBootstrapper(s store.Store) *Bootstrapper {
	return &Bootstrapper{
		store:  s,
		logger: slog.Default().With("component", "coreboard"),
	}
}

// HasCoreBoard reports whether the profile already has a core board.
func (b *Bootstrapper) HasCoreBoard(ctx context.Context, profileID string) (bool, error) {
	_, err := b.store.GetCoreBoard(ctx, profileID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Bootstrap creates the starter core board for the profile and fills it with
// the bundled vocabulary, at most one word per grid cell. Bootstrap is not
// idempotent; callers guard with HasCoreBoard. Symbol paths are best effort
// and a word without one still gets a button.
func (b *Bootstrapper) Bootstrap(ctx context.Context, profileID string) (*store.Board, error) {
	ok, err := b.HasCoreBoard(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("checking for existing core board: %w", err)
	}
	if ok {
		return nil, fmt.Errorf("profile %s already has a core board", profileID)
	}

	words, err := Vocabulary()
	if err != nil {
		return nil, err
	}

	board := &store.Board{
		ID:        store.NewID(),
		ProfileID: profileID,
		Name:      BoardName,
		IsCore:    true,
		GridCols:  GridCols,
		GridRows:  GridRows,
	}
	if err := b.store.CreateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("creating core board: %w", err)
	}

	cells := GridCols * GridRows
	if len(words) > cells {
		b.logger.Warn("vocabulary exceeds the grid, truncating",
			"words", len(words), "cells", cells)
		words = words[:cells]
	}

	for position, word := range words {
		button := &store.Button{
			ID:         store.NewID(),
			BoardID:    board.ID,
			Label:      word.Label,
			SpeechText: word.Speech,
			Position:   position,
		}
		if word.Symbol != "" {
			symbol := word.Symbol
			button.SymbolPath = &symbol
		}
		if err := b.store.CreateButton(ctx, button); err != nil {
			return nil, fmt.Errorf("seeding button %q: %w", word.Label, err)
		}
	}

	b.logger.Info("seeded core board",
		"profile_id", profileID, "board_id", board.ID, "buttons", len(words))
	return b.store.GetBoard(ctx, board.ID)
}
