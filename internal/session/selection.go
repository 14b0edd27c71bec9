// ABOUTME: Durable per-profile selection of the current board and routine
// ABOUTME: Persists through app_state so a restart resumes where the user was

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tapspeak/tapspeak/internal/store"
)

// BoardView is a board together with its buttons in position order.
type BoardView struct {
	Board   *store.Board
	Buttons []*store.Button
}

// Selection tracks which board and routine a profile is currently on.
// The selection survives restarts; a missing or deleted target falls back
// to the profile's core board.
type Selection struct {
	store     store.Store
	profileID string
	logger    *slog.Logger
}

// NewSelection creates selection state for the profile.
func NewSelection(s store.Store, profileID string) *Selection {
	return &Selection{
		store:     s,
		profileID: profileID,
		logger:    slog.Default().With("component", "session", "profile_id", profileID),
	}
}

func (s *Selection) boardKey() string {
	return fmt.Sprintf("profile:%s:current_board", s.profileID)
}

func (s *Selection) routineKey() string {
	return fmt.Sprintf("profile:%s:current_routine", s.profileID)
}

// SetBoard records the profile's current board.
func (s *Selection) SetBoard(ctx context.Context, boardID string) error {
	if _, err := s.store.GetBoard(ctx, boardID); err != nil {
		return err
	}
	return s.store.SetState(ctx, s.boardKey(), boardID)
}

// LoadBoard resolves the current board and its buttons in position order.
// When no selection exists, or the selected board has since been deleted,
// it falls back to the profile's core board.
func (s *Selection) LoadBoard(ctx context.Context) (*BoardView, error) {
	boardID, err := s.store.GetState(ctx, s.boardKey())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var board *store.Board
	if boardID != "" {
		board, err = s.store.GetBoard(ctx, boardID)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("selected board no longer exists, falling back to core board",
				"board_id", boardID)
			board = nil
		} else if err != nil {
			return nil, err
		}
	}
	if board == nil {
		board, err = s.store.GetCoreBoard(ctx, s.profileID)
		if err != nil {
			return nil, fmt.Errorf("resolving core board: %w", err)
		}
	}

	buttons, err := s.store.ListButtonsByBoard(ctx, board.ID)
	if err != nil {
		return nil, err
	}
	return &BoardView{Board: board, Buttons: buttons}, nil
}

// SetRoutine records the profile's current routine.
func (s *Selection) SetRoutine(ctx context.Context, routineID string) error {
	if _, err := s.store.GetRoutine(ctx, routineID); err != nil {
		return err
	}
	return s.store.SetState(ctx, s.routineKey(), routineID)
}

// ClearRoutine leaves routine mode.
func (s *Selection) ClearRoutine(ctx context.Context) error {
	return s.store.DeleteState(ctx, s.routineKey())
}

// CurrentRoutine resolves the current routine and its surviving pinned
// buttons. It returns nil without error when no routine is selected or the
// selected routine has since been deleted.
func (s *Selection) CurrentRoutine(ctx context.Context) (*store.Routine, []*store.Button, error) {
	routineID, err := s.store.GetState(ctx, s.routineKey())
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	routine, err := s.store.GetRoutine(ctx, routineID)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("selected routine no longer exists", "routine_id", routineID)
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	buttons, err := routine.ResolveButtons(ctx, s.store)
	if err != nil {
		return nil, nil, err
	}
	return routine, buttons, nil
}
