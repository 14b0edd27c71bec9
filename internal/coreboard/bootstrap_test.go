package coreboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapspeak/tapspeak/internal/store"
)

func setupBootstrapper(t *testing.T) (*Bootstrapper, *store.SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	profile := &store.Profile{ID: store.NewID(), Name: "Mia"}
	require.NoError(t, s.CreateProfile(context.Background(), profile))

	return NewBootstrapper(s), s, profile.ID
}

func TestVocabulary_FitsTheGrid(t *testing.T) {
	words, err := Vocabulary()
	require.NoError(t, err)
	assert.NotEmpty(t, words)
	assert.LessOrEqual(t, len(words), GridCols*GridRows)
	for _, w := range words {
		assert.NotEmpty(t, w.Label)
		assert.NotEmpty(t, w.Speech)
	}
}

func TestBootstrap_SeedsCoreBoard(t *testing.T) {
	b, s, profileID := setupBootstrapper(t)
	ctx := context.Background()

	board, err := b.Bootstrap(ctx, profileID)
	require.NoError(t, err)
	assert.True(t, board.IsCore)
	assert.Equal(t, GridCols, board.GridCols)
	assert.Equal(t, GridRows, board.GridRows)
	assert.Equal(t, BoardName, board.Name)

	buttons, err := s.ListButtonsByBoard(ctx, board.ID)
	require.NoError(t, err)
	require.NotEmpty(t, buttons)
	require.LessOrEqual(t, len(buttons), GridCols*GridRows)

	// Positions are dense from zero in vocabulary order
	for i, button := range buttons {
		assert.Equal(t, i, button.Position)
		assert.NotEmpty(t, button.Label)
		assert.NotEmpty(t, button.SpeechText)
	}
}

// Seeding supplies no timestamps; the store must assign real ones so the
// board sorts by creation order instead of the zero time.
func TestBootstrap_StampsTimestamps(t *testing.T) {
	b, s, profileID := setupBootstrapper(t)
	ctx := context.Background()

	board, err := b.Bootstrap(ctx, profileID)
	require.NoError(t, err)

	now := time.Now()
	assert.False(t, board.CreatedAt.IsZero(), "seeded board created_at is the zero time")
	assert.WithinDuration(t, now, board.CreatedAt, time.Minute)
	assert.False(t, board.UpdatedAt.IsZero())

	buttons, err := s.ListButtonsByBoard(ctx, board.ID)
	require.NoError(t, err)
	for _, button := range buttons {
		assert.False(t, button.CreatedAt.IsZero(), "seeded button created_at is the zero time")
		assert.WithinDuration(t, now, button.CreatedAt, time.Minute)
	}
}

func TestBootstrap_BoardIsDiscoverable(t *testing.T) {
	b, s, profileID := setupBootstrapper(t)
	ctx := context.Background()

	seeded, err := b.Bootstrap(ctx, profileID)
	require.NoError(t, err)

	core, err := s.GetCoreBoard(ctx, profileID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, core.ID)
}

func TestBootstrap_GuardedByHasCoreBoard(t *testing.T) {
	b, _, profileID := setupBootstrapper(t)
	ctx := context.Background()

	ok, err := b.HasCoreBoard(ctx, profileID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = b.Bootstrap(ctx, profileID)
	require.NoError(t, err)

	ok, err = b.HasCoreBoard(ctx, profileID)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second bootstrap is refused rather than duplicating the board
	_, err = b.Bootstrap(ctx, profileID)
	assert.Error(t, err)
}

func TestBootstrap_UnknownProfile(t *testing.T) {
	b, _, _ := setupBootstrapper(t)

	_, err := b.Bootstrap(context.Background(), store.NewID())
	assert.ErrorIs(t, err, store.ErrConstraintViolation)
}
