// ABOUTME: Store interface, entity types and error taxonomy for tapspeak persistence
// ABOUTME: Defines Profile, Board, Button, Routine and friends plus the Store contract

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotInitialized is returned when the store is used before Init.
var ErrNotInitialized = errors.New("store not initialized")

// ErrConstraintViolation is returned when a write violates a foreign key,
// CHECK or uniqueness constraint.
var ErrConstraintViolation = errors.New("constraint violation")

// ErrStorageIO wraps underlying read/write failures. Callers may retry.
var ErrStorageIO = errors.New("storage i/o failure")

// ValidationError describes a domain-rule failure on input. It is always
// caller-correctable and never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewID returns a fresh opaque entity id. Callers generate ids before Create
// so that optimistic UI state can reference the entity immediately.
func NewID() string {
	return uuid.NewString()
}

// VoiceSettings holds per-profile speech synthesis parameters.
type VoiceSettings struct {
	Voice  string  `json:"voice,omitempty"`
	Pitch  float64 `json:"pitch,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

// ProfileSettings is the typed form of the profiles.settings_json blob.
// Raw blobs never leak past this package.
type ProfileSettings struct {
	GridCols       int           `json:"grid_cols,omitempty"`
	GridRows       int           `json:"grid_rows,omitempty"`
	Theme          string        `json:"theme,omitempty"`
	Voice          VoiceSettings `json:"voice,omitempty"`
	HighContrast   bool          `json:"high_contrast,omitempty"`
	ReducedMotion  bool          `json:"reduced_motion,omitempty"`
	AnalyticsOptIn bool          `json:"analytics_opt_in,omitempty"`
}

// Profile is a child profile. Deleting a profile cascades to its boards,
// routines, media assets, utterances and usage logs.
type Profile struct {
	ID         string `validate:"required"`
	Name       string `validate:"required,max=120"`
	AvatarPath *string
	Settings   ProfileSettings
	CreatedAt  time.Time
}

// Board is a grid of buttons owned by a profile. Exactly one board per
// profile should be core; this is a soft invariant, not a constraint.
type Board struct {
	ID        string `validate:"required"`
	ProfileID string `validate:"required"`
	Name      string `validate:"required,max=120"`
	IsCore    bool
	GridCols  int `validate:"min=2,max=6"`
	GridRows  int `validate:"min=2,max=6"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Button is a single cell on a board. Position is row*grid_cols+col and must
// decode to a cell within the board's grid; uniqueness among a board's
// buttons is preserved by the editor, not the database.
type Button struct {
	ID         string `validate:"required"`
	BoardID    string `validate:"required"`
	Label      string `validate:"required,max=120"`
	SpeechText string `validate:"required,max=120"`
	ImagePath  string
	SymbolPath *string
	Position   int `validate:"min=0"`
	Color      *string
	IsPinned   bool
	CreatedAt  time.Time
}

// Routine is a named subset of pinned buttons for a profile. Referential
// integrity of PinnedButtonIDs is not enforced; readers tolerate dangling ids.
type Routine struct {
	ID              string `validate:"required"`
	ProfileID       string `validate:"required"`
	Name            string `validate:"required,max=120"`
	PinnedButtonIDs []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MediaAsset types.
const (
	MediaTypePhoto  = "photo"
	MediaTypeSymbol = "symbol"
)

// MediaAsset is a locally stored image independent of any button.
type MediaAsset struct {
	ID        string `validate:"required"`
	ProfileID string `validate:"required"`
	FilePath  string `validate:"required"`
	Type      string `validate:"required,oneof=photo symbol"`
	CreatedAt time.Time
}

// Utterance is a historical record of a spoken sentence.
type Utterance struct {
	ID        string `validate:"required"`
	ProfileID string `validate:"required"`
	Text      string `validate:"required"`
	RoutineID *string
	SpokenAt  time.Time
}

// UsageLog is a single append-only analytics event.
type UsageLog struct {
	ID        string `validate:"required"`
	ProfileID string `validate:"required"`
	EventType string `validate:"required,max=64"`
	Metadata  map[string]any
	CreatedAt time.Time
}

// Subscription is the single evolving entitlement snapshot row. Timestamps
// are epoch milliseconds to match the durable entitlement contract.
type Subscription struct {
	Status              string
	ExpiresAtMs         *int64
	ProductID           *string
	LastValidatedAtMs   int64
	TrialStartedAtMs    *int64
	GracePeriodEndsAtMs *int64
	RawEntitlementJSON  string
}

// ProfileUpdate is a partial update; nil fields are left untouched.
// Nullable columns use *sql.NullString so callers can write explicit NULLs.
type ProfileUpdate struct {
	Name       *string
	AvatarPath *sql.NullString
	Settings   *ProfileSettings
}

// BoardUpdate is a partial update; nil fields are left untouched.
type BoardUpdate struct {
	Name     *string
	IsCore   *bool
	GridCols *int
	GridRows *int
}

// ButtonUpdate is a partial update; nil fields are left untouched.
type ButtonUpdate struct {
	Label      *string
	SpeechText *string
	ImagePath  *string
	SymbolPath *sql.NullString
	Position   *int
	Color      *sql.NullString
	IsPinned   *bool
}

// RoutineUpdate is a partial update; nil fields are left untouched.
type RoutineUpdate struct {
	Name            *string
	PinnedButtonIDs *[]string
}

// Store defines typed CRUD over the persistent schema. Every operation may
// fail with ErrNotInitialized, ErrConstraintViolation or ErrStorageIO; errors
// are always surfaced, never swallowed.
type Store interface {
	// Profiles
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)
	ListProfiles(ctx context.Context) ([]*Profile, error)
	UpdateProfile(ctx context.Context, id string, u ProfileUpdate) error
	DeleteProfile(ctx context.Context, id string) error

	// Boards
	CreateBoard(ctx context.Context, b *Board) error
	GetBoard(ctx context.Context, id string) (*Board, error)
	ListBoardsByProfile(ctx context.Context, profileID string) ([]*Board, error)
	GetCoreBoard(ctx context.Context, profileID string) (*Board, error)
	UpdateBoard(ctx context.Context, id string, u BoardUpdate) error
	DeleteBoard(ctx context.Context, id string) error

	// Buttons
	CreateButton(ctx context.Context, b *Button) error
	GetButton(ctx context.Context, id string) (*Button, error)
	ListButtonsByBoard(ctx context.Context, boardID string) ([]*Button, error)
	UpdateButton(ctx context.Context, id string, u ButtonUpdate) error
	DeleteButton(ctx context.Context, id string) error

	// Routines
	CreateRoutine(ctx context.Context, r *Routine) error
	GetRoutine(ctx context.Context, id string) (*Routine, error)
	ListRoutinesByProfile(ctx context.Context, profileID string) ([]*Routine, error)
	UpdateRoutine(ctx context.Context, id string, u RoutineUpdate) error
	DeleteRoutine(ctx context.Context, id string) error

	// Media assets
	CreateMediaAsset(ctx context.Context, m *MediaAsset) error
	GetMediaAsset(ctx context.Context, id string) (*MediaAsset, error)
	ListMediaAssetsByProfile(ctx context.Context, profileID string) ([]*MediaAsset, error)
	DeleteMediaAsset(ctx context.Context, id string) error

	// Utterances
	CreateUtterance(ctx context.Context, u *Utterance) error
	ListUtterancesByProfile(ctx context.Context, profileID string, limit int) ([]*Utterance, error)

	// Usage logs. The caller passes the profile's opt-in flag explicitly;
	// when it is false the event is dropped without touching the database.
	AppendUsageLog(ctx context.Context, entry *UsageLog, analyticsOptIn bool) error
	ListUsageLogsByProfile(ctx context.Context, profileID string, limit int) ([]*UsageLog, error)

	// Subscription snapshot (single row)
	SaveSubscription(ctx context.Context, s *Subscription) error
	GetSubscription(ctx context.Context) (*Subscription, error)
	DeleteSubscription(ctx context.Context) error

	// App state key-value (selection, caregiver PIN, entitlement mirror)
	SetState(ctx context.Context, key, value string) error
	GetState(ctx context.Context, key string) (string, error)
	DeleteState(ctx context.Context, key string) error

	// Close releases the underlying database handle
	Close() error
}
