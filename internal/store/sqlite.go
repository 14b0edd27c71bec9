// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Owns schema creation and versioned migrations applied in ascending order

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is created if it doesn't exist and pending migrations are
// applied. Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Cascade deletes depend on this pragma; it is off by default.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// migration is a single versioned schema change. Versions apply in ascending
// order exactly once each; applied versions are recorded in the migrations
// table.
type migration struct {
	version int
	name    string
	stmts   string
}

var migrations = []migration{
	{
		version: 1,
		name:    "base schema",
		stmts: `
			CREATE TABLE IF NOT EXISTS profiles (
				id            TEXT PRIMARY KEY,
				name          TEXT NOT NULL,
				avatar_path   TEXT,
				settings_json TEXT NOT NULL DEFAULT '{}',
				created_at    TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS boards (
				id         TEXT PRIMARY KEY,
				profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				name       TEXT NOT NULL,
				is_core    INTEGER NOT NULL DEFAULT 0,
				grid_cols  INTEGER NOT NULL CHECK (grid_cols BETWEEN 2 AND 6),
				grid_rows  INTEGER NOT NULL CHECK (grid_rows BETWEEN 2 AND 6),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_boards_profile ON boards(profile_id);
			CREATE INDEX IF NOT EXISTS idx_boards_profile_core ON boards(profile_id, is_core);

			CREATE TABLE IF NOT EXISTS buttons (
				id          TEXT PRIMARY KEY,
				board_id    TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
				label       TEXT NOT NULL,
				speech_text TEXT NOT NULL,
				image_path  TEXT NOT NULL DEFAULT '',
				symbol_path TEXT,
				position    INTEGER NOT NULL CHECK (position >= 0),
				color       TEXT,
				is_pinned   INTEGER NOT NULL DEFAULT 0,
				created_at  TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_buttons_board ON buttons(board_id);
			CREATE INDEX IF NOT EXISTS idx_buttons_board_position ON buttons(board_id, position);

			CREATE TABLE IF NOT EXISTS routines (
				id                     TEXT PRIMARY KEY,
				profile_id             TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				name                   TEXT NOT NULL,
				pinned_button_ids_json TEXT NOT NULL DEFAULT '[]',
				created_at             TEXT NOT NULL,
				updated_at             TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_routines_profile ON routines(profile_id);

			CREATE TABLE IF NOT EXISTS media_assets (
				id         TEXT PRIMARY KEY,
				profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				file_path  TEXT NOT NULL,
				type       TEXT NOT NULL CHECK (type IN ('photo', 'symbol')),
				created_at TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_media_profile ON media_assets(profile_id);

			CREATE TABLE IF NOT EXISTS utterances (
				id         TEXT PRIMARY KEY,
				profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				text       TEXT NOT NULL,
				routine_id TEXT REFERENCES routines(id) ON DELETE SET NULL,
				spoken_at  TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_utterances_profile_spoken ON utterances(profile_id, spoken_at DESC);

			CREATE TABLE IF NOT EXISTS usage_logs (
				id            TEXT PRIMARY KEY,
				profile_id    TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				event_type    TEXT NOT NULL,
				metadata_json TEXT NOT NULL DEFAULT '{}',
				created_at    TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_usage_profile_created ON usage_logs(profile_id, created_at);

			CREATE TABLE IF NOT EXISTS subscription_status (
				id                      INTEGER PRIMARY KEY CHECK (id = 1),
				status                  TEXT NOT NULL CHECK (status IN (
					'uninitialized', 'trial_active', 'active_subscribed',
					'grace_period', 'expired_limited_mode'
				)),
				expires_at_ms           INTEGER,
				product_id              TEXT,
				last_validated_at_ms    INTEGER NOT NULL,
				trial_started_at_ms     INTEGER,
				grace_period_ends_at_ms INTEGER,
				raw_entitlement_json    TEXT NOT NULL DEFAULT ''
			);
		`,
	},
	{
		version: 2,
		name:    "app_state key-value",
		stmts: `
			CREATE TABLE IF NOT EXISTS app_state (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
		`,
	},
}

// runMigrations applies pending migrations in ascending version order.
func (s *SQLiteStore) runMigrations() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var current sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(version) FROM migrations`).Scan(&current); err != nil {
		return fmt.Errorf("reading migration version: %w", err)
	}

	for _, m := range migrations {
		if current.Valid && m.version <= int(current.Int64) {
			continue
		}
		if _, err := s.db.Exec(m.stmts); err != nil {
			return fmt.Errorf("applying migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO migrations (version, applied_at) VALUES (?, ?)`,
			m.version, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		s.logger.Info("applied migration", "version", m.version, "name", m.name)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite constraint violation.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "constraint failed") ||
		strings.Contains(errStr, "FOREIGN KEY constraint") ||
		strings.Contains(errStr, "CHECK constraint")
}

// storageErr maps a driver error into the store error taxonomy, keeping the
// operation name in the message.
func storageErr(op string, err error) error {
	if isConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrConstraintViolation, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorageIO, err)
}

// nullString returns nil for empty strings, otherwise the string itself.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// strPtr converts a nullable column into a *string.
func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// int64Ptr converts a nullable column into a *int64.
func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// formatTime renders timestamps the way every table stores them.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// stampTime assigns a creation timestamp the way NewID assigns ids: a caller
// may supply one, and an unset (zero) value gets a fresh time.Now. Creation
// order and recency queries depend on these columns being real times.
func stampTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// parseTime parses a stored timestamp column.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Ensure SQLiteStore implements the Store interface.
var _ Store = (*SQLiteStore)(nil)
