package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotdash/internal/shared"
)

// Session state keys.
const (
	KeyLocation = "location"
	KeyDevice   = "device_id"
)

// SessionRepository stores session state as key/value pairs.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns the value stored under key, or [shared.ErrNotFound].
func (r *SessionRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM session_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: session key %q", shared.ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query session state: %w", err)
	}
	return value, nil
}

// Set inserts or replaces the value under key.
func (r *SessionRepository) Set(key, value string) error {
	query := `
		INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SessionRepository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM session_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	return nil
}

// SaveLocation persists the dashboard location so it survives a restart.
func (r *SessionRepository) SaveLocation(raw string) error {
	return r.Set(KeyLocation, raw)
}

// LoadLocation returns the last persisted location, or "" when none was saved.
func (r *SessionRepository) LoadLocation() (string, error) {
	raw, err := r.Get(KeyLocation)
	if errors.Is(err, shared.ErrNotFound) {
		return "", nil
	}
	return raw, err
}
