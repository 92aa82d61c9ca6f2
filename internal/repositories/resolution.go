package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

// ResolutionRepository caches resolved assist candidates. It implements services.ResolutionCacher.
type ResolutionRepository struct {
	db *sql.DB
}

// NewResolutionRepository creates a new [ResolutionRepository] with the given database connection
func NewResolutionRepository(db *sql.DB) *ResolutionRepository {
	return &ResolutionRepository{db: db}
}

// LookupResolution returns the cached entity for key, or [shared.ErrNotFound].
func (r *ResolutionRepository) LookupResolution(key string) (*models.Resolved, error) {
	var (
		kind    string
		query   string
		payload string
	)
	err := r.db.QueryRow(`SELECT kind, query, payload FROM resolutions WHERE lookup_key = ?`, key).Scan(&kind, &query, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: resolution %q", shared.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resolution: %w", err)
	}

	resolved := &models.Resolved{Query: query, Type: models.SearchType(kind)}
	switch resolved.Type {
	case models.SearchTrack:
		resolved.Track = &models.Track{}
		err = json.Unmarshal([]byte(payload), resolved.Track)
	case models.SearchArtist:
		resolved.Artist = &models.Artist{}
		err = json.Unmarshal([]byte(payload), resolved.Artist)
	default:
		return nil, fmt.Errorf("%w: unknown resolution kind %q", shared.ErrMalformedResponse, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: resolution payload: %v", shared.ErrMalformedResponse, err)
	}
	return resolved, nil
}

// StoreResolution caches res under key, replacing any previous entry.
func (r *ResolutionRepository) StoreResolution(key string, res models.Resolved) error {
	var (
		entity         any
		itemID, uri, n string
	)
	switch {
	case res.Track != nil:
		entity, itemID, uri, n = res.Track, res.Track.ID, res.Track.URI, res.Track.Name
	case res.Artist != nil:
		entity, itemID, uri, n = res.Artist, res.Artist.ID, res.Artist.URI, res.Artist.Name
	default:
		return fmt.Errorf("%w: resolution has no entity", shared.ErrInvalidInput)
	}

	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode resolution: %w", err)
	}

	query := `
		INSERT INTO resolutions (id, lookup_key, kind, item_id, uri, name, query, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lookup_key) DO UPDATE SET
			kind = excluded.kind, item_id = excluded.item_id, uri = excluded.uri, name = excluded.name,
			query = excluded.query, payload = excluded.payload, created_at = excluded.created_at
	`
	_, err = r.db.Exec(query, shared.GenerateID(), key, string(res.Type), itemID, uri, n, res.Query, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store resolution: %w", err)
	}
	return nil
}

// Prune deletes entries cached before cutoff and returns how many were removed.
func (r *ResolutionRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM resolutions WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune resolutions: %w", err)
	}
	return rowsAffected(result, "prune")
}

// Count returns the number of cached resolutions.
func (r *ResolutionRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM resolutions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count resolutions: %w", err)
	}
	return n, nil
}
