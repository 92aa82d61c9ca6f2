package services

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

// CatalogSearcher is the subset of [SpotifyService] used to resolve candidates.
type CatalogSearcher interface {
	Search(ctx context.Context, query string, types []models.SearchType, limit int) (*models.SearchResults, error)
}

// ResolutionCacher stores previously resolved candidates by lookup key.
type ResolutionCacher interface {
	LookupResolution(key string) (*models.Resolved, error)
	StoreResolution(key string, resolved models.Resolved) error
}

// Resolver matches assist candidates to catalog entities, one limit-1 search per candidate.
type Resolver struct {
	catalog CatalogSearcher
	cache   ResolutionCacher
	logger  *log.Logger
}

// NewResolver creates a Resolver. cache and logger may be nil.
func NewResolver(catalog CatalogSearcher, cache ResolutionCacher, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{catalog: catalog, cache: cache, logger: logger}
}

// ResolutionKey is the cache key for a candidate.
func ResolutionKey(c models.Candidate) string {
	return string(c.Kind()) + ":" + shared.NormalizeTrackKey(c.Track, c.Artist)
}

// ResolveCandidates resolves candidates in order.
//
// Candidates with no match, or whose lookup fails, are omitted. Only cancellation aborts the whole call.
func (r *Resolver) ResolveCandidates(ctx context.Context, candidates []models.Candidate) ([]models.Resolved, error) {
	resolved := make([]models.Resolved, 0, len(candidates))

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		query := c.Query()
		if query == "" {
			continue
		}

		key := ResolutionKey(c)
		if hit := r.lookup(key); hit != nil {
			resolved = append(resolved, *hit)
			continue
		}

		kind := c.Kind()
		results, err := r.catalog.Search(ctx, query, []models.SearchType{kind}, 1)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			r.logger.Warn("candidate lookup failed", "query", query, "error", err)
			continue
		}

		res, ok := firstMatch(query, kind, results)
		if !ok {
			continue
		}

		if r.cache != nil {
			if err := r.cache.StoreResolution(key, res); err != nil {
				r.logger.Warn("failed to cache resolution", "key", key, "error", err)
			}
		}
		resolved = append(resolved, res)
	}

	return resolved, nil
}

func (r *Resolver) lookup(key string) *models.Resolved {
	if r.cache == nil {
		return nil
	}
	hit, err := r.cache.LookupResolution(key)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("resolution cache lookup failed", "key", key, "error", err)
		}
		return nil
	}
	return hit
}

func firstMatch(query string, kind models.SearchType, results *models.SearchResults) (models.Resolved, bool) {
	if results == nil {
		return models.Resolved{}, false
	}

	switch kind {
	case models.SearchTrack:
		for _, t := range results.Tracks {
			if t != nil && t.ID != "" {
				return models.Resolved{Query: query, Type: models.SearchTrack, Track: t}, true
			}
		}
	case models.SearchArtist:
		for _, a := range results.Artists {
			if a != nil && a.ID != "" {
				return models.Resolved{Query: query, Type: models.SearchArtist, Artist: a}, true
			}
		}
	}
	return models.Resolved{}, false
}
