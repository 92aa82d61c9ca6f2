package services

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

// Gateway is the single entry point the UI talks to: Spotify operations plus two-stage assist resolution.
type Gateway struct {
	*SpotifyService
	assist   *AssistService
	resolver *Resolver
}

// NewGateway wires a Gateway. cache may be nil.
func NewGateway(spotify *SpotifyService, assist *AssistService, cache ResolutionCacher, logger *log.Logger) *Gateway {
	return &Gateway{
		SpotifyService: spotify,
		assist:         assist,
		resolver:       NewResolver(spotify, cache, logger),
	}
}

// ResolvePrompt runs the first assist stage.
func (g *Gateway) ResolvePrompt(ctx context.Context, prompt string) ([]models.Candidate, error) {
	if g.assist == nil {
		return nil, shared.ErrServiceUnavailable
	}
	return g.assist.ResolvePrompt(ctx, prompt)
}

// ResolveCandidates runs the second assist stage.
func (g *Gateway) ResolveCandidates(ctx context.Context, candidates []models.Candidate) ([]models.Resolved, error) {
	return g.resolver.ResolveCandidates(ctx, candidates)
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
