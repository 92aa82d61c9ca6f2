package palette

import (
	"context"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

const (
	AssistPurpose = "assist"
	AssistParam   = "ai"
)

// Assistant turns a prompt into candidates and candidates into catalog entities.
type Assistant interface {
	ResolvePrompt(ctx context.Context, prompt string) ([]models.Candidate, error)
	ResolveCandidates(ctx context.Context, candidates []models.Candidate) ([]models.Resolved, error)
}

// AssistSource runs both resolution stages under one request context.
type AssistSource struct {
	assistant Assistant
}

func NewAssistSource(assistant Assistant) *AssistSource {
	return &AssistSource{assistant: assistant}
}

// Fetch resolves prompt to candidates and then to catalog entities. No candidates is an empty result, not an error.
func (s *AssistSource) Fetch(ctx context.Context, prompt string) ([]models.Resolved, error) {
	candidates, err := s.assistant.ResolvePrompt(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.assistant.ResolveCandidates(ctx, candidates)
}

func (s *AssistSource) Groups(resolved []models.Resolved) []Group {
	return AssistGroups(resolved)
}

// AssistGroups lists resolved entities in candidate order under one "Suggestions" group.
func AssistGroups(resolved []models.Resolved) []Group {
	items := make([]Item, 0, len(resolved))
	for _, r := range resolved {
		switch {
		case r.Track != nil && r.Track.ID != "":
			item := trackItem(r.Track, KindResolvedTrack)
			item.Subtitle = r.Track.ArtistLine()
			items = append(items, item)
		case r.Artist != nil && r.Artist.ID != "":
			items = append(items, artistItem(r.Artist, KindResolvedArtist))
		}
	}
	return compact([]Group{{Title: "Suggestions", Items: items}})
}

// NewAssist builds the assist overlay: nothing is sent until enter is pressed in the prompt field.
func NewAssist(ctx context.Context, assistant Assistant, cfg shared.UIConfig) *Controller[[]models.Resolved] {
	return NewController[[]models.Resolved](ctx, NewAssistSource(assistant), Options{
		Purpose:     AssistPurpose,
		Param:       AssistParam,
		Title:       "Ask",
		Placeholder: `Try: "Recommend songs like Hotline Bling"`,
		IdleText:    "Describe what you want to hear, then press enter",
		EmptyText:   "No suggestions yet",
		Mode:        SubmitExplicit,
		MinLength:   2,
		Delay:       cfg.Debounce(),
	})
}
