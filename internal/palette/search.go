package palette

import (
	"context"
	"strings"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

const (
	SearchPurpose = "search"
	SearchParam   = "q"
	// MinSearchLength is the trimmed query length below which no search is sent.
	MinSearchLength = 2
)

// Searcher runs a federated catalog search.
type Searcher interface {
	Search(ctx context.Context, query string, types []models.SearchType, limit int) (*models.SearchResults, error)
}

// SearchSource adapts a [Searcher] to a palette overlay.
type SearchSource struct {
	searcher Searcher
	limit    int
}

func NewSearchSource(searcher Searcher, limit int) *SearchSource {
	if limit <= 0 {
		limit = 10
	}
	return &SearchSource{searcher: searcher, limit: limit}
}

func (s *SearchSource) Fetch(ctx context.Context, query string) (*models.SearchResults, error) {
	return s.searcher.Search(ctx, query, models.AllSearchTypes, s.limit)
}

func (s *SearchSource) Groups(res *models.SearchResults) []Group {
	return SearchGroups(res)
}

// SearchGroups arranges a search response as "Top result", Tracks, Playlists, Albums, Artists.
//
// The top result is the first valid entry of the first non-empty category in the order playlist, album, track, artist.
// It is repeated in its own category group. Nil entries and entries without an ID are dropped.
func SearchGroups(res *models.SearchResults) []Group {
	if res == nil {
		return nil
	}

	var tracks, playlists, albums, artists []Item
	for _, t := range res.Tracks {
		if t != nil && t.ID != "" {
			tracks = append(tracks, trackItem(t, KindTrack))
		}
	}
	for _, p := range res.Playlists {
		if p != nil && p.ID != "" {
			playlists = append(playlists, playlistItem(p))
		}
	}
	for _, a := range res.Albums {
		if a != nil && a.ID != "" {
			albums = append(albums, albumItem(a))
		}
	}
	for _, a := range res.Artists {
		if a != nil && a.ID != "" {
			artists = append(artists, artistItem(a, KindArtist))
		}
	}

	var top []Item
	for _, candidates := range [][]Item{playlists, albums, tracks, artists} {
		if len(candidates) > 0 {
			top = []Item{candidates[0]}
			break
		}
	}

	return compact([]Group{
		{Title: "Top result", Items: top},
		{Title: "Tracks", Items: tracks},
		{Title: "Playlists", Items: playlists},
		{Title: "Albums", Items: albums},
		{Title: "Artists", Items: artists},
	})
}

func trackItem(t *models.Track, kind Kind) Item {
	var parts []string
	if line := t.ArtistLine(); line != "" {
		parts = append(parts, line)
	}
	if t.DurationMS > 0 {
		parts = append(parts, shared.FormatDuration(t.DurationMS))
	}
	item := Item{
		Kind:     kind,
		ID:       t.ID,
		URI:      t.URI,
		Title:    t.Name,
		Subtitle: strings.Join(parts, " • "),
		Image:    t.ImageURL(),
		Action:   ActionPlayTrack,
	}
	if kind == KindResolvedTrack {
		item.Alt = ActionAddToPlaylist
	}
	return item
}

func playlistItem(p *models.Playlist) Item {
	owner := p.Owner.DisplayName
	if owner == "" {
		owner = "—"
	}
	name := p.Name
	if name == "" {
		name = "(untitled playlist)"
	}
	return Item{
		Kind:     KindPlaylist,
		ID:       p.ID,
		URI:      p.URI,
		Title:    name,
		Subtitle: "Playlist • " + owner,
		Image:    p.ImageURL(),
		Action:   ActionOpenPlaylist,
	}
}

func albumItem(a *models.Album) Item {
	return Item{
		Kind:     KindAlbum,
		ID:       a.ID,
		URI:      a.URI,
		Title:    a.Name,
		Subtitle: "Album • " + a.ArtistLine(),
		Image:    a.ImageURL(),
		Action:   ActionPlayContext,
	}
}

func artistItem(a *models.Artist, kind Kind) Item {
	uri := a.URI
	if uri == "" {
		uri = "spotify:artist:" + a.ID
	}
	return Item{
		Kind:     kind,
		ID:       a.ID,
		URI:      uri,
		Title:    a.Name,
		Subtitle: "Artist",
		Image:    a.ImageURL(),
		Action:   ActionOpenExternal,
	}
}

// NewSearch builds the search overlay: debounced, sent on every change of at least [MinSearchLength] characters.
func NewSearch(ctx context.Context, searcher Searcher, cfg shared.UIConfig) *Controller[*models.SearchResults] {
	return NewController[*models.SearchResults](ctx, NewSearchSource(searcher, cfg.SearchLimit), Options{
		Purpose:     SearchPurpose,
		Param:       SearchParam,
		Title:       "Search",
		Placeholder: "Search tracks, playlists, albums, artists",
		IdleText:    "Type at least 2 characters",
		EmptyText:   "No results",
		Mode:        SubmitOnChange,
		MinLength:   MinSearchLength,
		Delay:       cfg.Debounce(),
	})
}
