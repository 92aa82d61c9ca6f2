package inspector

import (
	"strings"

	"github.com/desertthunder/spotdash/internal/models"
)

// PageSize is the number of entries requested per page.
const PageSize = 100

// PageState is the loaded prefix of a playlist.
//
// Offset always equals len(Items) after a page is applied, and Exhausted is
// true once Items covers Total.
type PageState struct {
	Items      []models.PlaylistEntry
	Offset     int
	Total      int
	TotalKnown bool
	Exhausted  bool
}

// Reset forgets everything loaded.
func (p *PageState) Reset() {
	*p = PageState{}
}

// Append adds the next page.
//
// A page that comes back empty before Total is reached means the playlist
// shrank underneath us; Total is clamped so paging stops.
func (p *PageState) Append(page *models.Page[models.PlaylistEntry]) {
	if page == nil {
		return
	}
	p.Items = append(p.Items, page.Items...)
	p.Offset = len(p.Items)
	p.Total = page.Total
	p.TotalKnown = true

	if len(page.Items) == 0 || p.Total < len(p.Items) {
		p.Total = len(p.Items)
	}
	p.Exhausted = len(p.Items) >= p.Total
}

// Replace discards what is loaded and applies page as the first page.
func (p *PageState) Replace(page *models.Page[models.PlaylistEntry]) {
	p.Reset()
	p.Append(page)
}

// RemoveURIs drops every entry whose track URI is in uris and returns how
// many were removed. Entries without a track are kept.
func (p *PageState) RemoveURIs(uris map[string]struct{}) int {
	if len(uris) == 0 {
		return 0
	}

	kept := p.Items[:0:0]
	for _, e := range p.Items {
		if _, ok := uris[e.URI()]; ok && e.Track != nil {
			continue
		}
		kept = append(kept, e)
	}

	removed := len(p.Items) - len(kept)
	p.Items = kept
	p.Offset = len(kept)
	if p.TotalKnown {
		p.Total = max(p.Total-removed, len(kept))
		p.Exhausted = len(kept) >= p.Total
	}
	return removed
}

// Row is a renderable entry with its position in the playlist.
type Row struct {
	Position int
	Entry    models.PlaylistEntry
}

// Track is the row's track, never nil for rows returned by [Filter].
func (r Row) Track() *models.Track {
	return r.Entry.Track
}

// Filter returns the entries with a track that match query against the
// track name, an artist name or the album name, case-insensitively. An empty
// query matches every entry with a track.
func Filter(entries []models.PlaylistEntry, query string) []Row {
	q := strings.ToLower(strings.TrimSpace(query))
	rows := make([]Row, 0, len(entries))
	for i, e := range entries {
		if e.Track == nil || e.Track.URI == "" {
			continue
		}
		if q != "" && !matches(e.Track, q) {
			continue
		}
		rows = append(rows, Row{Position: i + 1, Entry: e})
	}
	return rows
}

func matches(t *models.Track, q string) bool {
	if strings.Contains(strings.ToLower(t.Name), q) {
		return true
	}
	for _, a := range t.Artists {
		if strings.Contains(strings.ToLower(a.Name), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(t.Album.Name), q)
}

// Selection is the set of selected track URIs for one open playlist.
type Selection struct {
	uris map[string]struct{}
}

func (s *Selection) Has(uri string) bool {
	_, ok := s.uris[uri]
	return ok
}

func (s *Selection) Len() int {
	return len(s.uris)
}

// Toggle flips uri and reports whether it is now selected.
func (s *Selection) Toggle(uri string) bool {
	if uri == "" {
		return false
	}
	if s.Has(uri) {
		delete(s.uris, uri)
		return false
	}
	s.add(uri)
	return true
}

// SelectRows selects every row. Returns false, clearing those rows instead,
// when all of them were already selected.
func (s *Selection) SelectRows(rows []Row) bool {
	all := len(rows) > 0
	for _, r := range rows {
		if !s.Has(r.Entry.URI()) {
			all = false
			break
		}
	}
	for _, r := range rows {
		if all {
			delete(s.uris, r.Entry.URI())
		} else {
			s.add(r.Entry.URI())
		}
	}
	return !all
}

// Drop deselects uris.
func (s *Selection) Drop(uris []string) {
	for _, u := range uris {
		delete(s.uris, u)
	}
}

func (s *Selection) Clear() {
	s.uris = nil
}

// URIs returns the selected URIs in row order, skipping selected URIs that
// are not among rows.
func (s *Selection) URIs(rows []Row) []string {
	if len(s.uris) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(s.uris))
	out := make([]string, 0, len(s.uris))
	for _, r := range rows {
		uri := r.Entry.URI()
		if _, dup := seen[uri]; dup || !s.Has(uri) {
			continue
		}
		seen[uri] = struct{}{}
		out = append(out, uri)
	}
	return out
}

func (s *Selection) add(uri string) {
	if uri == "" {
		return
	}
	if s.uris == nil {
		s.uris = map[string]struct{}{}
	}
	s.uris[uri] = struct{}{}
}

func uriSet(uris []string) map[string]struct{} {
	set := make(map[string]struct{}, len(uris))
	for _, u := range uris {
		set[u] = struct{}{}
	}
	return set
}
