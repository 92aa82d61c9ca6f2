package models

import "strings"

// SearchType is a catalog category accepted by the search endpoint.
type SearchType string

const (
	SearchTrack    SearchType = "track"
	SearchPlaylist SearchType = "playlist"
	SearchAlbum    SearchType = "album"
	SearchArtist   SearchType = "artist"
)

// AllSearchTypes is the federated search set, in request order.
var AllSearchTypes = []SearchType{SearchTrack, SearchPlaylist, SearchAlbum, SearchArtist}

// JoinSearchTypes renders types as the comma separated "type" parameter.
func JoinSearchTypes(types []SearchType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// SearchResults holds one federated search response.
//
// Entries may be nil; the catalog occasionally returns null placeholders and consumers filter them.
type SearchResults struct {
	Tracks    []*Track    `json:"tracks"`
	Playlists []*Playlist `json:"playlists"`
	Albums    []*Album    `json:"albums"`
	Artists   []*Artist   `json:"artists"`
}

// Candidate is a (track, artist) suggestion produced from a natural language prompt.
type Candidate struct {
	Artist string `json:"artist"`
	Track  string `json:"track"`
}

// Empty reports whether neither field carries text.
func (c Candidate) Empty() bool {
	return strings.TrimSpace(c.Artist) == "" && strings.TrimSpace(c.Track) == ""
}

// Query builds the field-filtered catalog query used to resolve the candidate.
func (c Candidate) Query() string {
	track := strings.TrimSpace(c.Track)
	artist := strings.TrimSpace(c.Artist)
	switch {
	case track != "" && artist != "":
		return `track:"` + track + `" artist:"` + artist + `"`
	case track != "":
		return `track:"` + track + `"`
	case artist != "":
		return `artist:"` + artist + `"`
	default:
		return ""
	}
}

// Kind returns the catalog type the candidate resolves against.
func (c Candidate) Kind() SearchType {
	if strings.TrimSpace(c.Track) != "" {
		return SearchTrack
	}
	return SearchArtist
}

// Resolved is a candidate matched to a concrete catalog entity. Exactly one of Track and Artist is set.
type Resolved struct {
	Query  string     `json:"query"`
	Type   SearchType `json:"type"`
	Track  *Track     `json:"track,omitempty"`
	Artist *Artist    `json:"artist,omitempty"`
}
