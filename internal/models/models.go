package models

import (
	"strings"
)

// Image is an artwork variant.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist is a catalog artist.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	URI    string   `json:"uri"`
	Genres []string `json:"genres,omitempty"`
	Images []Image  `json:"images,omitempty"`
}

// ImageURL returns the first (largest) image, or "".
func (a *Artist) ImageURL() string {
	return firstImage(a.Images)
}

// Album is a catalog album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URI         string   `json:"uri"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date,omitempty"`
	TotalTracks int      `json:"total_tracks,omitempty"`
	Images      []Image  `json:"images,omitempty"`
}

// ImageURL returns the first (largest) image, or "".
func (a *Album) ImageURL() string {
	return firstImage(a.Images)
}

// ArtistLine joins artist names with ", ".
func (a *Album) ArtistLine() string {
	return joinArtists(a.Artists)
}

// Track is a catalog track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	IsLocal    bool     `json:"is_local,omitempty"`
}

// ArtistNames returns the names of all credited artists.
func (t *Track) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// ArtistLine joins artist names with ", ".
func (t *Track) ArtistLine() string {
	return joinArtists(t.Artists)
}

// ImageURL returns the album artwork, or "".
func (t *Track) ImageURL() string {
	return firstImage(t.Album.Images)
}

// Owner identifies the user that owns a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// TrackRef carries the track total embedded in playlist objects.
type TrackRef struct {
	Total int `json:"total"`
}

// Playlist is playlist metadata. Entries are fetched separately through [Page].
type Playlist struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	URI           string   `json:"uri"`
	Owner         Owner    `json:"owner"`
	Public        bool     `json:"public"`
	Collaborative bool     `json:"collaborative"`
	Images        []Image  `json:"images,omitempty"`
	Tracks        TrackRef `json:"tracks"`
}

// TrackCount is the server-reported number of entries.
func (p *Playlist) TrackCount() int {
	return p.Tracks.Total
}

// ImageURL returns the first (largest) image, or "".
func (p *Playlist) ImageURL() string {
	return firstImage(p.Images)
}

// OwnedBy reports whether userID owns the playlist.
func (p *Playlist) OwnedBy(userID string) bool {
	return userID != "" && p.Owner.ID == userID
}

// PlaylistEntry is one row of a playlist.
type PlaylistEntry struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

// URI returns the track URI, or "" when the entry has no usable track.
func (e PlaylistEntry) URI() string {
	if e.Track == nil {
		return ""
	}
	return e.Track.URI
}

// Page is one window of a paginated listing.
type Page[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

// User is the authenticated viewer.
type User struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Country     string  `json:"country"`
	Product     string  `json:"product"`
	Images      []Image `json:"images,omitempty"`
}

// Name prefers the display name over the id.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

func firstImage(images []Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func joinArtists(artists []Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}
