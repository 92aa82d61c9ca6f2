// Package models defines the catalog, library and playback entities shared by the Spotify client, the overlays and the playlist inspector.
//
// Types mirror the Spotify Web API wire format closely enough to be decoded directly:
//   - [Track], [Artist], [Album], [Playlist] : catalog entities
//   - [PlaylistEntry] : a row of a playlist; its Track may be nil for removed or local items
//   - [Page] : one window of a paginated listing
//   - [SearchResults] : federated search payload; nil entries from the wire are preserved
//   - [Playback], [Device] : player state
//
// Assist types ([Candidate], [Resolved]) describe the two-stage natural language lookup.
package models
