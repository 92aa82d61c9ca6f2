package models

import "time"

// PlaylistSnapshot is a playlist with every entry fetched.
type PlaylistSnapshot struct {
	Playlist Playlist        `json:"playlist"`
	Entries  []PlaylistEntry `json:"entries"`
}

// Tracks returns the non-nil tracks in order.
func (s *PlaylistSnapshot) Tracks() []*Track {
	out := make([]*Track, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Track != nil {
			out = append(out, e.Track)
		}
	}
	return out
}

// MutationRecord is one row of the mutation audit log.
type MutationRecord struct {
	ID         string     `json:"id"`
	PlaylistID string     `json:"playlist_id"`
	Op         MutationOp `json:"op"`
	Requested  int        `json:"requested"`
	Applied    int        `json:"applied"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ParseMutationOp is the inverse of [MutationOp.String].
func ParseMutationOp(s string) (MutationOp, bool) {
	switch s {
	case "add":
		return OpAdd, true
	case "remove":
		return OpRemove, true
	default:
		return 0, false
	}
}
