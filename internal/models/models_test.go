package models

import (
	"encoding/json"
	"testing"
)

func TestCandidateQuery(t *testing.T) {
	tc := []struct {
		name      string
		candidate Candidate
		want      string
		kind      SearchType
	}{
		{"track and artist", Candidate{Artist: "Radiohead", Track: "Reckoner"}, `track:"Reckoner" artist:"Radiohead"`, SearchTrack},
		{"track only", Candidate{Track: " Reckoner "}, `track:"Reckoner"`, SearchTrack},
		{"artist only", Candidate{Artist: "Radiohead"}, `artist:"Radiohead"`, SearchArtist},
		{"empty", Candidate{Artist: " ", Track: ""}, "", SearchArtist},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.candidate.Query(); got != tt.want {
				t.Errorf("Query() = %q, want %q", got, tt.want)
			}
			if got := tt.candidate.Kind(); got != tt.kind {
				t.Errorf("Kind() = %q, want %q", got, tt.kind)
			}
		})
	}

	if !(Candidate{Artist: " "}).Empty() {
		t.Error("whitespace-only candidate should be empty")
	}
}

func TestPlaylistEntryNilTrack(t *testing.T) {
	var entries []PlaylistEntry
	data := `[{"added_at":"2024-01-01T00:00:00Z","track":null},{"track":{"id":"t1","uri":"spotify:track:t1"}}]`
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if entries[0].Track != nil || entries[0].URI() != "" {
		t.Errorf("expected nil track entry to have empty URI")
	}
	if entries[1].URI() != "spotify:track:t1" {
		t.Errorf("unexpected uri %q", entries[1].URI())
	}
}

func TestTrackHelpers(t *testing.T) {
	track := &Track{
		Artists: []Artist{{Name: "A"}, {Name: ""}, {Name: "B"}},
		Album:   Album{Images: []Image{{URL: "big"}, {URL: "small"}}},
	}

	if got := track.ArtistLine(); got != "A, B" {
		t.Errorf("ArtistLine() = %q", got)
	}
	if got := track.ImageURL(); got != "big" {
		t.Errorf("ImageURL() = %q", got)
	}
	if got := len(track.ArtistNames()); got != 3 {
		t.Errorf("ArtistNames() len = %d", got)
	}
}

func TestPlaylistOwnedBy(t *testing.T) {
	p := &Playlist{Owner: Owner{ID: "me"}}
	if !p.OwnedBy("me") {
		t.Error("expected ownership")
	}
	if p.OwnedBy("") || p.OwnedBy("you") {
		t.Error("unexpected ownership")
	}
}

func TestTimeRangeNext(t *testing.T) {
	r := ShortTerm
	seen := []TimeRange{r}
	for range 3 {
		r = r.Next()
		seen = append(seen, r)
	}
	want := []TimeRange{ShortTerm, MediumTerm, LongTerm, ShortTerm}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("cycle = %v, want %v", seen, want)
		}
	}
}

func TestJoinSearchTypes(t *testing.T) {
	if got := JoinSearchTypes(AllSearchTypes); got != "track,playlist,album,artist" {
		t.Errorf("JoinSearchTypes() = %q", got)
	}
}
