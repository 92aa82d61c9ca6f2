// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

// Call is one recorded [MockGateway] invocation.
type Call struct {
	Method string
	Args   []any
}

// MockGateway is an in-memory Spotify backend.
//
// Fields are the scripted responses. Errs forces an error per method name.
// When Gate is non-nil, every call blocks until Gate yields or its context ends.
type MockGateway struct {
	mu sync.Mutex

	Viewer     string
	Playlists  map[string]*models.Playlist
	Entries    map[string][]models.PlaylistEntry
	Owned      []models.Playlist
	Results    *models.SearchResults
	Candidates []models.Candidate
	Resolved   []models.Resolved
	Playback   *models.Playback
	DeviceList []models.Device
	Tracks     []models.Track
	Artists    []models.Artist

	Errs map[string]error
	// FailMutationOn makes the nth MutatePlaylistItems call (1-based) fail.
	FailMutationOn int
	Gate           chan struct{}

	calls     []Call
	mutations int
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		Viewer:    "me",
		Playlists: map[string]*models.Playlist{},
		Entries:   map[string][]models.PlaylistEntry{},
		Errs:      map[string]error{},
	}
}

// AddPlaylist registers a playlist owned by owner with n generated tracks.
func (m *MockGateway) AddPlaylist(id, name, owner string, n int) *models.Playlist {
	m.mu.Lock()
	defer m.mu.Unlock()

	pl := &models.Playlist{
		ID:     id,
		Name:   name,
		URI:    "spotify:playlist:" + id,
		Owner:  models.Owner{ID: owner, DisplayName: owner},
		Tracks: models.TrackRef{Total: n},
	}
	m.Playlists[id] = pl
	m.Entries[id] = Entries(id, n)
	m.Owned = append(m.Owned, *pl)
	return pl
}

// Entries generates n playlist entries whose URIs are spotify:track:<prefix>-<i>.
func Entries(prefix string, n int) []models.PlaylistEntry {
	out := make([]models.PlaylistEntry, n)
	for i := range out {
		id := fmt.Sprintf("%s-%d", prefix, i)
		out[i] = models.PlaylistEntry{Track: &models.Track{
			ID:         id,
			Name:       fmt.Sprintf("Song %d", i),
			URI:        "spotify:track:" + id,
			Artists:    []models.Artist{{ID: "a", Name: "Artist"}},
			Album:      models.Album{Name: "Album"},
			DurationMS: 180000,
		}}
	}
	return out
}

// Calls returns the recorded invocations of method, or all of them when method is "".
func (m *MockGateway) Calls(method string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if method == "" {
		return slices.Clone(m.calls)
	}
	var out []Call
	for _, c := range m.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockGateway) enter(ctx context.Context, method string, args ...any) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: method, Args: args})
	gate := m.Gate
	err := m.Errs[method]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return err
}

func (m *MockGateway) ViewerID(ctx context.Context) (string, error) {
	if err := m.enter(ctx, "ViewerID"); err != nil {
		return "", err
	}
	return m.Viewer, nil
}

func (m *MockGateway) Me(ctx context.Context) (*models.User, error) {
	if err := m.enter(ctx, "Me"); err != nil {
		return nil, err
	}
	return &models.User{ID: m.Viewer, DisplayName: m.Viewer}, nil
}

func (m *MockGateway) Search(ctx context.Context, query string, types []models.SearchType, limit int) (*models.SearchResults, error) {
	if err := m.enter(ctx, "Search", query, types, limit); err != nil {
		return nil, err
	}
	if m.Results == nil {
		return &models.SearchResults{}, nil
	}
	return m.Results, nil
}

func (m *MockGateway) PlaylistMetadata(ctx context.Context, id string) (*models.Playlist, error) {
	if err := m.enter(ctx, "PlaylistMetadata", id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pl, ok := m.Playlists[id]
	if !ok {
		return nil, shared.ErrPlaylistNotFound
	}
	cp := *pl
	cp.Tracks.Total = len(m.Entries[id])
	return &cp, nil
}

func (m *MockGateway) PlaylistPage(ctx context.Context, id string, limit, offset int) (*models.Page[models.PlaylistEntry], error) {
	if err := m.enter(ctx, "PlaylistPage", id, limit, offset); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.Entries[id]
	page := &models.Page[models.PlaylistEntry]{Total: len(all), Limit: limit, Offset: offset}
	if offset < len(all) {
		end := min(offset+limit, len(all))
		page.Items = slices.Clone(all[offset:end])
		if end < len(all) {
			next := fmt.Sprintf("offset=%d", end)
			page.Next = &next
		}
	}
	return page, nil
}

// MutatePlaylistItems applies the change to Entries, so later pages reflect it.
func (m *MockGateway) MutatePlaylistItems(ctx context.Context, id string, op models.MutationOp, uris []string) error {
	if err := m.enter(ctx, "MutatePlaylistItems", id, op, slices.Clone(uris)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mutations++
	if m.FailMutationOn > 0 && m.mutations == m.FailMutationOn {
		return fmt.Errorf("%w: status 502", shared.ErrAPIRequest)
	}

	switch op {
	case models.OpRemove:
		drop := map[string]bool{}
		for _, u := range uris {
			drop[u] = true
		}
		m.Entries[id] = slices.DeleteFunc(m.Entries[id], func(e models.PlaylistEntry) bool {
			return drop[e.URI()]
		})
	case models.OpAdd:
		for _, u := range uris {
			m.Entries[id] = append(m.Entries[id], models.PlaylistEntry{Track: &models.Track{ID: u, URI: u, Name: u}})
		}
	}
	return nil
}

func (m *MockGateway) UserPlaylists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error) {
	if err := m.enter(ctx, "UserPlaylists", limit, offset); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	page := &models.Page[models.Playlist]{Total: len(m.Owned), Limit: limit, Offset: offset}
	if offset < len(m.Owned) {
		page.Items = slices.Clone(m.Owned[offset:min(offset+limit, len(m.Owned))])
	}
	return page, nil
}

func (m *MockGateway) AllUserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := m.enter(ctx, "AllUserPlaylists"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Owned), nil
}

func (m *MockGateway) Play(ctx context.Context, req models.PlayRequest) error {
	return m.enter(ctx, "Play", req)
}

func (m *MockGateway) Resume(ctx context.Context) error   { return m.enter(ctx, "Resume") }
func (m *MockGateway) Pause(ctx context.Context) error    { return m.enter(ctx, "Pause") }
func (m *MockGateway) Next(ctx context.Context) error     { return m.enter(ctx, "Next") }
func (m *MockGateway) Previous(ctx context.Context) error { return m.enter(ctx, "Previous") }

func (m *MockGateway) CurrentPlayback(ctx context.Context) (*models.Playback, error) {
	if err := m.enter(ctx, "CurrentPlayback"); err != nil {
		return nil, err
	}
	return m.Playback, nil
}

func (m *MockGateway) Devices(ctx context.Context) ([]models.Device, error) {
	if err := m.enter(ctx, "Devices"); err != nil {
		return nil, err
	}
	return m.DeviceList, nil
}

func (m *MockGateway) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	return m.enter(ctx, "TransferPlayback", deviceID, play)
}

func (m *MockGateway) TopTracks(ctx context.Context, window models.TimeRange, limit int) ([]models.Track, error) {
	if err := m.enter(ctx, "TopTracks", window, limit); err != nil {
		return nil, err
	}
	return m.Tracks, nil
}

func (m *MockGateway) TopArtists(ctx context.Context, window models.TimeRange, limit int) ([]models.Artist, error) {
	if err := m.enter(ctx, "TopArtists", window, limit); err != nil {
		return nil, err
	}
	return m.Artists, nil
}

func (m *MockGateway) ResolvePrompt(ctx context.Context, prompt string) ([]models.Candidate, error) {
	if err := m.enter(ctx, "ResolvePrompt", prompt); err != nil {
		return nil, err
	}
	return m.Candidates, nil
}

func (m *MockGateway) ResolveCandidates(ctx context.Context, candidates []models.Candidate) ([]models.Resolved, error) {
	if err := m.enter(ctx, "ResolveCandidates", candidates); err != nil {
		return nil, err
	}
	return m.Resolved, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
