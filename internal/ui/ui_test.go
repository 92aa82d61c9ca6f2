package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotdash/internal/inspector"
	"github.com/desertthunder/spotdash/internal/location"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/palette"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/desertthunder/spotdash/internal/tasks"
	tu "github.com/desertthunder/spotdash/internal/testing"
)

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keySearch   = tea.KeyMsg{Type: tea.KeyCtrlK}
	keyAssist   = tea.KeyMsg{Type: tea.KeyCtrlA}
	keyCopy     = tea.KeyMsg{Type: tea.KeyCtrlY}
	keyOpenLink = tea.KeyMsg{Type: tea.KeyCtrlO}
	keyBack     = tea.KeyMsg{Type: tea.KeyLeft, Alt: true}
	keyForward  = tea.KeyMsg{Type: tea.KeyRight, Alt: true}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and any batched commands. Anything waiting on a timer
// (debounce, spinner frames, polling, cursor blinks) is abandoned.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

func drain(m *Model, cmd tea.Cmd) {
	queue := run(cmd)
	for i := 0; len(queue) > 0 && i < 100; i++ {
		msg := queue[0]
		if _, ok := msg.(tea.QuitMsg); ok {
			queue = queue[1:]
			continue
		}
		_, next := m.Update(msg)
		queue = append(queue[1:], run(next)...)
	}
}

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		_, cmd := m.Update(k)
		drain(m, cmd)
	}
}

type fixture struct {
	gw     *tu.MockGateway
	copied []string
	opened []string
	paste  string
}

// newTestModel starts a dashboard at raw with two playlists: "Mine" owned by
// the viewer and "Theirs" owned by someone else.
func newTestModel(t *testing.T, raw string) (*Model, *fixture) {
	t.Helper()
	loc, err := location.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}

	f := &fixture{gw: tu.NewMockGateway()}
	f.gw.AddPlaylist("p1", "Mine", "me", 3)
	f.gw.AddPlaylist("p2", "Theirs", "someone", 2)
	f.gw.Tracks = []models.Track{{ID: "t1", URI: "spotify:track:t1", Name: "Top Song", DurationMS: 1000}}
	f.gw.Artists = []models.Artist{{ID: "a1", URI: "spotify:artist:a1", Name: "Top Artist"}}
	f.gw.DeviceList = []models.Device{{ID: "d1", Name: "Speaker", Type: "Speaker"}}

	m := NewModel(context.Background(), Options{
		Gateway: f.gw,
		Mutator: tasks.NewEngine(f.gw, nil, nil),
		Store:   location.NewStore(loc, nil, nil),
		Config:  shared.UIConfig{},
		CopyText: func(s string) error {
			f.copied = append(f.copied, s)
			return nil
		},
		PasteText: func() (string, error) { return f.paste, nil },
		OpenURL: func(s string) error {
			f.opened = append(f.opened, s)
			return nil
		},
	})
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	drain(m, cmd)
	drain(m, m.Init())
	return m, f
}

func param(m *Model, key string) (string, bool) {
	return m.Location().Lookup(key)
}

func TestModelInit(t *testing.T) {
	m, f := newTestModel(t, "")

	if m.Viewer() != "me" {
		t.Errorf("viewer = %q", m.Viewer())
	}
	tests := []struct {
		panel Panel
		want  int
	}{
		{PanelPlaylists, 2},
		{PanelTopTracks, 1},
		{PanelTopArtists, 1},
		{PanelDevices, 1},
	}
	for _, tt := range tests {
		t.Run(tt.panel.String(), func(t *testing.T) {
			if got := len(m.ListItems(tt.panel)); got != tt.want {
				t.Errorf("%d items, want %d", got, tt.want)
			}
		})
	}

	calls := f.gw.Calls("TopTracks")
	if len(calls) != 1 || calls[0].Args[0] != models.MediumTerm {
		t.Errorf("TopTracks calls = %+v", calls)
	}
	if m.Search().IsOpen() || m.Assist().IsOpen() || m.Inspector().IsOpen() {
		t.Error("nothing should be open on a bare location")
	}
	if !strings.Contains(m.View(), "Playlists") {
		t.Errorf("view missing panel tabs:\n%s", m.View())
	}
}

func TestModelOverlays(t *testing.T) {
	t.Run("hotkey opens search and writes the parameter", func(t *testing.T) {
		m, _ := newTestModel(t, "")
		press(m, keySearch)

		if !m.Search().IsOpen() {
			t.Fatal("search not open")
		}
		if _, ok := param(m, palette.SearchParam); !ok {
			t.Errorf("location %s has no search parameter", m.Location())
		}

		press(m, keyEsc)
		if m.Search().IsOpen() {
			t.Error("esc did not close search")
		}
		if _, ok := param(m, palette.SearchParam); ok {
			t.Errorf("location %s still has search parameter", m.Location())
		}
	})

	t.Run("opening assist closes search", func(t *testing.T) {
		m, _ := newTestModel(t, "")
		press(m, keySearch, runes("abc"), keyAssist)

		if m.Search().IsOpen() || !m.Assist().IsOpen() {
			t.Fatalf("search=%v assist=%v", m.Search().IsOpen(), m.Assist().IsOpen())
		}
		loc := m.Location()
		if _, ok := loc.Lookup(palette.SearchParam); ok {
			t.Errorf("location %s still has search parameter", loc)
		}
		if _, ok := loc.Lookup(palette.AssistParam); !ok {
			t.Errorf("location %s has no assist parameter", loc)
		}
	})

	t.Run("hotkey toggles the same overlay closed", func(t *testing.T) {
		m, _ := newTestModel(t, "")
		press(m, keyAssist, keyAssist)
		if m.Assist().IsOpen() {
			t.Error("second hotkey press should close assist")
		}
	})

	t.Run("location seeds assist without asking", func(t *testing.T) {
		m, f := newTestModel(t, "?ai=upbeat+songs")

		if !m.Assist().IsOpen() || m.Assist().Query() != "upbeat songs" {
			t.Fatalf("assist open=%v query=%q", m.Assist().IsOpen(), m.Assist().Query())
		}
		if n := len(f.gw.Calls("ResolvePrompt")); n != 0 {
			t.Errorf("ResolvePrompt called %d times before submit", n)
		}
	})

	t.Run("typing in an overlay never reaches the dashboard", func(t *testing.T) {
		m, f := newTestModel(t, "")
		press(m, keySearch, runes("q"), runes(" "))

		if !m.Search().IsOpen() || m.Search().Query() != "q " {
			t.Errorf("search open=%v query=%q", m.Search().IsOpen(), m.Search().Query())
		}
		if n := len(f.gw.Calls("Pause")) + len(f.gw.Calls("Resume")); n != 0 {
			t.Errorf("space toggled playback %d times", n)
		}
	})
}

func TestModelActivate(t *testing.T) {
	t.Run("playlist opens the browser as a new entry", func(t *testing.T) {
		m, _ := newTestModel(t, "")
		press(m, keySearch)
		drain(m, func() tea.Msg {
			return palette.ActivateMsg{
				Source: palette.SearchPurpose,
				Item:   palette.Item{Kind: palette.KindPlaylist, ID: "p1", URI: "spotify:playlist:p1", Action: palette.ActionOpenPlaylist},
			}
		})

		if m.Search().IsOpen() {
			t.Error("search should close when a playlist opens")
		}
		if !m.Inspector().IsOpen() || m.Inspector().PlaylistID() != "p1" {
			t.Fatalf("inspector open=%v id=%q", m.Inspector().IsOpen(), m.Inspector().PlaylistID())
		}
		if id, _ := param(m, InspectorParam); id != "p1" {
			t.Errorf("location = %s", m.Location())
		}

		press(m, keyBack)
		if m.Inspector().IsOpen() || !m.Search().IsOpen() {
			t.Errorf("back: inspector=%v search=%v", m.Inspector().IsOpen(), m.Search().IsOpen())
		}

		press(m, keyForward)
		if !m.Inspector().IsOpen() || m.Search().IsOpen() {
			t.Errorf("forward: inspector=%v search=%v", m.Inspector().IsOpen(), m.Search().IsOpen())
		}
	})

	t.Run("track plays", func(t *testing.T) {
		m, f := newTestModel(t, "")
		drain(m, func() tea.Msg {
			return palette.ActivateMsg{Item: palette.Item{URI: "spotify:track:x", Title: "X", Action: palette.ActionPlayTrack}}
		})

		calls := f.gw.Calls("Play")
		if len(calls) != 1 {
			t.Fatalf("Play called %d times", len(calls))
		}
		req := calls[0].Args[0].(models.PlayRequest)
		if len(req.URIs) != 1 || req.URIs[0] != "spotify:track:x" {
			t.Errorf("play request = %+v", req)
		}
		if m.Notice() != "Playing X" {
			t.Errorf("notice = %q", m.Notice())
		}
	})

	t.Run("artist opens externally", func(t *testing.T) {
		m, f := newTestModel(t, "")
		drain(m, func() tea.Msg {
			return palette.ActivateMsg{Item: palette.Item{URI: "spotify:artist:a1", Action: palette.ActionOpenExternal}}
		})

		if len(f.opened) != 1 || f.opened[0] != "https://open.spotify.com/artist/a1" {
			t.Errorf("opened = %v", f.opened)
		}
	})

	t.Run("add goes through the picker", func(t *testing.T) {
		m, f := newTestModel(t, "")
		drain(m, func() tea.Msg {
			return palette.ActivateMsg{Item: palette.Item{URI: "spotify:track:x", Action: palette.ActionAddToPlaylist}}
		})

		if !m.Picker().IsOpen() {
			t.Fatal("picker not open")
		}
		matches := m.Picker().Matches()
		if len(matches) != 1 || matches[0].ID != "p1" {
			t.Fatalf("picker offers %+v, want only p1", matches)
		}

		press(m, keyEnter)
		calls := f.gw.Calls("MutatePlaylistItems")
		if len(calls) != 1 || calls[0].Args[0] != "p1" || calls[0].Args[1] != models.OpAdd {
			t.Fatalf("mutations = %+v", calls)
		}
		if m.Picker().IsOpen() {
			t.Error("picker should close after a pick")
		}
		if m.Notice() != "Added to Mine" {
			t.Errorf("notice = %q", m.Notice())
		}
	})

	t.Run("picks outside the viewer's playlists are ignored", func(t *testing.T) {
		m, f := newTestModel(t, "")
		drain(m, func() tea.Msg {
			return inspector.PickedMsg{Source: assistPicker, Target: *f.gw.Playlists["p2"], URIs: []string{"spotify:track:x"}}
		})

		if calls := f.gw.Calls("MutatePlaylistItems"); len(calls) != 0 {
			t.Errorf("mutations = %+v", calls)
		}
	})

	t.Run("failed add is shown", func(t *testing.T) {
		m, f := newTestModel(t, "")
		f.gw.FailMutationOn = 1
		drain(m, func() tea.Msg {
			return palette.ActivateMsg{Item: palette.Item{URI: "spotify:track:x", Action: palette.ActionAddToPlaylist}}
		})
		press(m, keyEnter)

		if !errors.Is(m.Err(), shared.ErrAPIRequest) {
			t.Errorf("err = %v", m.Err())
		}
	})
}

func TestModelDashboard(t *testing.T) {
	t.Run("enter on a playlist opens it", func(t *testing.T) {
		m, _ := newTestModel(t, "")
		press(m, keyEnter)

		if !m.Inspector().IsOpen() || m.Inspector().PlaylistID() != "p1" {
			t.Fatalf("inspector open=%v id=%q", m.Inspector().IsOpen(), m.Inspector().PlaylistID())
		}
		press(m, keyEsc)
		if m.Inspector().IsOpen() {
			t.Error("esc should close the inspector")
		}
		if _, ok := param(m, InspectorParam); ok {
			t.Errorf("location %s still names a playlist", m.Location())
		}
	})

	t.Run("p plays the playlist context", func(t *testing.T) {
		m, f := newTestModel(t, "")
		press(m, runes("p"))

		calls := f.gw.Calls("Play")
		if len(calls) != 1 || calls[0].Args[0].(models.PlayRequest).ContextURI != "spotify:playlist:p1" {
			t.Errorf("Play calls = %+v", calls)
		}
	})

	t.Run("enter on a device transfers playback", func(t *testing.T) {
		m, f := newTestModel(t, "")
		press(m, keyTab, keyTab, keyTab)
		if m.Panel() != PanelDevices {
			t.Fatalf("panel = %v", m.Panel())
		}
		press(m, keyEnter)

		calls := f.gw.Calls("TransferPlayback")
		if len(calls) != 1 || calls[0].Args[0] != "d1" {
			t.Errorf("TransferPlayback calls = %+v", calls)
		}
	})

	t.Run("space toggles playback", func(t *testing.T) {
		m, f := newTestModel(t, "")
		f.gw.Playback = &models.Playback{IsPlaying: true, Item: &models.Track{DurationMS: 1000}}
		press(m, runes("r"))
		press(m, runes(" "))

		if n := len(f.gw.Calls("Pause")); n != 1 {
			t.Errorf("Pause called %d times", n)
		}
	})

	t.Run("time range refetches top items", func(t *testing.T) {
		m, f := newTestModel(t, "")
		press(m, runes("t"))

		if m.TimeRange() != models.LongTerm {
			t.Errorf("time range = %v", m.TimeRange())
		}
		calls := f.gw.Calls("TopArtists")
		if len(calls) != 2 || calls[1].Args[0] != models.LongTerm {
			t.Errorf("TopArtists calls = %+v", calls)
		}
	})

	t.Run("stale top items are dropped", func(t *testing.T) {
		m, _ := newTestModel(t, "")
		press(m, runes("t"))
		drain(m, func() tea.Msg {
			return topTracksFetchedMsg(models.MediumTerm, nil, nil)
		})
		if n := len(m.ListItems(PanelTopTracks)); n != 1 {
			t.Errorf("%d top tracks after a stale response, want 1", n)
		}
	})

	t.Run("failed command is shown", func(t *testing.T) {
		m, f := newTestModel(t, "")
		f.gw.Errs["Next"] = shared.ErrNoActiveDevice
		press(m, runes(">"))

		if !errors.Is(m.Err(), shared.ErrNoActiveDevice) {
			t.Errorf("err = %v", m.Err())
		}
		if !strings.Contains(m.View(), "Error:") {
			t.Errorf("error missing from view:\n%s", m.View())
		}
	})
}

func TestModelLinks(t *testing.T) {
	t.Run("copy puts the current location on the clipboard", func(t *testing.T) {
		m, f := newTestModel(t, "")
		press(m, keySearch, keyCopy)

		if len(f.copied) != 1 || f.copied[0] != "spotdash://dashboard?q=" {
			t.Errorf("copied = %v", f.copied)
		}
	})

	t.Run("open navigates to a pasted link", func(t *testing.T) {
		m, f := newTestModel(t, "")
		f.paste = "spotdash://dashboard?playlist=p2"
		press(m, keyOpenLink)

		if !m.Inspector().IsOpen() || m.Inspector().PlaylistID() != "p2" {
			t.Fatalf("inspector open=%v id=%q", m.Inspector().IsOpen(), m.Inspector().PlaylistID())
		}
		press(m, keyBack)
		if m.Inspector().IsOpen() {
			t.Error("back should return to the dashboard")
		}
	})
}

func TestModelPolling(t *testing.T) {
	m, f := newTestModel(t, "")
	f.gw.Playback = &models.Playback{IsPlaying: true, ProgressMS: 1000, Item: &models.Track{Name: "Now", DurationMS: 200000}}
	before := len(f.gw.Calls("CurrentPlayback"))

	drain(m, func() tea.Msg { return pollMsg{gen: m.nowPlaying.gen} })
	if got := len(f.gw.Calls("CurrentPlayback")); got != before+1 {
		t.Fatalf("poll fetched %d times, want 1", got-before)
	}
	if m.Progress() != 1000 {
		t.Fatalf("progress = %d", m.Progress())
	}

	drain(m, func() tea.Msg { return clockMsg{gen: m.nowPlaying.gen} })
	if m.Progress() != 2000 {
		t.Errorf("progress after a clock tick = %d", m.Progress())
	}

	stale := m.nowPlaying.gen - 1
	drain(m, func() tea.Msg { return pollMsg{gen: stale} })
	drain(m, func() tea.Msg { return clockMsg{gen: stale} })
	if got := len(f.gw.Calls("CurrentPlayback")); got != before+1 {
		t.Error("stale poll fetched playback")
	}
	if m.Progress() != 2000 {
		t.Errorf("stale clock advanced progress to %d", m.Progress())
	}
	if !strings.Contains(m.View(), "Now") {
		t.Errorf("now playing missing from view:\n%s", m.View())
	}
}
