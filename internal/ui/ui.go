package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/inspector"
	"github.com/desertthunder/spotdash/internal/location"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/palette"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/desertthunder/spotdash/internal/tasks"
)

// Panel is a dashboard list.
type Panel int

const (
	PanelPlaylists Panel = iota
	PanelTopTracks
	PanelTopArtists
	PanelDevices
	panelCount
)

func (p Panel) String() string {
	switch p {
	case PanelPlaylists:
		return "Playlists"
	case PanelTopTracks:
		return "Top tracks"
	case PanelTopArtists:
		return "Top artists"
	case PanelDevices:
		return "Devices"
	default:
		return ""
	}
}

const (
	// InspectorParam is the location parameter naming the playlist open in the browser.
	InspectorParam = "playlist"
	assistPicker   = "assist-add"
	topLimit       = 20
	chromeRows     = 10
)

// Gateway is everything the dashboard reads from or sends to Spotify.
type Gateway interface {
	inspector.Gateway
	palette.Searcher
	palette.Assistant
	CurrentPlayback(ctx context.Context) (*models.Playback, error)
	Devices(ctx context.Context) ([]models.Device, error)
	TransferPlayback(ctx context.Context, deviceID string, play bool) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	TopTracks(ctx context.Context, window models.TimeRange, limit int) ([]models.Track, error)
	TopArtists(ctx context.Context, window models.TimeRange, limit int) ([]models.Artist, error)
}

// Options wires a [Model]. The clipboard and browser hooks default to the system ones.
type Options struct {
	Gateway   Gateway
	Mutator   inspector.Mutator
	Store     *location.Store
	Config    shared.UIConfig
	Logger    *log.Logger
	CopyText  func(string) error
	PasteText func() (string, error)
	OpenURL   func(string) error
}

// Model is the root dashboard.
type Model struct {
	ctx       context.Context
	gateway   Gateway
	mutator   inspector.Mutator
	logger    *log.Logger
	store     *location.Store
	copyText  func(string) error
	pasteText func() (string, error)
	openURL   func(string) error

	search     *palette.Controller[*models.SearchResults]
	assist     *palette.Controller[[]models.Resolved]
	inspector  *inspector.Model
	picker     *inspector.Picker
	nowPlaying *nowPlaying

	lists  [panelCount]list.Model
	panel  Panel
	window models.TimeRange
	viewer string

	keys   keyMap
	help   help.Model
	width  int
	height int
	notice string
	err    error
}

// NewModel creates the dashboard. Nothing is fetched until [Model.Init].
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	store := opts.Store
	if store == nil {
		store = location.NewStore(location.New(), nil, logger)
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	pasteText := opts.PasteText
	if pasteText == nil {
		pasteText = clipboard.ReadAll
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = shared.OpenBrowser
	}

	m := &Model{
		ctx:        ctx,
		gateway:    opts.Gateway,
		mutator:    opts.Mutator,
		logger:     logger,
		store:      store,
		copyText:   copyText,
		pasteText:  pasteText,
		openURL:    openURL,
		search:     palette.NewSearch(ctx, opts.Gateway, opts.Config),
		assist:     palette.NewAssist(ctx, opts.Gateway, opts.Config),
		inspector:  inspector.New(ctx, opts.Gateway, opts.Mutator, logger),
		picker:     inspector.NewPicker(ctx, opts.Gateway, assistPicker),
		nowPlaying: newNowPlaying(opts.Config.PollInterval()),
		window:     models.MediumTerm,
		keys:       newKeyMap(opts.Config),
		help:       help.New(),
	}

	for p := range panelCount {
		l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
		l.Title = p.String()
		l.SetShowHelp(false)
		l.DisableQuitKeybindings()
		m.lists[p] = l
	}
	m.retitleTop()
	return m
}

func (m *Model) Panel() Panel                  { return m.panel }
func (m *Model) Viewer() string                { return m.viewer }
func (m *Model) Notice() string                { return m.notice }
func (m *Model) Err() error                    { return m.err }
func (m *Model) Location() location.Location   { return m.store.Current() }
func (m *Model) Inspector() *inspector.Model   { return m.inspector }
func (m *Model) Picker() *inspector.Picker     { return m.picker }
func (m *Model) TimeRange() models.TimeRange   { return m.window }
func (m *Model) Playback() *models.Playback    { return m.nowPlaying.playback }
func (m *Model) Progress() int                 { return m.nowPlaying.progress }
func (m *Model) ListItems(p Panel) []list.Item { return m.lists[p].Items() }

func (m *Model) Search() *palette.Controller[*models.SearchResults] { return m.search }
func (m *Model) Assist() *palette.Controller[[]models.Resolved]     { return m.assist }

// Init applies the starting location and loads every panel.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.syncFrom(m.store.Current()),
		m.fetchPlaylists(),
		m.fetchViewer(),
		m.fetchPlayback(),
		m.fetchDevices(),
		m.fetchTop(),
		m.nowPlaying.start(),
	)
}

// Update routes msg and then mirrors overlay and browser state into the location.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.syncLocation()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case palette.ActivateMsg:
		return m.activate(msg)
	case inspector.PickedMsg:
		if msg.Source == assistPicker {
			return m.addPicked(msg)
		}
		return m.inspector.Update(msg)
	case Msg:
		return m.receive(msg)
	case pollMsg:
		if !m.nowPlaying.current(msg.gen) {
			return nil
		}
		return tea.Batch(m.fetchPlayback(), m.nowPlaying.schedulePoll())
	case clockMsg:
		if !m.nowPlaying.current(msg.gen) {
			return nil
		}
		m.nowPlaying.advance(m.nowPlaying.clock)
		return m.nowPlaying.scheduleClock()
	}

	// request results, spinner frames and cursor blinks; each layer ignores what is not its own
	var cmd tea.Cmd
	m.lists[m.panel], cmd = m.lists[m.panel].Update(msg)
	return tea.Batch(
		m.search.Update(msg),
		m.assist.Update(msg),
		m.inspector.Update(msg),
		m.picker.Update(msg),
		cmd,
	)
}

func (m *Model) resize(width, height int) tea.Cmd {
	m.width = width
	m.height = height
	m.help.Width = width
	for p := range m.lists {
		m.lists[p].SetSize(max(width-4, 20), max(height-chromeRows, 5))
	}
	m.search.SetSize(width, height)
	m.assist.SetSize(width, height)
	return m.inspector.SetSize(width, height-4)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.String() == "ctrl+c":
		return m.quit()
	case key.Matches(msg, m.keys.search):
		if !m.search.IsOpen() {
			m.closeAssist()
		}
		return m.search.Toggle()
	case key.Matches(msg, m.keys.assist):
		if !m.assist.IsOpen() {
			m.search.Close()
		}
		m.picker.Close()
		return m.assist.Toggle()
	case key.Matches(msg, m.keys.back):
		if loc, ok := m.store.Back(); ok {
			return m.syncFrom(loc)
		}
		return nil
	case key.Matches(msg, m.keys.forward):
		if loc, ok := m.store.Forward(); ok {
			return m.syncFrom(loc)
		}
		return nil
	case key.Matches(msg, m.keys.copyLink):
		m.copyLink()
		return nil
	case key.Matches(msg, m.keys.openLink):
		return m.openLink()
	}

	switch {
	case m.picker.IsOpen():
		return m.picker.Update(msg)
	case m.search.IsOpen():
		return m.search.Update(msg)
	case m.assist.IsOpen():
		return m.assist.Update(msg)
	case m.inspector.IsOpen():
		return m.inspector.Update(msg)
	}
	return m.handleDashboardKey(msg)
}

func (m *Model) handleDashboardKey(msg tea.KeyMsg) tea.Cmd {
	l := &m.lists[m.panel]
	if l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		*l, cmd = l.Update(msg)
		return cmd
	}

	m.notice = ""
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.nextPanel):
		m.panel = (m.panel + 1) % panelCount
	case key.Matches(msg, m.keys.prevPanel):
		m.panel = (m.panel + panelCount - 1) % panelCount
	case key.Matches(msg, m.keys.enter):
		return m.openFocused()
	case key.Matches(msg, m.keys.playList):
		return m.playFocused()
	case key.Matches(msg, m.keys.playPause):
		return m.togglePlayback()
	case key.Matches(msg, m.keys.next):
		return m.command("next", m.gateway.Next)
	case key.Matches(msg, m.keys.previous):
		return m.command("previous", m.gateway.Previous)
	case key.Matches(msg, m.keys.timeRange):
		m.window = m.window.Next()
		m.retitleTop()
		return m.fetchTop()
	case key.Matches(msg, m.keys.refresh):
		return tea.Batch(m.fetchPlaylists(), m.fetchPlayback(), m.fetchDevices(), m.fetchTop())
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		var cmd tea.Cmd
		*l, cmd = l.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.nowPlaying.stop()
	return tea.Quit
}

// activate performs the action of a row chosen in an overlay.
func (m *Model) activate(msg palette.ActivateMsg) tea.Cmd {
	item := msg.Item
	switch msg.Action() {
	case palette.ActionPlayTrack:
		return m.play(models.PlayRequest{URIs: []string{item.URI}}, item.Title)
	case palette.ActionPlayContext:
		return m.play(models.PlayRequest{ContextURI: item.URI}, item.Title)
	case palette.ActionOpenPlaylist:
		m.search.Close()
		m.closeAssist()
		return m.browse(item.ID)
	case palette.ActionOpenExternal:
		return m.openExternal(item.URI)
	case palette.ActionAddToPlaylist:
		return m.picker.Open("", m.viewer, []string{item.URI})
	}
	return nil
}

func (m *Model) openFocused() tea.Cmd {
	switch item := m.lists[m.panel].SelectedItem().(type) {
	case playlistItem:
		return m.browse(item.playlist.ID)
	case trackItem:
		return m.play(models.PlayRequest{URIs: []string{item.track.URI}}, item.track.Name)
	case artistItem:
		return m.openExternal(item.artist.URI)
	case deviceItem:
		id := item.device.ID
		return m.command("transfer to "+item.device.Name, func(ctx context.Context) error {
			return m.gateway.TransferPlayback(ctx, id, true)
		})
	}
	return nil
}

func (m *Model) playFocused() tea.Cmd {
	switch item := m.lists[m.panel].SelectedItem().(type) {
	case playlistItem:
		return m.play(models.PlayRequest{ContextURI: item.playlist.URI}, item.playlist.Name)
	case trackItem:
		return m.play(models.PlayRequest{URIs: []string{item.track.URI}}, item.track.Name)
	}
	return nil
}

// browse opens a playlist as a new history entry, so back returns to where it was opened from.
func (m *Model) browse(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	loc := m.store.Current()
	loc = m.search.Apply(loc)
	loc = m.assist.Apply(loc)
	loc.Params.Set(InspectorParam, id)
	m.store.Navigate(loc)
	return m.openPlaylist(id)
}

func (m *Model) openPlaylist(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	return tea.Batch(m.inspector.Open(id), m.inspector.SetSize(m.width, m.height-4))
}

func (m *Model) closeAssist() {
	m.assist.Close()
	m.picker.Close()
}

// play starts playback without waiting; a failure is logged and shown in the status line.
func (m *Model) play(req models.PlayRequest, title string) tea.Cmd {
	req.DeviceID = m.nowPlaying.deviceID()
	m.notice = "Playing " + title
	return m.command("play", func(ctx context.Context) error {
		return m.gateway.Play(ctx, req)
	})
}

func (m *Model) togglePlayback() tea.Cmd {
	if m.nowPlaying.playing() {
		m.nowPlaying.playback.IsPlaying = false
		return m.command("pause", m.gateway.Pause)
	}
	if m.nowPlaying.playback != nil {
		m.nowPlaying.playback.IsPlaying = true
	}
	return m.command("resume", m.gateway.Resume)
}

func (m *Model) openExternal(uri string) tea.Cmd {
	url := shared.ExternalURL(uri)
	if url == "" {
		return nil
	}
	open := m.openURL
	return func() tea.Msg {
		return commandDoneMsg("open", open(url))
	}
}

func (m *Model) command(label string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return commandDoneMsg(label, fn(ctx))
	}
}

func (m *Model) addPicked(msg inspector.PickedMsg) tea.Cmd {
	if len(msg.URIs) == 0 || msg.Target.ID == "" || !msg.Target.OwnedBy(m.viewer) {
		return nil
	}
	req := tasks.MutationRequest{PlaylistID: msg.Target.ID, Op: models.OpAdd, URIs: msg.URIs}
	mutator := m.mutator
	ctx := m.ctx
	name := msg.Target.Name
	return func() tea.Msg {
		_, err := mutator.Mutate(ctx, req, nil)
		return addedMsg(req.URIs[0], name, err)
	}
}

func (m *Model) copyLink() {
	link := m.store.Current().String()
	if err := m.copyText(link); err != nil {
		m.err = fmt.Errorf("copy link: %w", err)
		return
	}
	m.notice = "Copied " + link
}

// openLink navigates to a spotdash link taken from the clipboard.
func (m *Model) openLink() tea.Cmd {
	raw, err := m.pasteText()
	if err != nil {
		m.err = fmt.Errorf("read clipboard: %w", err)
		return nil
	}
	loc, err := location.Parse(raw)
	if err != nil {
		m.err = err
		return nil
	}
	m.store.Navigate(loc)
	m.notice = "Opened " + loc.String()
	return m.syncFrom(loc)
}

func (m *Model) receive(msg Msg) tea.Cmd {
	if msg.err != nil && palette.IsCanceled(msg.err) {
		return nil
	}

	switch msg.kind {
	case MsgPlaylistsFetched:
		if msg.err != nil {
			m.err = fmt.Errorf("load playlists: %w", msg.err)
			return nil
		}
		return m.lists[PanelPlaylists].SetItems(playlistItems(msg.data.([]models.Playlist)))
	case MsgViewerFetched:
		if msg.err != nil {
			m.logger.Warn("viewer lookup failed", "error", msg.err)
			return nil
		}
		m.viewer = msg.data.(string)
	case MsgPlaybackFetched:
		if msg.err != nil {
			m.logger.Warn("playback poll failed", "error", msg.err)
			return nil
		}
		m.nowPlaying.set(msg.data.(*models.Playback))
	case MsgDevicesFetched:
		if msg.err != nil {
			m.logger.Warn("device list failed", "error", msg.err)
			return nil
		}
		return m.lists[PanelDevices].SetItems(deviceItems(msg.data.([]models.Device)))
	case MsgTopTracksFetched:
		top := msg.data.(topTracks)
		if top.window != m.window {
			return nil
		}
		if msg.err != nil {
			m.err = fmt.Errorf("load top tracks: %w", msg.err)
			return nil
		}
		return m.lists[PanelTopTracks].SetItems(trackItems(top.tracks))
	case MsgTopArtistsFetched:
		top := msg.data.(topArtists)
		if top.window != m.window {
			return nil
		}
		if msg.err != nil {
			m.err = fmt.Errorf("load top artists: %w", msg.err)
			return nil
		}
		return m.lists[PanelTopArtists].SetItems(artistItems(top.artists))
	case MsgCommandDone:
		label := msg.data.(string)
		if msg.err != nil {
			m.logger.Warn("command failed", "command", label, "error", msg.err)
			m.err = fmt.Errorf("%s: %w", label, msg.err)
			return nil
		}
		if label == "open" {
			return nil
		}
		return tea.Batch(m.fetchPlayback(), m.fetchDevices())
	case MsgAdded:
		a := msg.data.(added)
		if msg.err != nil {
			m.err = msg.err
			return nil
		}
		m.notice = fmt.Sprintf("Added to %s", a.target)
	}
	return nil
}

// syncFrom pushes an externally navigated location into every layer.
func (m *Model) syncFrom(loc location.Location) tea.Cmd {
	cmds := []tea.Cmd{m.search.Sync(loc), m.assist.Sync(loc)}
	if _, ok := loc.Lookup(palette.AssistParam); !ok {
		m.picker.Close()
	}

	id, ok := loc.Lookup(InspectorParam)
	switch {
	case ok && id != "" && id != m.inspector.PlaylistID():
		cmds = append(cmds, m.openPlaylist(id))
	case !ok && m.inspector.IsOpen():
		m.inspector.Close()
	}
	return tea.Batch(cmds...)
}

// syncLocation mirrors local state into the current location without adding history.
func (m *Model) syncLocation() {
	loc := m.store.Current()
	loc = m.search.Apply(loc)
	loc = m.assist.Apply(loc)
	if m.inspector.IsOpen() {
		loc.Params.Set(InspectorParam, m.inspector.PlaylistID())
	} else {
		loc.Params.Del(InspectorParam)
	}
	m.store.Replace(loc)
}

func (m *Model) retitleTop() {
	m.lists[PanelTopTracks].Title = fmt.Sprintf("%s · %s", PanelTopTracks, m.window.Label())
	m.lists[PanelTopArtists].Title = fmt.Sprintf("%s · %s", PanelTopArtists, m.window.Label())
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.gateway.AllUserPlaylists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchViewer() tea.Cmd {
	return func() tea.Msg {
		id, err := m.gateway.ViewerID(m.ctx)
		return viewerFetchedMsg(id, err)
	}
}

func (m *Model) fetchPlayback() tea.Cmd {
	return func() tea.Msg {
		playback, err := m.gateway.CurrentPlayback(m.ctx)
		return playbackFetchedMsg(playback, err)
	}
}

func (m *Model) fetchDevices() tea.Cmd {
	return func() tea.Msg {
		devices, err := m.gateway.Devices(m.ctx)
		return devicesFetchedMsg(devices, err)
	}
}

func (m *Model) fetchTop() tea.Cmd {
	window := m.window
	return tea.Batch(
		func() tea.Msg {
			tracks, err := m.gateway.TopTracks(m.ctx, window, topLimit)
			return topTracksFetchedMsg(window, tracks, err)
		},
		func() tea.Msg {
			artists, err := m.gateway.TopArtists(m.ctx, window, topLimit)
			return topArtistsFetchedMsg(window, artists, err)
		},
	)
}

// View renders the now-playing header, the topmost open layer and the status line.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("spotdash"))
	b.WriteString("\n")
	b.WriteString(m.nowPlaying.view(m.width))
	b.WriteString("\n\n")

	switch {
	case m.picker.IsOpen():
		b.WriteString(m.picker.View())
	case m.search.IsOpen():
		b.WriteString(m.search.View())
	case m.assist.IsOpen():
		b.WriteString(m.assist.View())
	case m.inspector.IsOpen():
		b.WriteString(m.inspector.View())
	default:
		b.WriteString(m.tabs())
		b.WriteString("\n")
		b.WriteString(m.lists[m.panel].View())
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}

	b.WriteString("\n")
	b.WriteString(m.status())
	return b.String()
}

func (m *Model) tabs() string {
	tabs := make([]string, 0, panelCount)
	for p := range panelCount {
		if p == m.panel {
			tabs = append(tabs, styles.active.Render(p.String()))
		} else {
			tabs = append(tabs, styles.tab.Render(p.String()))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *Model) status() string {
	line := styles.muted.Render(m.store.Current().String())
	switch {
	case m.err != nil:
		line += "  " + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.notice != "":
		line += "  " + styles.ok.Render(m.notice)
	}
	return line
}
