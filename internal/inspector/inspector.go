package inspector

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/palette"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/desertthunder/spotdash/internal/tasks"
)

const (
	metaPurpose   = "meta"
	pagePurpose   = "page"
	viewerPurpose = "viewer"
	mutatePurpose = "mutate"

	// Source tags [PickedMsg] values produced by the browser's own picker.
	Source = "inspector"
	// ReadOnlyReason explains why mutation controls are disabled.
	ReadOnlyReason = "You can only edit playlists you own"

	// prefetchFactor is how many viewports of unseen rows must remain below
	// the viewport before the next page is requested.
	prefetchFactor = 1.5
	chromeRows     = 9
)

// Gateway is the backend surface the browser reads from.
type Gateway interface {
	PlaylistLister
	PlaylistMetadata(ctx context.Context, id string) (*models.Playlist, error)
	PlaylistPage(ctx context.Context, id string, limit, offset int) (*models.Page[models.PlaylistEntry], error)
	ViewerID(ctx context.Context) (string, error)
	Play(ctx context.Context, req models.PlayRequest) error
}

// Mutator applies chunked membership changes, see [tasks.Engine].
type Mutator interface {
	Mutate(ctx context.Context, req tasks.MutationRequest, progress chan<- tasks.ProgressUpdate) (*tasks.MutationResult, error)
}

type metaMsg struct {
	ticket   palette.Ticket
	playlist *models.Playlist
	err      error
}

type pageMsg struct {
	ticket palette.Ticket
	reset  bool
	page   *models.Page[models.PlaylistEntry]
	err    error
}

type viewerMsg struct {
	ticket palette.Ticket
	id     string
	err    error
}

type mutateMsg struct {
	ticket palette.Ticket
	origin string
	target string
	req    tasks.MutationRequest
	result *tasks.MutationResult
	err    error
}

type playedMsg struct {
	uri string
	err error
}

// Model browses one playlist at a time.
type Model struct {
	ctx     context.Context
	gateway Gateway
	mutator Mutator
	logger  *log.Logger
	slot    *palette.Slot
	picker  *Picker

	keys       keyMap
	filterKeys filterKeyMap
	help       help.Model
	filter     textinput.Model
	filtering  bool

	open       bool
	playlistID string
	meta       *models.Playlist
	viewer     string
	page       PageState
	selection  Selection
	rows       []Row

	cursor int
	offset int
	height int
	width  int

	err    error
	notice string
}

// New creates a closed browser. Requests derive their context from ctx.
func New(ctx context.Context, gateway Gateway, mutator Mutator, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "Filter by title, artist or album"
	filter.CharLimit = 128

	m := &Model{
		ctx:        ctx,
		gateway:    gateway,
		mutator:    mutator,
		logger:     logger.WithPrefix("inspector"),
		slot:       palette.NewSlot(),
		picker:     NewPicker(ctx, gateway, Source),
		keys:       newKeyMap(),
		filterKeys: newFilterKeyMap(),
		help:       help.New(),
		filter:     filter,
		height:     10,
	}
	m.keys.setEditable(false)
	return m
}

func (m *Model) IsOpen() bool               { return m.open }
func (m *Model) PlaylistID() string         { return m.playlistID }
func (m *Model) Playlist() *models.Playlist { return m.meta }
func (m *Model) Viewer() string             { return m.viewer }
func (m *Model) Page() PageState            { return m.page }
func (m *Model) Rows() []Row                { return m.rows }
func (m *Model) Cursor() int                { return m.cursor }
func (m *Model) Err() error                 { return m.err }
func (m *Model) Notice() string             { return m.notice }
func (m *Model) Filtering() bool            { return m.filtering }
func (m *Model) Picker() *Picker            { return m.picker }

// Acting reports whether a mutation is in flight.
func (m *Model) Acting() bool {
	return m.slot.InFlight(mutatePurpose)
}

// Loading reports whether a page request is in flight.
func (m *Model) Loading() bool {
	return m.slot.InFlight(pagePurpose)
}

// CanEdit reports whether the viewer owns the open playlist.
func (m *Model) CanEdit() bool {
	return m.meta != nil && m.meta.OwnedBy(m.viewer)
}

// Selected returns the selected URIs among the currently shown rows.
func (m *Model) Selected() []string {
	return m.selection.URIs(m.rows)
}

// Focused returns the row under the cursor.
func (m *Model) Focused() (Row, bool) {
	if len(m.rows) == 0 {
		return Row{}, false
	}
	return m.rows[m.cursor], true
}

// SetSize adapts the row window to the terminal and may pre-fetch.
func (m *Model) SetSize(width, height int) tea.Cmd {
	m.width = width
	m.height = max(height-chromeRows, 3)
	m.filter.Width = max(width-10, 10)
	m.help.Width = width
	m.clampCursor()
	return m.fetchMore()
}

// Open discards any previous playlist and loads metadata, the first page and
// the viewer identity for id concurrently.
func (m *Model) Open(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	m.Close()
	m.open = true
	m.playlistID = id

	meta := m.slot.Start(m.ctx, metaPurpose)
	viewer := m.slot.Start(m.ctx, viewerPurpose)
	gw := m.gateway

	return tea.Batch(
		func() tea.Msg {
			pl, err := gw.PlaylistMetadata(meta.Ctx, id)
			return metaMsg{ticket: meta, playlist: pl, err: err}
		},
		m.loadPage(true),
		func() tea.Msg {
			viewerID, err := gw.ViewerID(viewer.Ctx)
			return viewerMsg{ticket: viewer, id: viewerID, err: err}
		},
	)
}

// Close hides the browser and forgets the playlist. A mutation in flight
// runs to completion but no longer touches the view.
func (m *Model) Close() {
	m.open = false
	for _, p := range []string{metaPurpose, pagePurpose, viewerPurpose} {
		m.slot.Cancel(p)
	}
	m.picker.Close()
	m.playlistID = ""
	m.meta = nil
	m.viewer = ""
	m.page.Reset()
	m.selection.Clear()
	m.rows = nil
	m.cursor = 0
	m.offset = 0
	m.err = nil
	m.notice = ""
	m.filtering = false
	m.filter.Reset()
	m.filter.Blur()
	m.keys.setEditable(false)
}

// Reload replaces what is loaded with a fresh first page.
func (m *Model) Reload() tea.Cmd {
	if !m.open {
		return nil
	}
	return m.loadPage(true)
}

// ShouldFetchMore reports whether the next page should be requested now.
//
// Paging stops while a filter is active, while a page or a mutation is in
// flight, and once every entry is loaded. Otherwise it triggers when fewer
// than 1.5 viewports of rows remain below the viewport.
func (m *Model) ShouldFetchMore() bool {
	switch {
	case !m.open, !m.page.TotalKnown, m.page.Exhausted:
		return false
	case strings.TrimSpace(m.filter.Value()) != "":
		return false
	case m.slot.InFlight(pagePurpose):
		return false
	case m.slot.InFlight(mutatePurpose):
		// server offsets are unsettled until the mutation lands
		return false
	}
	remaining := len(m.rows) - (m.offset + m.height)
	return float64(remaining) < prefetchFactor*float64(m.height)
}

func (m *Model) fetchMore() tea.Cmd {
	if !m.ShouldFetchMore() {
		return nil
	}
	return m.loadPage(false)
}

// loadPage requests the page at the current offset, or the first page when
// reset is set. Starting it supersedes any page request in flight.
func (m *Model) loadPage(reset bool) tea.Cmd {
	ticket := m.slot.Start(m.ctx, pagePurpose)
	id := m.playlistID
	offset := m.page.Offset
	if reset {
		offset = 0
	}
	gw := m.gateway
	return func() tea.Msg {
		page, err := gw.PlaylistPage(ticket.Ctx, id, PageSize, offset)
		return pageMsg{ticket: ticket, reset: reset, page: page, err: err}
	}
}

// SelectAll toggles selection of every shown row. Rows not yet fetched or
// hidden by the filter are never selected.
func (m *Model) SelectAll() {
	m.selection.SelectRows(m.rows)
}

// Remove deletes uris from the open playlist.
//
// The rows disappear immediately. If any chunk fails the first page is
// reloaded so the view matches the server again. It is a no-op without edit
// permission, with nothing to remove, or while another mutation runs.
func (m *Model) Remove(uris []string) tea.Cmd {
	if !m.open || !m.CanEdit() || len(uris) == 0 || m.Acting() {
		return nil
	}

	// a page in flight was requested against the pre-removal offsets
	m.slot.Cancel(pagePurpose)
	m.page.RemoveURIs(uriSet(uris))
	m.refresh()

	req := tasks.MutationRequest{PlaylistID: m.playlistID, Op: models.OpRemove, URIs: uris}
	return m.mutate(req, m.playlistName())
}

// Add copies uris into target, which the viewer must own. The open playlist
// is unchanged, and the selection is cleared once every chunk succeeds.
func (m *Model) Add(target models.Playlist, uris []string) tea.Cmd {
	if !m.open || target.ID == "" || target.ID == m.playlistID || len(uris) == 0 || m.Acting() {
		return nil
	}
	if !target.OwnedBy(m.viewer) {
		return nil
	}
	req := tasks.MutationRequest{PlaylistID: target.ID, Op: models.OpAdd, URIs: uris}
	return m.mutate(req, target.Name)
}

func (m *Model) mutate(req tasks.MutationRequest, target string) tea.Cmd {
	ticket := m.slot.Start(m.ctx, mutatePurpose)
	origin := m.playlistID
	m.err = nil
	m.notice = ""
	mutator := m.mutator
	return func() tea.Msg {
		result, err := mutator.Mutate(ticket.Ctx, req, nil)
		return mutateMsg{ticket: ticket, origin: origin, target: target, req: req, result: result, err: err}
	}
}

func (m *Model) play(row Row) tea.Cmd {
	if m.meta == nil || m.meta.URI == "" {
		return nil
	}
	req := models.PlayRequest{ContextURI: m.meta.URI, OffsetURI: row.Entry.URI()}
	gw := m.gateway
	ctx := m.ctx
	m.notice = "Playing " + row.Track().Name
	return func() tea.Msg {
		return playedMsg{uri: req.OffsetURI, err: gw.Play(ctx, req)}
	}
}

// Update handles keys and results. Results of a superseded request are dropped.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case mutateMsg:
		return m.receiveMutation(msg)
	case playedMsg:
		if msg.err != nil && !palette.IsCanceled(msg.err) {
			m.logger.Warn("play failed", "uri", msg.uri, "error", msg.err)
		}
		return nil
	}

	if !m.open {
		return nil
	}

	switch msg := msg.(type) {
	case metaMsg:
		if !m.slot.Settle(msg.ticket) {
			return nil
		}
		if msg.err != nil {
			if !palette.IsCanceled(msg.err) {
				m.err = fmt.Errorf("load playlist: %w", msg.err)
			}
			return nil
		}
		m.meta = msg.playlist
		m.keys.setEditable(m.CanEdit())
		return nil
	case viewerMsg:
		if !m.slot.Settle(msg.ticket) {
			return nil
		}
		if msg.err != nil {
			if !palette.IsCanceled(msg.err) {
				m.logger.Debug("viewer lookup failed", "error", msg.err)
			}
			return nil
		}
		m.viewer = msg.id
		m.keys.setEditable(m.CanEdit())
		return nil
	case pageMsg:
		return m.receivePage(msg)
	case playlistsMsg:
		return m.picker.Update(msg)
	case PickedMsg:
		if msg.Source != Source {
			return nil
		}
		return m.Add(msg.Target, msg.URIs)
	case tea.KeyMsg:
		if m.picker.IsOpen() {
			return m.picker.Update(msg)
		}
		return m.handleKey(msg)
	}

	if m.picker.IsOpen() {
		return m.picker.Update(msg)
	}
	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) receivePage(msg pageMsg) tea.Cmd {
	if !m.slot.Settle(msg.ticket) {
		return nil
	}
	if msg.err != nil {
		if palette.IsCanceled(msg.err) {
			return nil
		}
		if msg.reset {
			m.err = fmt.Errorf("load tracks: %w", msg.err)
		} else {
			m.logger.Warn("could not load more tracks", "playlist", m.playlistID, "offset", m.page.Offset, "error", msg.err)
		}
		return nil
	}

	if msg.reset {
		m.page.Replace(msg.page)
	} else {
		m.page.Append(msg.page)
	}
	m.refresh()
	return m.fetchMore()
}

func (m *Model) receiveMutation(msg mutateMsg) tea.Cmd {
	if !m.slot.Settle(msg.ticket) {
		return nil
	}

	noun := "tracks"
	if len(msg.req.URIs) == 1 {
		noun = "track"
	}

	if !m.open || msg.origin != m.playlistID {
		if msg.err != nil {
			m.logger.Warn("mutation failed after browser moved on", "playlist", msg.req.PlaylistID, "error", msg.err)
		}
		return nil
	}

	if msg.err != nil {
		if palette.IsCanceled(msg.err) {
			return nil
		}
		m.err = msg.err
		if msg.req.Op == models.OpRemove {
			return m.loadPage(true)
		}
		return nil
	}

	m.selection.Clear()
	switch msg.req.Op {
	case models.OpRemove:
		m.notice = fmt.Sprintf("Removed %d %s", len(msg.req.URIs), noun)
		return m.fetchMore()
	default:
		m.notice = fmt.Sprintf("Added %d %s to %s", len(msg.req.URIs), noun, msg.target)
		return m.fetchMore()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.close):
		m.Close()
		return nil
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.pageUp):
		m.moveCursor(-m.height)
	case key.Matches(msg, m.keys.pageDown):
		m.moveCursor(m.height)
	case key.Matches(msg, m.keys.top):
		m.moveCursor(-len(m.rows))
	case key.Matches(msg, m.keys.bottom):
		m.moveCursor(len(m.rows))
	case key.Matches(msg, m.keys.play):
		if row, ok := m.Focused(); ok {
			return m.play(row)
		}
		return nil
	case key.Matches(msg, m.keys.toggle):
		if row, ok := m.Focused(); ok {
			m.selection.Toggle(row.Entry.URI())
		}
		return nil
	case key.Matches(msg, m.keys.selectAll):
		m.SelectAll()
		return nil
	case key.Matches(msg, m.keys.clear):
		m.selection.Clear()
		return nil
	case key.Matches(msg, m.keys.filter):
		m.filtering = true
		return m.filter.Focus()
	case key.Matches(msg, m.keys.removeRow):
		if row, ok := m.Focused(); ok {
			return m.Remove([]string{row.Entry.URI()})
		}
		return nil
	case key.Matches(msg, m.keys.removeMarked):
		return m.Remove(m.Selected())
	case key.Matches(msg, m.keys.addRow):
		if row, ok := m.Focused(); ok {
			return m.picker.Open(m.playlistID, m.viewer, []string{row.Entry.URI()})
		}
		return nil
	case key.Matches(msg, m.keys.addMarked):
		return m.picker.Open(m.playlistID, m.viewer, m.Selected())
	case key.Matches(msg, m.keys.reload):
		return m.Reload()
	default:
		return nil
	}
	return m.fetchMore()
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.filterKeys.clear):
		m.filtering = false
		m.filter.Reset()
		m.filter.Blur()
		m.refresh()
		return m.fetchMore()
	case key.Matches(msg, m.filterKeys.apply):
		m.filtering = false
		m.filter.Blur()
		return nil
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.cursor = 0
		m.offset = 0
		m.refresh()
	}
	return cmd
}

func (m *Model) refresh() {
	m.rows = Filter(m.page.Items, m.filter.Value())
	m.clampCursor()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.rows)
	m.cursor = max(0, min(m.cursor, n-1))
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	m.offset = max(0, min(m.offset, n-m.height))
}

func (m *Model) playlistName() string {
	if m.meta == nil {
		return m.playlistID
	}
	return m.meta.Name
}
