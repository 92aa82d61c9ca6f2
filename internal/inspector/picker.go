package inspector

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/palette"
	"github.com/sahilm/fuzzy"
)

// PlaylistLister lists the viewer's playlists.
type PlaylistLister interface {
	AllUserPlaylists(ctx context.Context) ([]models.Playlist, error)
}

// PickedMsg reports the destination chosen for URIs.
type PickedMsg struct {
	Source string
	Target models.Playlist
	URIs   []string
}

type playlistsMsg struct {
	ticket    palette.Ticket
	playlists []models.Playlist
	err       error
}

// Picker chooses a destination playlist for an add.
type Picker struct {
	ctx     context.Context
	lister  PlaylistLister
	purpose string
	slot    *palette.Slot
	focus   palette.Focus
	input   textinput.Model
	keys    pickerKeyMap

	open    bool
	loading bool
	err     error
	exclude string
	viewer  string
	uris    []string
	all     []models.Playlist
	matches []models.Playlist
}

// NewPicker creates a closed picker whose [PickedMsg] values carry source.
func NewPicker(ctx context.Context, lister PlaylistLister, source string) *Picker {
	input := textinput.New()
	input.Placeholder = "Filter playlists"
	input.Prompt = "› "
	input.CharLimit = 128

	p := &Picker{
		ctx:     ctx,
		lister:  lister,
		purpose: source,
		slot:    palette.NewSlot(),
		input:   input,
		keys:    newPickerKeyMap(),
	}
	p.focus.SetWindow(8)
	return p
}

func (p *Picker) IsOpen() bool               { return p.open }
func (p *Picker) Loading() bool              { return p.loading }
func (p *Picker) Err() error                 { return p.err }
func (p *Picker) Matches() []models.Playlist { return p.matches }
func (p *Picker) Source() string             { return p.purpose }

// AccountPendingReason is shown instead of destinations until the viewer is known.
const AccountPendingReason = "Loading your account… try again in a moment"

// Open shows the picker for uris. Only playlists owned by viewer, other than
// exclude, are offered. Nothing is offered while viewer is unknown.
func (p *Picker) Open(exclude, viewer string, uris []string) tea.Cmd {
	if len(uris) == 0 {
		return nil
	}
	p.open = true
	p.exclude = exclude
	p.viewer = viewer
	p.uris = append([]string(nil), uris...)
	p.err = nil
	p.all = nil
	p.matches = nil
	p.focus.Reset()
	p.input.Reset()
	if viewer == "" {
		p.loading = false
		return p.input.Focus()
	}

	ticket := p.slot.Start(p.ctx, p.purpose)
	p.loading = true
	lister := p.lister
	load := func() tea.Msg {
		playlists, err := lister.AllUserPlaylists(ticket.Ctx)
		return playlistsMsg{ticket: ticket, playlists: playlists, err: err}
	}
	return tea.Batch(p.input.Focus(), load)
}

func (p *Picker) Close() {
	p.open = false
	p.slot.CancelAll()
	p.loading = false
	p.err = nil
	p.uris = nil
	p.all = nil
	p.matches = nil
	p.input.Reset()
	p.input.Blur()
	p.focus.Reset()
}

func (p *Picker) Update(msg tea.Msg) tea.Cmd {
	if !p.open {
		return nil
	}

	switch msg := msg.(type) {
	case playlistsMsg:
		if !p.slot.Settle(msg.ticket) {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			if !palette.IsCanceled(msg.err) {
				p.err = msg.err
			}
			return nil
		}
		p.all = Destinations(msg.playlists, p.exclude, p.viewer)
		p.refilter()
		return nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.close):
			p.Close()
			return nil
		case key.Matches(msg, p.keys.up):
			p.focus.Move(-1, len(p.matches))
			return nil
		case key.Matches(msg, p.keys.down):
			p.focus.Move(1, len(p.matches))
			return nil
		case key.Matches(msg, p.keys.pick):
			return p.pick()
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.refilter()
	}
	return cmd
}

func (p *Picker) pick() tea.Cmd {
	if len(p.matches) == 0 {
		return nil
	}
	msg := PickedMsg{Source: p.purpose, Target: p.matches[p.focus.Index()], URIs: p.uris}
	p.Close()
	return func() tea.Msg { return msg }
}

func (p *Picker) refilter() {
	defer p.focus.Reset()

	query := strings.TrimSpace(p.input.Value())
	if query == "" {
		p.matches = p.all
		return
	}

	names := make([]string, len(p.all))
	for i, pl := range p.all {
		names[i] = pl.Name
	}
	found := fuzzy.Find(query, names)
	p.matches = make([]models.Playlist, 0, len(found))
	for _, m := range found {
		p.matches = append(p.matches, p.all[m.Index])
	}
}

// Destinations keeps playlists other than exclude that viewer owns. An
// unknown viewer keeps nothing.
func Destinations(playlists []models.Playlist, exclude, viewer string) []models.Playlist {
	out := make([]models.Playlist, 0, len(playlists))
	if viewer == "" {
		return out
	}
	for _, pl := range playlists {
		if pl.ID == "" || pl.ID == exclude {
			continue
		}
		if !pl.OwnedBy(viewer) {
			continue
		}
		out = append(out, pl)
	}
	return out
}

func (p *Picker) View() string {
	if !p.open {
		return ""
	}

	var b strings.Builder
	noun := "tracks"
	if len(p.uris) == 1 {
		noun = "track"
	}
	b.WriteString(styles.title.Render(fmt.Sprintf("Add %d %s to…", len(p.uris), noun)))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	switch {
	case p.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", p.err)))
	case p.viewer == "":
		b.WriteString(styles.muted.Render(AccountPendingReason))
	case p.loading:
		b.WriteString(styles.muted.Render("Loading playlists…"))
	case len(p.matches) == 0:
		b.WriteString(styles.muted.Render("No playlists you can add to"))
	default:
		start, end := p.focus.Visible(len(p.matches))
		for i := start; i < end; i++ {
			pl := p.matches[i]
			label := fmt.Sprintf("%s %s", pl.Name, styles.subtitle.Render(fmt.Sprintf("(%d)", pl.TrackCount())))
			if i == p.focus.Index() {
				b.WriteString(styles.focused.Render("▸ " + label))
			} else {
				b.WriteString(styles.row.Render(label))
			}
			if i < end-1 {
				b.WriteString("\n")
			}
		}
	}
	return styles.frame.Render(b.String())
}
