package palette

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotdash/internal/location"
)

// Mode decides when the overlay sends its query.
type Mode int

const (
	// SubmitOnChange sends every debounced edit once the query reaches the minimum length.
	SubmitOnChange Mode = iota
	// SubmitExplicit sends only when enter is pressed in the query field.
	SubmitExplicit
)

// Source fetches results for a query and arranges them into groups.
type Source[R any] interface {
	Fetch(ctx context.Context, query string) (R, error)
	Groups(result R) []Group
}

// Options configures a [Controller].
type Options struct {
	Purpose     string // request slot purpose and [ActivateMsg.Source]
	Param       string // location parameter mirroring the query
	Title       string
	Placeholder string
	IdleText    string // shown before anything has been fetched
	EmptyText   string // shown when a fetch returns nothing
	Mode        Mode
	MinLength   int
	Delay       time.Duration
	Rows        int
}

type resultMsg[R any] struct {
	ticket Ticket
	query  string
	result R
	err    error
}

// Controller is the state machine behind a palette overlay.
type Controller[R any] struct {
	ctx        context.Context
	source     Source[R]
	opts       Options
	visibility Visibility
	slot       *Slot
	debounce   *Debouncer
	focus      Focus
	input      textinput.Model
	spinner    spinner.Model
	help       help.Model
	keys       keyMap

	open        bool
	listFocused bool
	loading     bool
	fetched     bool
	err         error
	groups      []Group
	items       []Item
	width       int
}

// NewController creates a closed overlay. Requests derive their context from ctx.
func NewController[R any](ctx context.Context, source Source[R], opts Options) *Controller[R] {
	if opts.MinLength <= 0 {
		opts.MinLength = 1
	}
	if opts.Rows <= 0 {
		opts.Rows = 10
	}

	input := textinput.New()
	input.Placeholder = opts.Placeholder
	input.Prompt = "› "
	input.CharLimit = 256

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = styles.accent

	c := &Controller[R]{
		ctx:        ctx,
		source:     source,
		opts:       opts,
		visibility: Visibility{Param: opts.Param},
		slot:       NewSlot(),
		debounce:   NewDebouncer(opts.Purpose, opts.Delay),
		input:      input,
		spinner:    spin,
		help:       help.New(),
		keys:       newKeyMap(opts.Mode),
	}
	c.focus.SetWindow(opts.Rows)
	return c
}

func (c *Controller[R]) IsOpen() bool      { return c.open }
func (c *Controller[R]) Query() string     { return c.input.Value() }
func (c *Controller[R]) Loading() bool     { return c.loading }
func (c *Controller[R]) Err() error        { return c.err }
func (c *Controller[R]) Items() []Item     { return c.items }
func (c *Controller[R]) Groups() []Group   { return c.groups }
func (c *Controller[R]) FocusIndex() int   { return c.focus.Index() }
func (c *Controller[R]) ListFocused() bool { return c.listFocused }
func (c *Controller[R]) Purpose() string   { return c.opts.Purpose }

// Focused returns the row under the cursor.
func (c *Controller[R]) Focused() (Item, bool) {
	if len(c.items) == 0 {
		return Item{}, false
	}
	return c.items[c.focus.Index()], true
}

// SetSize adapts the overlay to the terminal: width for the frame, height for the result window.
func (c *Controller[R]) SetSize(width, height int) {
	c.width = width
	c.input.Width = max(width-8, 10)
	rows := min(c.opts.Rows, max(height-10, 3))
	c.focus.SetWindow(rows)
}

// Open shows the overlay seeded with text and focuses the query field.
// In [SubmitOnChange] mode the seed is debounced like any other edit.
func (c *Controller[R]) Open(text string) tea.Cmd {
	c.open = true
	c.listFocused = false
	c.input.SetValue(text)
	c.input.CursorEnd()
	cmds := []tea.Cmd{c.input.Focus()}
	if c.opts.Mode == SubmitOnChange {
		cmds = append(cmds, c.debounce.Push(text))
	}
	return tea.Batch(cmds...)
}

// Close hides the overlay and discards its query, results, errors and pending requests.
func (c *Controller[R]) Close() {
	c.open = false
	c.listFocused = false
	c.input.Reset()
	c.input.Blur()
	c.debounce.Reset()
	c.slot.Cancel(c.opts.Purpose)
	c.loading = false
	c.reset()
}

// Toggle opens an empty overlay or closes an open one.
func (c *Controller[R]) Toggle() tea.Cmd {
	if c.open {
		c.Close()
		return nil
	}
	return c.Open("")
}

// Sync applies an externally navigated location to the overlay.
func (c *Controller[R]) Sync(loc location.Location) tea.Cmd {
	transition, text := c.visibility.Pull(loc, c.open, c.input.Value())
	switch transition {
	case Opened:
		return c.Open(text)
	case Closed:
		c.Close()
	case TextChanged:
		c.input.SetValue(text)
		c.input.CursorEnd()
		return c.edited(text)
	}
	return nil
}

// Apply mirrors the overlay state into loc.
func (c *Controller[R]) Apply(loc location.Location) location.Location {
	return c.visibility.Push(loc, c.open, c.input.Value())
}

// Update handles keys, debounce ticks, results and spinner frames. Messages arriving while closed are ignored.
func (c *Controller[R]) Update(msg tea.Msg) tea.Cmd {
	if !c.open {
		return nil
	}

	switch msg := msg.(type) {
	case DebounceMsg:
		value, ok := c.debounce.Settled(msg)
		if !ok {
			return nil
		}
		return c.submit(value)
	case resultMsg[R]:
		c.receive(msg)
		return nil
	case spinner.TickMsg:
		if !c.loading {
			return nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		return c.handleKey(msg)
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *Controller[R]) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, c.keys.close):
		c.Close()
		return nil
	case key.Matches(msg, c.keys.toggle):
		return c.toggleFocus()
	case key.Matches(msg, c.keys.up, c.keys.down):
		if !c.listFocused {
			return nil
		}
		delta := 1
		if key.Matches(msg, c.keys.up) {
			delta = -1
		}
		c.focus.Move(delta, len(c.items))
		return nil
	case key.Matches(msg, c.keys.enter):
		if !c.listFocused && c.opts.Mode == SubmitExplicit {
			return c.submit(c.input.Value())
		}
		return c.activate(false)
	case c.listFocused && key.Matches(msg, c.keys.alt):
		return c.activate(true)
	}

	if c.listFocused {
		if msg.Type != tea.KeyRunes && msg.Type != tea.KeyBackspace {
			return nil
		}
		c.listFocused = false
		c.input.Focus()
	}

	before := c.input.Value()
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if after := c.input.Value(); after != before {
		return tea.Batch(cmd, c.edited(after))
	}
	return cmd
}

func (c *Controller[R]) toggleFocus() tea.Cmd {
	c.listFocused = !c.listFocused
	if c.listFocused {
		c.input.Blur()
		return nil
	}
	return c.input.Focus()
}

func (c *Controller[R]) edited(text string) tea.Cmd {
	if c.opts.Mode != SubmitOnChange {
		return nil
	}
	return c.debounce.Push(text)
}

// submit starts a request for query, cancelling the previous one. Short queries clear the overlay instead.
func (c *Controller[R]) submit(query string) tea.Cmd {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < c.opts.MinLength {
		c.slot.Cancel(c.opts.Purpose)
		c.loading = false
		c.reset()
		return nil
	}

	ticket := c.slot.Start(c.ctx, c.opts.Purpose)
	c.loading = true
	c.err = nil
	source := c.source
	fetch := func() tea.Msg {
		result, err := source.Fetch(ticket.Ctx, q)
		return resultMsg[R]{ticket: ticket, query: q, result: result, err: err}
	}
	return tea.Batch(c.spinner.Tick, fetch)
}

func (c *Controller[R]) receive(msg resultMsg[R]) {
	if !c.slot.Settle(msg.ticket) {
		return
	}
	c.loading = false
	if msg.err != nil {
		if IsCanceled(msg.err) {
			return
		}
		c.reset()
		c.err = msg.err
		return
	}

	c.err = nil
	c.fetched = true
	c.groups = compact(c.source.Groups(msg.result))
	c.items = Flatten(c.groups)
	c.focus.Reset()
}

func (c *Controller[R]) activate(alt bool) tea.Cmd {
	item, ok := c.Focused()
	if !ok {
		return nil
	}
	action := item.Action
	if alt {
		action = item.Alt
	}
	if action == ActionNone {
		return nil
	}
	msg := ActivateMsg{Source: c.opts.Purpose, Item: item, Alt: alt}
	return func() tea.Msg { return msg }
}

func (c *Controller[R]) reset() {
	c.err = nil
	c.fetched = false
	c.groups = nil
	c.items = nil
	c.focus.Reset()
}

func compact(groups []Group) []Group {
	out := groups[:0:0]
	for _, g := range groups {
		if len(g.Items) > 0 {
			out = append(out, g)
		}
	}
	return out
}
