package palette

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the quiet interval before a query is considered stable.
const DefaultDelay = 350 * time.Millisecond

// DebounceMsg is delivered when a debounce timer fires. Only the message carrying the latest version settles.
type DebounceMsg struct {
	Owner   string
	Version int
	Value   string
}

// Debouncer restarts its timer on every Push; intermediate values are never emitted.
type Debouncer struct {
	owner   string
	delay   time.Duration
	version int
	pending bool
}

// NewDebouncer creates a debouncer whose messages are tagged with owner.
func NewDebouncer(owner string, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{owner: owner, delay: delay}
}

// Push records value as the latest input and returns the timer command.
func (d *Debouncer) Push(value string) tea.Cmd {
	d.version++
	d.pending = true
	msg := DebounceMsg{Owner: d.owner, Version: d.version, Value: value}
	return tea.Tick(d.delay, func(time.Time) tea.Msg { return msg })
}

// Settled reports whether msg is the final value for this debouncer.
func (d *Debouncer) Settled(msg DebounceMsg) (string, bool) {
	if msg.Owner != d.owner || msg.Version != d.version || !d.pending {
		return "", false
	}
	d.pending = false
	return msg.Value, true
}

// Reset invalidates any timer in flight.
func (d *Debouncer) Reset() {
	d.version++
	d.pending = false
}

// Pending reports whether a pushed value has not settled yet.
func (d *Debouncer) Pending() bool {
	return d.pending
}

// Delay is the configured quiet interval.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
