package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

// nowPlaying keeps the last polled playback state and interpolates progress between polls.
//
// Polling and the local clock are repeating ticks tagged with a generation; stop bumps the
// generation so ticks already scheduled are dropped when they fire.
type nowPlaying struct {
	playback *models.Playback
	progress int
	gen      int
	interval time.Duration
	clock    time.Duration
}

func newNowPlaying(interval time.Duration) *nowPlaying {
	return &nowPlaying{interval: interval, clock: time.Second}
}

func (n *nowPlaying) start() tea.Cmd {
	n.gen++
	return tea.Batch(n.schedulePoll(), n.scheduleClock())
}

func (n *nowPlaying) stop() {
	n.gen++
}

func (n *nowPlaying) schedulePoll() tea.Cmd {
	gen := n.gen
	return tea.Tick(n.interval, func(time.Time) tea.Msg { return pollMsg{gen: gen} })
}

func (n *nowPlaying) scheduleClock() tea.Cmd {
	gen := n.gen
	return tea.Tick(n.clock, func(t time.Time) tea.Msg { return clockMsg{gen: gen, at: t} })
}

func (n *nowPlaying) current(gen int) bool {
	return gen == n.gen
}

func (n *nowPlaying) set(p *models.Playback) {
	n.playback = p
	n.progress = 0
	if p != nil {
		n.progress = p.ProgressMS
	}
}

// advance moves progress forward while playing, never past the end of the item.
func (n *nowPlaying) advance(d time.Duration) {
	if n.playback == nil || !n.playback.IsPlaying || n.playback.Item == nil {
		return
	}
	n.progress = min(n.progress+int(d.Milliseconds()), n.playback.Item.DurationMS)
}

func (n *nowPlaying) playing() bool {
	return n.playback != nil && n.playback.IsPlaying
}

func (n *nowPlaying) deviceID() string {
	if n.playback == nil || n.playback.Device == nil {
		return ""
	}
	return n.playback.Device.ID
}

func (n *nowPlaying) view(width int) string {
	if n.playback == nil || n.playback.Item == nil {
		return styles.help.Render("Nothing playing")
	}

	t := n.playback.Item
	icon := "⏸"
	if n.playback.IsPlaying {
		icon = "▶"
	}
	line := fmt.Sprintf("%s %s %s", icon, styles.ok.Render(t.Name), styles.muted.Render("— "+t.ArtistLine()))
	if d := n.playback.Device; d != nil {
		line += styles.muted.Render(fmt.Sprintf("  on %s", d.Name))
	}

	times := fmt.Sprintf("%s / %s", shared.FormatDuration(n.progress), shared.FormatDuration(t.DurationMS))
	barWidth := max(min(width-len(times)-4, 40), 10)
	return line + "\n" + progressBar(n.progress, t.DurationMS, barWidth) + " " + styles.muted.Render(times)
}

func progressBar(progress, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(progress*width/total, width)
	}
	return styles.bar.Render(strings.Repeat("━", filled)) + styles.muted.Render(strings.Repeat("─", width-filled))
}
