package inspector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/mattn/go-runewidth"
)

var styles = struct {
	frame    lipgloss.Style
	title    lipgloss.Style
	badge    lipgloss.Style
	row      lipgloss.Style
	focused  lipgloss.Style
	marked   lipgloss.Style
	subtitle lipgloss.Style
	muted    lipgloss.Style
	notice   lipgloss.Style
	err      lipgloss.Style
}{
	frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4")).Padding(0, 1),
	title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
	badge:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true),
	row:      lipgloss.NewStyle().PaddingLeft(2),
	focused:  lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
	marked:   lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
	subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
	muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true),
	notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
	err:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
}

// View renders the browser, or nothing when closed. An open picker replaces
// the help line.
func (m *Model) View() string {
	if !m.open {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.body())
	b.WriteString("\n\n")
	b.WriteString(m.footer())

	switch {
	case m.err != nil:
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.notice != "":
		b.WriteString("\n" + styles.notice.Render(m.notice))
	}

	b.WriteString("\n")
	if m.picker.IsOpen() {
		b.WriteString(m.picker.View())
	} else {
		b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	}

	frame := styles.frame
	if m.width > 0 {
		frame = frame.Width(max(m.width-4, 20))
	}
	return frame.Render(b.String())
}

func (m *Model) header() string {
	if m.meta == nil {
		return styles.title.Render("Playlist") + " " + styles.muted.Render("Loading…")
	}

	line := styles.title.Render(m.meta.Name)
	if owner := m.meta.Owner.DisplayName; owner != "" {
		line += " " + styles.subtitle.Render("by "+owner)
	}
	if !m.CanEdit() {
		line += "  " + styles.badge.Render("read-only") + " " + styles.muted.Render(ReadOnlyReason)
	}
	return line
}

func (m *Model) body() string {
	switch {
	case len(m.rows) == 0 && m.Loading():
		return styles.muted.Render("Loading tracks…")
	case len(m.rows) == 0 && m.filter.Value() != "":
		return styles.muted.Render("No tracks match the filter")
	case len(m.rows) == 0 && m.page.TotalKnown:
		return styles.muted.Render("This playlist is empty")
	case len(m.rows) == 0:
		return ""
	}

	end := min(m.offset+m.height, len(m.rows))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(row Row, focused bool) string {
	t := row.Track()
	mark := "[ ]"
	if m.selection.Has(t.URI) {
		mark = styles.marked.Render("[x]")
	}

	name := fmt.Sprintf("%3d. %s", row.Position, t.Name)
	detail := "· " + t.ArtistLine() + " · " + t.Album.Name + " · " + shared.FormatDuration(t.DurationMS)
	if m.width > 0 {
		// frame, padding, cursor and mark
		room := max(m.width-14, 20)
		name = shared.Truncate(name, room)
		detail = shared.Truncate(detail, room-runewidth.StringWidth(name)-1)
	}

	label := mark + " " + name + " " + styles.subtitle.Render(detail)
	if focused {
		return styles.focused.Render("▸ ") + label
	}
	return styles.row.Render(label)
}

func (m *Model) footer() string {
	total := "?"
	if m.page.TotalKnown {
		total = fmt.Sprint(m.page.Total)
	}
	line := fmt.Sprintf("%d shown • %s total", len(m.rows), total)
	if n := len(m.Selected()); n > 0 {
		line += fmt.Sprintf(" • %d selected", n)
	}
	if m.Loading() && len(m.rows) > 0 {
		line += " • loading more…"
	}
	if m.Acting() {
		line += " • saving…"
	}
	return styles.subtitle.Render(line)
}

func (m *Model) helpKeys() []key.Binding {
	if m.filtering {
		return []key.Binding{m.filterKeys.apply, m.filterKeys.clear}
	}
	keys := m.keys.ShortHelp()
	if m.selection.Len() > 0 {
		keys = append(keys, m.keys.removeMarked, m.keys.addMarked)
	}
	return keys
}
