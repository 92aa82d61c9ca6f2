package palette

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
	accent   lipgloss.Style
	group    lipgloss.Style
	row      lipgloss.Style
	focused  lipgloss.Style
	subtitle lipgloss.Style
	muted    lipgloss.Style
	err      lipgloss.Style
}{
	frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4")).Padding(0, 1),
	title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
	accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
	group:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true),
	row:      lipgloss.NewStyle().PaddingLeft(2),
	focused:  lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("#04B575")).Bold(true),
	subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
	muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true),
	err:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
}

// View renders the overlay frame, or nothing when closed.
func (c *Controller[R]) View() string {
	if !c.open {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(c.opts.Title))
	b.WriteString("\n")
	b.WriteString(c.input.View())
	b.WriteString("\n\n")
	b.WriteString(c.body())
	b.WriteString("\n\n")
	b.WriteString(c.help.ShortHelpView(c.helpKeys()))

	frame := styles.frame
	if c.width > 0 {
		frame = frame.Width(max(c.width-4, 20))
	}
	return frame.Render(b.String())
}

func (c *Controller[R]) body() string {
	switch {
	case c.err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", c.err))
	case c.loading && len(c.items) == 0:
		return c.spinner.View() + " " + styles.muted.Render("Loading…")
	case len(c.items) == 0 && c.fetched:
		return styles.muted.Render(c.opts.EmptyText)
	case len(c.items) == 0:
		return styles.muted.Render(c.opts.IdleText)
	}

	start, end := c.focus.Visible(len(c.items))
	var lines []string
	if c.loading {
		lines = append(lines, c.spinner.View()+" "+styles.muted.Render("Updating…"))
	}

	index := 0
	for _, g := range c.groups {
		headed := false
		for _, item := range g.Items {
			if index >= start && index < end {
				if !headed {
					lines = append(lines, styles.group.Render(g.Title))
					headed = true
				}
				lines = append(lines, c.renderItem(item, index == c.focus.Index()))
			}
			index++
		}
	}

	if end-start < len(c.items) {
		lines = append(lines, styles.muted.Render(fmt.Sprintf("%d–%d of %d", start+1, end, len(c.items))))
	}
	return strings.Join(lines, "\n")
}

func (c *Controller[R]) renderItem(item Item, focused bool) string {
	title, detail := item.Title, "["+item.Kind.String()+"]"
	if item.Subtitle != "" {
		detail = "· " + item.Subtitle + " " + detail
	}
	if c.width > 0 {
		room := max(c.width-12, 20)
		title = shared.Truncate(title, room)
		detail = shared.Truncate(detail, room-runewidth.StringWidth(title)-1)
	}

	label := title + " " + styles.subtitle.Render(detail)
	if focused && c.listFocused {
		return styles.focused.Render("▸ " + label)
	}
	if focused {
		return styles.focused.Render("› " + label)
	}
	return styles.row.Render(label)
}

func (c *Controller[R]) helpKeys() []key.Binding {
	keys := c.keys.ShortHelp()
	if c.listFocused {
		keys = append([]key.Binding{c.keys.up, c.keys.down}, keys...)
		if item, ok := c.Focused(); ok && item.Alt != ActionNone {
			keys = append(keys, c.keys.alt)
		}
	}
	return keys
}
