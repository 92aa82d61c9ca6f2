package palette

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping shared by every overlay.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	alt    key.Binding
	toggle key.Binding
	close  key.Binding
}

func newKeyMap(mode Mode) keyMap {
	enterHelp := "open"
	if mode == SubmitExplicit {
		enterHelp = "ask/open"
	}
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", enterHelp)),
		alt:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to playlist")),
		toggle: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "results")),
		close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.toggle, k.close}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.alt},
		{k.toggle, k.close},
	}
}
