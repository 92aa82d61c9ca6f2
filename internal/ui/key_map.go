package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/spotdash/internal/shared"
)

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	search    key.Binding
	assist    key.Binding
	back      key.Binding
	forward   key.Binding
	copyLink  key.Binding
	openLink  key.Binding
	nextPanel key.Binding
	prevPanel key.Binding
	enter     key.Binding
	playList  key.Binding
	playPause key.Binding
	next      key.Binding
	previous  key.Binding
	timeRange key.Binding
	refresh   key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap(cfg shared.UIConfig) keyMap {
	searchKey := cfg.SearchHotkey
	if searchKey == "" {
		searchKey = "ctrl+k"
	}
	assistKey := cfg.AssistHotkey
	if assistKey == "" {
		assistKey = "ctrl+a"
	}

	return keyMap{
		search:    key.NewBinding(key.WithKeys(searchKey), key.WithHelp(searchKey, "search")),
		assist:    key.NewBinding(key.WithKeys(assistKey), key.WithHelp(assistKey, "ask")),
		back:      key.NewBinding(key.WithKeys("alt+left"), key.WithHelp("alt+←", "back")),
		forward:   key.NewBinding(key.WithKeys("alt+right"), key.WithHelp("alt+→", "forward")),
		copyLink:  key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy link")),
		openLink:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open link")),
		nextPanel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		prevPanel: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev panel")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		playList:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
		playPause: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		next:      key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "next")),
		previous:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "previous")),
		timeRange: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.assist, k.enter, k.playPause, k.nextPanel, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.search, k.assist, k.copyLink, k.openLink, k.back, k.forward},
		{k.nextPanel, k.prevPanel, k.enter, k.playList, k.refresh},
		{k.playPause, k.next, k.previous, k.timeRange},
		{k.help, k.quit},
	}
}
