package inspector

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the playlist browser.
//
// Bindings that need edit permission are disabled, and so hidden from help,
// while the viewer does not own the playlist.
type keyMap struct {
	up           key.Binding
	down         key.Binding
	pageUp       key.Binding
	pageDown     key.Binding
	top          key.Binding
	bottom       key.Binding
	play         key.Binding
	toggle       key.Binding
	selectAll    key.Binding
	clear        key.Binding
	filter       key.Binding
	removeRow    key.Binding
	removeMarked key.Binding
	addRow       key.Binding
	addMarked    key.Binding
	reload       key.Binding
	close        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		pageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		pageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		top:          key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		bottom:       key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		play:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		toggle:       key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
		selectAll:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "select shown")),
		clear:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "clear selection")),
		filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		removeRow:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		removeMarked: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "remove selected")),
		addRow:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "add to…")),
		addMarked:    key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "add selected to…")),
		reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		close:        key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close")),
	}
}

func (k *keyMap) setEditable(ok bool) {
	k.removeRow.SetEnabled(ok)
	k.removeMarked.SetEnabled(ok)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.play, k.toggle, k.filter, k.removeRow, k.addRow, k.close}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.pageUp, k.pageDown, k.top, k.bottom},
		{k.play, k.toggle, k.selectAll, k.clear, k.filter},
		{k.removeRow, k.removeMarked, k.addRow, k.addMarked, k.reload, k.close},
	}
}

type filterKeyMap struct {
	apply key.Binding
	clear key.Binding
}

func newFilterKeyMap() filterKeyMap {
	return filterKeyMap{
		apply: key.NewBinding(key.WithKeys("enter", "down", "tab"), key.WithHelp("enter", "keep filter")),
		clear: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
	}
}

type pickerKeyMap struct {
	up    key.Binding
	down  key.Binding
	pick  key.Binding
	close key.Binding
}

func newPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		pick:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		close: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
