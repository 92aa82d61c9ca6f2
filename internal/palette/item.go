package palette

// Kind tags a result row.
type Kind int

const (
	KindTrack Kind = iota
	KindArtist
	KindAlbum
	KindPlaylist
	KindResolvedTrack
	KindResolvedArtist
)

func (k Kind) String() string {
	switch k {
	case KindTrack, KindResolvedTrack:
		return "Track"
	case KindArtist, KindResolvedArtist:
		return "Artist"
	case KindAlbum:
		return "Album"
	case KindPlaylist:
		return "Playlist"
	default:
		return "Unknown"
	}
}

// Action is what activating a row does.
type Action int

const (
	ActionNone Action = iota
	ActionPlayTrack
	ActionPlayContext
	ActionOpenPlaylist
	ActionOpenExternal
	ActionAddToPlaylist
)

// Item is one selectable row.
type Item struct {
	Kind     Kind
	ID       string
	URI      string
	Title    string
	Subtitle string
	Image    string
	Action   Action
	Alt      Action
}

// Group is a titled run of items.
type Group struct {
	Title string
	Items []Item
}

// Flatten concatenates group items in order.
func Flatten(groups []Group) []Item {
	var n int
	for _, g := range groups {
		n += len(g.Items)
	}
	out := make([]Item, 0, n)
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}

// ActivateMsg is emitted when the user activates a row. Alt selects the row's secondary action.
type ActivateMsg struct {
	Source string
	Item   Item
	Alt    bool
}

// Action returns the action the message asks for.
func (m ActivateMsg) Action() Action {
	if m.Alt {
		return m.Item.Alt
	}
	return m.Item.Action
}
