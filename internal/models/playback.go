package models

// MutationOp is a playlist membership change.
type MutationOp int

const (
	OpAdd MutationOp = iota
	OpRemove
)

func (o MutationOp) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// PlayRequest starts playback of either explicit URIs or a context, optionally at an offset URI.
type PlayRequest struct {
	URIs       []string
	ContextURI string
	OffsetURI  string
	PositionMS int
	DeviceID   string
}

// Device is a Spotify Connect target.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	IsRestricted  bool   `json:"is_restricted"`
	VolumePercent *int   `json:"volume_percent"`
}

// PlaybackContext is the collection the current item was started from.
type PlaybackContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// Playback is the player state.
type Playback struct {
	IsPlaying    bool             `json:"is_playing"`
	ProgressMS   int              `json:"progress_ms"`
	ShuffleState bool             `json:"shuffle_state"`
	RepeatState  string           `json:"repeat_state"`
	Item         *Track           `json:"item"`
	Device       *Device          `json:"device"`
	Context      *PlaybackContext `json:"context"`
}

// TimeRange is the affinity window for top items.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// Next cycles short, medium, long.
func (r TimeRange) Next() TimeRange {
	switch r {
	case ShortTerm:
		return MediumTerm
	case MediumTerm:
		return LongTerm
	default:
		return ShortTerm
	}
}

// Label is the human readable window.
func (r TimeRange) Label() string {
	switch r {
	case ShortTerm:
		return "4 weeks"
	case LongTerm:
		return "all time"
	default:
		return "6 months"
	}
}
