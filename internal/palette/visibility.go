package palette

import "github.com/desertthunder/spotdash/internal/location"

// Transition describes how an external location change affects an overlay.
type Transition int

const (
	Unchanged Transition = iota
	Opened
	Closed
	TextChanged
)

func (t Transition) String() string {
	switch t {
	case Opened:
		return "opened"
	case Closed:
		return "closed"
	case TextChanged:
		return "text-changed"
	default:
		return "unchanged"
	}
}

// Visibility binds an overlay's open state and query text to one location parameter.
//
// The overlay is open iff the parameter is present. An empty value is a valid open state.
type Visibility struct {
	Param string
}

// Pull compares the location against the overlay's current state and reports what should change.
// text is the parameter value when the result is Opened or TextChanged.
func (v Visibility) Pull(loc location.Location, open bool, current string) (Transition, string) {
	value, present := loc.Lookup(v.Param)
	switch {
	case present && !open:
		return Opened, value
	case !present && open:
		return Closed, ""
	case present && value != current:
		return TextChanged, value
	default:
		return Unchanged, value
	}
}

// Push writes the overlay state into a copy of loc: the parameter is set when open and removed when closed.
func (v Visibility) Push(loc location.Location, open bool, text string) location.Location {
	next := loc.Clone()
	if open {
		next.Params.Set(v.Param, text)
	} else {
		next.Params.Del(v.Param)
	}
	return next
}
