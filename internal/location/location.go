// package location models the dashboard's shareable address: a path plus query parameters, with browser-style history.
//
// Overlays mirror their state into parameters ("q" for search, "ai" for assist). Local edits use [Store.Replace] and
// never add history entries; [Store.Navigate], [Store.Back] and [Store.Forward] are external navigations that
// overlays must re-read.
package location

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	Scheme      = "spotdash"
	DefaultPath = "dashboard"
)

// Location is a path and its query parameters. A parameter is present even when its value is empty.
type Location struct {
	Path   string
	Params url.Values
}

// New returns the default dashboard location.
func New() Location {
	return Location{Path: DefaultPath, Params: url.Values{}}
}

// Parse accepts "spotdash://dashboard?q=x", "dashboard?q=x", "/dashboard?q=x", "?q=x" or "".
func Parse(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, Scheme+"://")

	path, query, _ := strings.Cut(raw, "?")
	path = strings.Trim(path, "/")
	if path == "" {
		path = DefaultPath
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", raw, err)
	}

	return Location{Path: path, Params: params}, nil
}

// String renders the location as a spotdash:// link.
func (l Location) String() string {
	path := l.Path
	if path == "" {
		path = DefaultPath
	}
	s := Scheme + "://" + path
	if len(l.Params) > 0 {
		s += "?" + l.Params.Encode()
	}
	return s
}

// Clone deep-copies the parameters.
func (l Location) Clone() Location {
	params := make(url.Values, len(l.Params))
	for k, v := range l.Params {
		params[k] = append([]string(nil), v...)
	}
	return Location{Path: l.Path, Params: params}
}

// Lookup returns a parameter's first value and whether the parameter is present at all.
func (l Location) Lookup(key string) (string, bool) {
	v, ok := l.Params[key]
	if !ok {
		return "", false
	}
	if len(v) == 0 {
		return "", true
	}
	return v[0], true
}

// Equal compares path and parameters.
func (l Location) Equal(other Location) bool {
	return l.String() == other.String()
}
