package location

import (
	"github.com/charmbracelet/log"
)

// Persister saves the current location so it survives a restart.
type Persister interface {
	SaveLocation(raw string) error
}

// Store holds the current location and its history.
//
// It is not safe for concurrent use; it lives on the UI event loop.
type Store struct {
	history []Location
	index   int
	persist Persister
	logger  *log.Logger
}

// NewStore starts history at initial. persist and logger may be nil.
func NewStore(initial Location, persist Persister, logger *log.Logger) *Store {
	if initial.Params == nil {
		initial = New()
	}
	return &Store{
		history: []Location{initial.Clone()},
		persist: persist,
		logger:  logger,
	}
}

// Current returns a copy of the current location.
func (s *Store) Current() Location {
	return s.history[s.index].Clone()
}

// Replace swaps the current entry without touching history. No-op when nothing changed.
func (s *Store) Replace(loc Location) {
	if s.history[s.index].Equal(loc) {
		return
	}
	s.history[s.index] = loc.Clone()
	s.save()
}

// Navigate pushes loc as a new entry, dropping any forward history.
func (s *Store) Navigate(loc Location) {
	s.history = append(s.history[:s.index+1], loc.Clone())
	s.index = len(s.history) - 1
	s.save()
}

// Back moves one entry back. Returns false at the start of history.
func (s *Store) Back() (Location, bool) {
	if s.index == 0 {
		return s.Current(), false
	}
	s.index--
	s.save()
	return s.Current(), true
}

// Forward moves one entry forward. Returns false at the end of history.
func (s *Store) Forward() (Location, bool) {
	if s.index >= len(s.history)-1 {
		return s.Current(), false
	}
	s.index++
	s.save()
	return s.Current(), true
}

// Len is the number of history entries.
func (s *Store) Len() int {
	return len(s.history)
}

func (s *Store) save() {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveLocation(s.history[s.index].String()); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist location", "error", err)
	}
}
