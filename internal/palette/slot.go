package palette

import (
	"context"
	"errors"
)

// Ticket identifies one request started through a [Slot].
type Ticket struct {
	Purpose string
	Gen     uint64
	Ctx     context.Context
}

// Slot allows one live request per purpose.
//
// Starting a request cancels the previous one for the same purpose; results whose ticket is no longer current are dropped.
type Slot struct {
	gens     map[string]uint64
	cancels  map[string]context.CancelFunc
	inFlight map[string]bool
}

func NewSlot() *Slot {
	return &Slot{
		gens:     map[string]uint64{},
		cancels:  map[string]context.CancelFunc{},
		inFlight: map[string]bool{},
	}
}

// Start cancels any request in flight for purpose and returns a fresh ticket derived from parent.
func (s *Slot) Start(parent context.Context, purpose string) Ticket {
	if parent == nil {
		parent = context.Background()
	}
	if cancel := s.cancels[purpose]; cancel != nil {
		cancel()
	}

	s.gens[purpose]++
	ctx, cancel := context.WithCancel(parent)
	s.cancels[purpose] = cancel
	s.inFlight[purpose] = true

	return Ticket{Purpose: purpose, Gen: s.gens[purpose], Ctx: ctx}
}

// Current reports whether t is the latest ticket for its purpose.
func (s *Slot) Current(t Ticket) bool {
	return s.gens[t.Purpose] == t.Gen
}

// Settle marks t finished. Returns false, leaving state untouched, when t has been superseded.
func (s *Slot) Settle(t Ticket) bool {
	if !s.Current(t) {
		return false
	}
	if cancel := s.cancels[t.Purpose]; cancel != nil {
		cancel()
		delete(s.cancels, t.Purpose)
	}
	s.inFlight[t.Purpose] = false
	return true
}

// Cancel aborts the request for purpose and makes its ticket stale.
func (s *Slot) Cancel(purpose string) {
	if cancel := s.cancels[purpose]; cancel != nil {
		cancel()
		delete(s.cancels, purpose)
	}
	s.gens[purpose]++
	s.inFlight[purpose] = false
}

// CancelAll cancels every purpose.
func (s *Slot) CancelAll() {
	for purpose := range s.gens {
		s.Cancel(purpose)
	}
}

// InFlight reports whether a request for purpose has started and not settled.
func (s *Slot) InFlight(purpose string) bool {
	return s.inFlight[purpose]
}

// IsCanceled reports whether err is the result of cancellation rather than a failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
