package palette

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/spotdash/internal/location"
)

func TestDebouncer(t *testing.T) {
	t.Run("only the latest push settles", func(t *testing.T) {
		d := NewDebouncer("search", 0)
		for _, v := range []string{"a", "ab", "abc"} {
			if cmd := d.Push(v); cmd == nil {
				t.Fatalf("Push(%q) returned nil cmd", v)
			}
		}

		if _, ok := d.Settled(DebounceMsg{Owner: "search", Version: 1, Value: "a"}); ok {
			t.Error("stale version settled")
		}
		if _, ok := d.Settled(DebounceMsg{Owner: "search", Version: 2, Value: "ab"}); ok {
			t.Error("stale version settled")
		}

		value, ok := d.Settled(DebounceMsg{Owner: "search", Version: 3, Value: "abc"})
		if !ok || value != "abc" {
			t.Fatalf("Settled() = %q, %v; want abc, true", value, ok)
		}
		if d.Pending() {
			t.Error("still pending after settle")
		}
		if _, ok := d.Settled(DebounceMsg{Owner: "search", Version: 3, Value: "abc"}); ok {
			t.Error("settled twice")
		}
	})

	t.Run("ignores other owners", func(t *testing.T) {
		d := NewDebouncer("search", 0)
		d.Push("x")
		if _, ok := d.Settled(DebounceMsg{Owner: "assist", Version: 1, Value: "x"}); ok {
			t.Error("settled a message from another owner")
		}
	})

	t.Run("reset invalidates pending timer", func(t *testing.T) {
		d := NewDebouncer("search", 0)
		d.Push("x")
		d.Reset()
		if _, ok := d.Settled(DebounceMsg{Owner: "search", Version: 1, Value: "x"}); ok {
			t.Error("settled after reset")
		}
	})

	t.Run("defaults delay", func(t *testing.T) {
		if got := NewDebouncer("x", 0).Delay(); got != DefaultDelay {
			t.Errorf("Delay() = %v, want %v", got, DefaultDelay)
		}
	})
}

func TestSlot(t *testing.T) {
	t.Run("start cancels previous ticket", func(t *testing.T) {
		s := NewSlot()
		first := s.Start(context.Background(), "search")
		second := s.Start(context.Background(), "search")

		if !errors.Is(first.Ctx.Err(), context.Canceled) {
			t.Errorf("first ticket ctx err = %v, want canceled", first.Ctx.Err())
		}
		if second.Ctx.Err() != nil {
			t.Errorf("second ticket ctx err = %v, want nil", second.Ctx.Err())
		}
		if s.Settle(first) {
			t.Error("superseded ticket settled")
		}
		if !s.InFlight("search") {
			t.Error("settling a stale ticket cleared in-flight")
		}
		if !s.Settle(second) {
			t.Error("current ticket did not settle")
		}
		if s.InFlight("search") {
			t.Error("in-flight not cleared after settle")
		}
	})

	t.Run("purposes are independent", func(t *testing.T) {
		s := NewSlot()
		search := s.Start(context.Background(), "search")
		assist := s.Start(context.Background(), "assist")
		s.Start(context.Background(), "search")

		if assist.Ctx.Err() != nil {
			t.Error("starting search canceled assist")
		}
		if s.Current(search) {
			t.Error("old search ticket still current")
		}
		if !s.Current(assist) {
			t.Error("assist ticket no longer current")
		}
	})

	t.Run("cancel makes ticket stale", func(t *testing.T) {
		s := NewSlot()
		ticket := s.Start(context.Background(), "assist")
		s.Cancel("assist")

		if ticket.Ctx.Err() == nil {
			t.Error("ctx not canceled")
		}
		if s.Settle(ticket) {
			t.Error("canceled ticket settled")
		}
		if s.InFlight("assist") {
			t.Error("in-flight after cancel")
		}
	})

	t.Run("cancel all", func(t *testing.T) {
		s := NewSlot()
		a := s.Start(context.Background(), "a")
		b := s.Start(context.Background(), "b")
		s.CancelAll()
		if a.Ctx.Err() == nil || b.Ctx.Err() == nil {
			t.Error("CancelAll left a live context")
		}
	})

	t.Run("IsCanceled", func(t *testing.T) {
		if !IsCanceled(fmt.Errorf("wrapped: %w", context.Canceled)) {
			t.Error("wrapped cancellation not detected")
		}
		if IsCanceled(errors.New("boom")) {
			t.Error("plain error reported as canceled")
		}
	})
}

func TestFocus(t *testing.T) {
	tests := []struct {
		name  string
		start int
		moves []int
		n     int
		want  int
	}{
		{name: "down", moves: []int{1}, n: 3, want: 1},
		{name: "up wraps to last", moves: []int{-1}, n: 3, want: 2},
		{name: "down wraps to first", start: 2, moves: []int{1}, n: 3, want: 0},
		{name: "round trip", moves: []int{1, 1, 1, -1}, n: 3, want: 2},
		{name: "empty list", moves: []int{1}, n: 0, want: 0},
		{name: "single row", moves: []int{1, -1, -1}, n: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Focus
			f.Move(tt.start, max(tt.n, 1))
			for _, d := range tt.moves {
				f.Move(d, tt.n)
			}
			if got := f.Index(); got != tt.want {
				t.Errorf("Index() = %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("window follows cursor", func(t *testing.T) {
		var f Focus
		f.SetWindow(3)
		for range 4 {
			f.Move(1, 10)
		}
		start, end := f.Visible(10)
		if f.Index() != 4 || start != 2 || end != 5 {
			t.Fatalf("index=%d window=[%d,%d); want 4 [2,5)", f.Index(), start, end)
		}

		f.Move(-4, 10)
		start, end = f.Visible(10)
		if start != 0 || end != 3 {
			t.Errorf("window=[%d,%d); want [0,3)", start, end)
		}

		f.Move(-1, 10)
		start, end = f.Visible(10)
		if f.Index() != 9 || start != 7 || end != 10 {
			t.Errorf("after wrap index=%d window=[%d,%d); want 9 [7,10)", f.Index(), start, end)
		}
	})

	t.Run("clamp", func(t *testing.T) {
		var f Focus
		f.Move(5, 10)
		f.Clamp(3)
		if f.Index() != 2 {
			t.Errorf("Index() = %d, want 2", f.Index())
		}
	})
}

func TestVisibility(t *testing.T) {
	v := Visibility{Param: "q"}
	parse := func(raw string) location.Location {
		loc, err := location.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		return loc
	}

	tests := []struct {
		name     string
		raw      string
		open     bool
		current  string
		want     Transition
		wantText string
	}{
		{name: "param appears", raw: "?q=hello", want: Opened, wantText: "hello"},
		{name: "empty param opens", raw: "?q=", want: Opened, wantText: ""},
		{name: "param removed", raw: "?ai=x", open: true, current: "hello", want: Closed},
		{name: "text changed", raw: "?q=world", open: true, current: "hello", want: TextChanged, wantText: "world"},
		{name: "same text", raw: "?q=hello", open: true, current: "hello", want: Unchanged, wantText: "hello"},
		{name: "absent and closed", raw: "", want: Unchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, text := v.Pull(parse(tt.raw), tt.open, tt.current)
			if got != tt.want || text != tt.wantText {
				t.Errorf("Pull() = %v, %q; want %v, %q", got, text, tt.want, tt.wantText)
			}
		})
	}

	t.Run("push sets and removes", func(t *testing.T) {
		base := parse("?ai=mood&x=1")

		opened := v.Push(base, true, "")
		if value, ok := opened.Lookup("q"); !ok || value != "" {
			t.Errorf("open with empty text: Lookup = %q, %v", value, ok)
		}
		if _, ok := base.Lookup("q"); ok {
			t.Error("Push mutated its input")
		}

		closed := v.Push(opened, false, "ignored")
		if _, ok := closed.Lookup("q"); ok {
			t.Error("param still present after close")
		}
		if value, _ := closed.Lookup("ai"); value != "mood" {
			t.Errorf("unrelated param lost: ai=%q", value)
		}
	})
}

func TestFlatten(t *testing.T) {
	groups := []Group{
		{Title: "A", Items: []Item{{ID: "1"}, {ID: "2"}}},
		{Title: "B"},
		{Title: "C", Items: []Item{{ID: "3"}}},
	}
	items := Flatten(groups)
	if len(items) != 3 || items[0].ID != "1" || items[2].ID != "3" {
		t.Errorf("Flatten() = %+v", items)
	}
}
