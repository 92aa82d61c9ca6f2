package palette

// Focus is a wrapping cursor over n rows with a scrolling window that keeps the cursor visible.
type Focus struct {
	index  int
	offset int
	window int
}

// Index is the focused row.
func (f *Focus) Index() int {
	return f.index
}

// Offset is the first visible row.
func (f *Focus) Offset() int {
	return f.offset
}

// Reset moves focus to the first row.
func (f *Focus) Reset() {
	f.index = 0
	f.offset = 0
}

// SetWindow sets how many rows are visible at once. Zero means unlimited.
func (f *Focus) SetWindow(rows int) {
	if rows < 0 {
		rows = 0
	}
	f.window = rows
	f.scroll()
}

// Move shifts focus by delta, wrapping modulo n.
func (f *Focus) Move(delta, n int) {
	if n <= 0 {
		f.Reset()
		return
	}
	f.index = ((f.index+delta)%n + n) % n
	f.scroll()
}

// Clamp pulls the index back into [0, n).
func (f *Focus) Clamp(n int) {
	if n <= 0 {
		f.Reset()
		return
	}
	if f.index >= n {
		f.index = n - 1
	}
	if f.index < 0 {
		f.index = 0
	}
	f.scroll()
}

// Visible returns the half-open window [start, end) of rows to draw out of n.
func (f *Focus) Visible(n int) (int, int) {
	if f.window == 0 || n <= f.window {
		return 0, n
	}
	start := min(f.offset, n-f.window)
	return start, start + f.window
}

func (f *Focus) scroll() {
	if f.window == 0 {
		f.offset = 0
		return
	}
	if f.index < f.offset {
		f.offset = f.index
	}
	if f.index >= f.offset+f.window {
		f.offset = f.index - f.window + 1
	}
}
