package grid

// DirtyTracker records which screen rows have changed since the last
// render pass, so the Renderer collaborator can redraw incrementally
// instead of repainting every cell every frame.
type DirtyTracker struct {
	rows        int
	lines       []bool
	minY, maxY  int
	anyDirty    bool
	fullRedraw  bool
}

// NewDirtyTracker returns a tracker for a screen with the given row
// count, starting fully dirty (the first frame always redraws everything).
func NewDirtyTracker(rows int) *DirtyTracker {
	d := &DirtyTracker{
		rows:  rows,
		lines: make([]bool, rows),
	}
	d.RequestFullRedraw()
	return d
}

// MarkLine flags a single row as changed.
func (d *DirtyTracker) MarkLine(y int) {
	if y < 0 || y >= d.rows {
		return
	}
	if !d.lines[y] {
		d.lines[y] = true
	}
	if !d.anyDirty || y < d.minY {
		d.minY = y
	}
	if !d.anyDirty || y > d.maxY {
		d.maxY = y
	}
	d.anyDirty = true
}

// MarkRange flags every row in [lo, hi] inclusive as changed.
func (d *DirtyTracker) MarkRange(lo, hi int) {
	if lo > hi {
		lo, hi = hi, lo
	}
	for y := lo; y <= hi; y++ {
		d.MarkLine(y)
	}
}

// RequestFullRedraw flags the entire screen dirty, used after
// operations (scrollback push, resize, alt-screen switch) cheaper to
// redraw wholesale than to track precisely.
func (d *DirtyTracker) RequestFullRedraw() {
	d.fullRedraw = true
	d.anyDirty = d.rows > 0
	d.minY = 0
	d.maxY = d.rows - 1
	for i := range d.lines {
		d.lines[i] = true
	}
}

// DirtyLines returns the sorted set of dirty row indices, and whether
// a full redraw was requested (in which case the caller should treat
// every row as dirty regardless of the slice contents).
func (d *DirtyTracker) DirtyLines() (lines []int, full bool) {
	if !d.anyDirty {
		return nil, d.fullRedraw
	}
	for y := 0; y < d.rows; y++ {
		if d.lines[y] {
			lines = append(lines, y)
		}
	}
	return lines, d.fullRedraw
}

// Bounds returns the inclusive [min, max] row range touched since the
// last Clear, or ok=false if nothing is dirty.
func (d *DirtyTracker) Bounds() (min, max int, ok bool) {
	if !d.anyDirty {
		return 0, 0, false
	}
	return d.minY, d.maxY, true
}

// IsDirty reports whether row y has changed since the last Clear.
func (d *DirtyTracker) IsDirty(y int) bool {
	if d.fullRedraw {
		return true
	}
	if y < 0 || y >= d.rows {
		return false
	}
	return d.lines[y]
}

// Clear resets all dirty state after the Renderer has redrawn.
func (d *DirtyTracker) Clear() {
	for i := range d.lines {
		d.lines[i] = false
	}
	d.anyDirty = false
	d.fullRedraw = false
	d.minY, d.maxY = 0, 0
}
