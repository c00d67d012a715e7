// Package grid implements the fixed-size character grid, its circular
// scrollback history, the alternate screen, and line-granularity dirty
// tracking that the VT parser mutates and the Renderer collaborator
// reads.
package grid

import (
	"strings"
	"sync"
)

// CellFlags is a bitset of text attributes.
type CellFlags uint8

const (
	FlagBold CellFlags = 1 << iota
	FlagItalic
	FlagUnderline
	FlagInverse
	FlagBlink
)

// Cell is a single glyph cell: codepoint plus fg/bg/attributes.
type Cell struct {
	Ch    rune
	Fg    Color
	Bg    Color
	Flags CellFlags
}

func blankCell(fg, bg Color, flags CellFlags) Cell {
	return Cell{Ch: ' ', Fg: fg, Bg: bg, Flags: flags}
}

// CursorStyle enumerates the on-screen cursor shapes DECSCUSR selects.
type CursorStyle uint8

const (
	CursorBlock CursorStyle = iota
	CursorUnderline
	CursorBar
)

// cursorPos is a saved (col, row) pair, 0-based.
type cursorPos struct {
	Col, Row int
}

type selection struct {
	active             bool
	startCol, startRow int
	endCol, endRow     int
	atViewOffset       int
}

// Grid is the fixed cols x rows character buffer plus its scrollback
// ring and distinct alternate screen. Reads from the Renderer
// collaborator and mutations from the VT parser can race, so state is
// guarded by a mutex (the renderer runs on its own goroutine/frame
// loop, per the session's concurrency model).
type Grid struct {
	mu sync.RWMutex

	Cols, Rows int
	Scrollback int // configured budget; history_size saturates here

	cells    []Cell // Rows*Cols, row-major, current screen
	altCells []Cell // Rows*Cols, the alternate screen's own buffer

	history [][]Cell // oldest-first; len == history_size

	altActive  bool
	viewOffset int // 0 == bottom; only meaningful on the normal screen

	CursorCol, CursorRow int

	scrollTop, scrollBottom int // 1-based, inclusive

	savedNormal cursorPos
	savedAlt    cursorPos

	sel selection

	// Pen: the attributes new blank/vacated cells are filled with.
	// Mirrors the VT parser's current SGR state (set via SetPen) so
	// that scroll/erase operations fill with "current" attributes as
	// spec.md requires, rather than always resetting to plain text.
	penFg, penBg Color
	penFlags     CellFlags

	// Terminal modes.
	AppCursorKeys  bool
	AppKeypad      bool
	CursorVisible  bool
	Autowrap       bool
	InsertMode     bool
	OriginMode     bool
	CursorBlink    bool
	pendingWrap    bool
	CursorStyleVal CursorStyle

	dirty   *DirtyTracker
	palette *Palette
}

// NewGrid allocates a grid with the given dimensions and scrollback
// budget. Allocation in Go cannot meaningfully fail short of an OOM
// panic, so there is no error return; spec.md's "allocation failure
// fails the operation, keeps prior state" is honored by Resize, which
// never discards the live buffer until the replacement is built.
func NewGrid(cols, rows, scrollback int) *Grid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	g := &Grid{
		Cols:          cols,
		Rows:          rows,
		Scrollback:    scrollback,
		cells:         make([]Cell, cols*rows),
		altCells:      make([]Cell, cols*rows),
		scrollTop:     1,
		scrollBottom:  rows,
		CursorVisible: true,
		Autowrap:      true,
		penFg:         DefaultFg(),
		penBg:         DefaultBg(),
		dirty:         NewDirtyTracker(rows),
		palette:       NewPalette(),
	}
	g.fillBlank(g.cells)
	g.fillBlank(g.altCells)
	return g
}

// Palette returns the grid's color palette, mutable at runtime via OSC 4.
func (g *Grid) Palette() *Palette {
	return g.palette
}

// Dirty returns the grid's dirty-line tracker for the Renderer
// collaborator to consult between frames.
func (g *Grid) Dirty() *DirtyTracker {
	return g.dirty
}

func (g *Grid) fillBlank(cells []Cell) {
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	for i := range cells {
		cells[i] = blank
	}
}

func (g *Grid) active() []Cell {
	if g.altActive {
		return g.altCells
	}
	return g.cells
}

func (g *Grid) index(col, row int) int { return row*g.Cols + col }

// SetPen records the attributes subsequent blanking operations should
// fill with; the VT parser calls this whenever SGR changes current
// attributes.
func (g *Grid) SetPen(fg, bg Color, flags CellFlags) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.penFg, g.penBg, g.penFlags = fg, bg, flags
}

// ---- cursor & basic motion ----

// GetCursor returns the 0-based cursor position.
func (g *Grid) GetCursor() (col, row int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.CursorCol, g.CursorRow
}

func (g *Grid) clampCursor() {
	if g.CursorCol < 0 {
		g.CursorCol = 0
	}
	if g.CursorCol >= g.Cols {
		g.CursorCol = g.Cols - 1
	}
	if g.CursorRow < 0 {
		g.CursorRow = 0
	}
	if g.CursorRow >= g.Rows {
		g.CursorRow = g.Rows - 1
	}
}

// MoveCursor moves the cursor by a relative delta, clamped to the screen bounds.
func (g *Grid) MoveCursor(dCol, dRow int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingWrap = false
	g.CursorCol += dCol
	g.CursorRow += dRow
	g.clampCursor()
}

// SetCursorPos sets the cursor to a 1-based (col, row), honoring
// origin mode by confining the coordinate to the scroll region and
// treating its top as the origin.
func (g *Grid) SetCursorPos(col, row int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingWrap = false
	if g.OriginMode {
		row += g.scrollTop - 1
		if row < g.scrollTop {
			row = g.scrollTop
		}
		if row > g.scrollBottom {
			row = g.scrollBottom
		}
	}
	g.CursorCol = col - 1
	g.CursorRow = row - 1
	g.clampCursor()
}

// CarriageReturn moves the cursor to column 0.
func (g *Grid) CarriageReturn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorCol = 0
	g.pendingWrap = false
}

// Backspace moves the cursor left one column, stopping at 0.
func (g *Grid) Backspace() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CursorCol > 0 {
		g.CursorCol--
	}
	g.pendingWrap = false
}

// Tab advances the cursor to the next multiple-of-8 column, wrapping
// via Newline if that would pass the right margin.
func (g *Grid) Tab() {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := ((g.CursorCol / 8) + 1) * 8
	if next >= g.Cols {
		g.CursorCol = 0
		g.newlineLocked()
		return
	}
	g.CursorCol = next
}

// ---- writing ----

// PutChar writes a glyph at the cursor and advances it one column,
// wrapping (and scrolling, if needed) when autowrap is enabled and the
// previous write left the cursor parked on the last column with a wrap
// pending.
// In insert mode, cells from the cursor rightward slide over first.
func (g *Grid) PutChar(ch rune, fg, bg Color, flags CellFlags) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.penFg, g.penBg, g.penFlags = fg, bg, flags

	if g.pendingWrap {
		if g.Autowrap {
			g.CursorCol = 0
			g.newlineLocked()
		}
		g.pendingWrap = false
	}

	if g.InsertMode {
		g.insertCharsLocked(1)
	}

	cells := g.active()
	cells[g.index(g.CursorCol, g.CursorRow)] = Cell{Ch: ch, Fg: fg, Bg: bg, Flags: flags}
	g.dirty.MarkLine(g.CursorRow)

	if g.CursorCol == g.Cols-1 {
		g.pendingWrap = true
	} else {
		g.CursorCol++
	}
}

// Newline moves the cursor down one row, scrolling the active region
// if the cursor would leave it.
func (g *Grid) Newline() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.newlineLocked()
}

func (g *Grid) newlineLocked() {
	g.pendingWrap = false
	g.CursorRow++
	if g.CursorRow >= g.scrollBottom {
		g.scrollRegionLocked(g.scrollTop, g.scrollBottom, 1)
		g.CursorRow = g.scrollBottom - 1
	} else if g.CursorRow >= g.Rows {
		g.CursorRow = g.Rows - 1
	}
}

// ReverseIndex moves the cursor up one row, scrolling the region down
// if the cursor was already at its top.
func (g *Grid) ReverseIndex() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingWrap = false
	if g.CursorRow <= g.scrollTop-1 {
		g.scrollRegionLocked(g.scrollTop, g.scrollBottom, -1)
		return
	}
	g.CursorRow--
}

// ---- scrolling & history ----

// ScrollRegion moves lines within [top, bottom] (1-based, inclusive):
// n>0 scrolls up (vacating bottom rows, history-appending when the
// region spans the whole normal screen); n<0 scrolls down (vacating
// top rows). Vacated rows are filled with the current pen.
func (g *Grid) ScrollRegion(top, bottom, n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scrollRegionLocked(top, bottom, n)
}

func (g *Grid) scrollRegionLocked(top, bottom, n int) {
	if top < 1 {
		top = 1
	}
	if bottom > g.Rows {
		bottom = g.Rows
	}
	if top > bottom || n == 0 {
		return
	}
	fullScreen := top == 1 && bottom == g.Rows
	cells := g.active()
	t, b := top-1, bottom-1

	if n > 0 {
		for i := 0; i < n; i++ {
			if fullScreen && !g.altActive {
				g.appendHistory(cells[t*g.Cols : (t+1)*g.Cols])
			}
			for row := t; row < b; row++ {
				copy(cells[g.index(0, row):g.index(0, row)+g.Cols], cells[g.index(0, row+1):g.index(0, row+1)+g.Cols])
			}
			g.blankRow(cells, b)
		}
	} else {
		for i := 0; i < -n; i++ {
			for row := b; row > t; row-- {
				copy(cells[g.index(0, row):g.index(0, row)+g.Cols], cells[g.index(0, row-1):g.index(0, row-1)+g.Cols])
			}
			g.blankRow(cells, t)
		}
	}
	g.dirty.MarkRange(top-1, bottom-1)
}

func (g *Grid) blankRow(cells []Cell, row int) {
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	for col := 0; col < g.Cols; col++ {
		cells[g.index(col, row)] = blank
	}
}

// appendHistory pushes a copy of row into the scrollback ring,
// trimming from the front once the configured budget is exceeded.
// Only applies to the normal screen.
func (g *Grid) appendHistory(row []Cell) {
	if g.Scrollback <= 0 {
		return
	}
	line := make([]Cell, len(row))
	copy(line, row)
	g.history = append(g.history, line)
	if len(g.history) > g.Scrollback {
		g.history = g.history[len(g.history)-g.Scrollback:]
	}
	g.dirty.RequestFullRedraw()
}

// HistorySize returns the number of lines currently retained in scrollback.
func (g *Grid) HistorySize() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.history)
}

// ViewOffset returns the current scrollback view offset (0 == bottom).
func (g *Grid) ViewOffset() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.viewOffset
}

// ScrollViewUp moves the viewport n lines further back into history,
// clamped to history_size. No-op on the alternate screen.
func (g *Grid) ScrollViewUp(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.altActive {
		return
	}
	g.viewOffset += n
	if g.viewOffset > len(g.history) {
		g.viewOffset = len(g.history)
	}
	g.dirty.RequestFullRedraw()
}

// ScrollViewDown moves the viewport n lines toward the present, clamped at 0.
func (g *Grid) ScrollViewDown(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.viewOffset -= n
	if g.viewOffset < 0 {
		g.viewOffset = 0
	}
	g.dirty.RequestFullRedraw()
}

// ResetScrollOffset snaps the viewport back to the bottom (called
// whenever new input is about to be typed, per the teacher's behavior).
func (g *Grid) ResetScrollOffset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.viewOffset = 0
}

// GetViewportLine returns the glyph row shown at screen row y,
// honoring view_offset when the normal screen is active.
func (g *Grid) GetViewportLine(y int) []Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.viewportLineLocked(y)
}

func (g *Grid) viewportLineLocked(y int) []Cell {
	if y < 0 || y >= g.Rows {
		return make([]Cell, g.Cols)
	}
	if g.altActive || g.viewOffset == 0 {
		cells := g.active()
		row := make([]Cell, g.Cols)
		copy(row, cells[g.index(0, y):g.index(0, y)+g.Cols])
		return row
	}

	historyRow := len(g.history) - g.viewOffset + y
	if historyRow >= 0 && historyRow < len(g.history) {
		src := g.history[historyRow]
		row := make([]Cell, g.Cols)
		copy(row, src)
		for i := len(src); i < g.Cols; i++ {
			row[i] = blankCell(DefaultFg(), DefaultBg(), 0)
		}
		return row
	}
	gridRow := historyRow - len(g.history)
	if gridRow < 0 || gridRow >= g.Rows {
		return make([]Cell, g.Cols)
	}
	row := make([]Cell, g.Cols)
	copy(row, g.cells[g.index(0, gridRow):g.index(0, gridRow)+g.Cols])
	return row
}

// GetCell returns the live (non-scrollback) cell at (col, row).
func (g *Grid) GetCell(col, row int) Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return Cell{Ch: ' '}
	}
	return g.active()[g.index(col, row)]
}

// ---- clearing & line edits ----

// ClearVisibleScreen fills every cell of the active screen with the current pen.
func (g *Grid) ClearVisibleScreen() {
	g.mu.Lock()
	defer g.mu.Unlock()
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	cells := g.active()
	for i := range cells {
		cells[i] = blank
	}
	g.dirty.RequestFullRedraw()
}

// ClearLine clears row y from column fromX through the end of the row.
func (g *Grid) ClearLine(y, fromX int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLineRange(y, fromX, g.Cols-1)
}

// ClearLineToCursor clears row y from column 0 through to_x inclusive.
func (g *Grid) ClearLineToCursor(y, toX int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLineRange(y, 0, toX)
}

func (g *Grid) clearLineRange(y, fromX, toX int) {
	if y < 0 || y >= g.Rows {
		return
	}
	if fromX < 0 {
		fromX = 0
	}
	if toX >= g.Cols {
		toX = g.Cols - 1
	}
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	cells := g.active()
	for col := fromX; col <= toX; col++ {
		cells[g.index(col, y)] = blank
	}
	g.dirty.MarkLine(y)
}

// ClearToEnd clears from the cursor to the end of the screen (ED 0).
func (g *Grid) ClearToEnd() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLineRange(g.CursorRow, g.CursorCol, g.Cols-1)
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	cells := g.active()
	for row := g.CursorRow + 1; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			cells[g.index(col, row)] = blank
		}
		g.dirty.MarkLine(row)
	}
}

// ClearToStart clears from the start of the screen to the cursor (ED 1).
func (g *Grid) ClearToStart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	cells := g.active()
	for row := 0; row < g.CursorRow; row++ {
		for col := 0; col < g.Cols; col++ {
			cells[g.index(col, row)] = blank
		}
		g.dirty.MarkLine(row)
	}
	g.clearLineRange(g.CursorRow, 0, g.CursorCol)
}

// InsertChars shifts cells at/after the cursor right by n, clamped to
// the remaining width, filling the gap with the current pen.
func (g *Grid) InsertChars(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.insertCharsLocked(n)
}

func (g *Grid) insertCharsLocked(n int) {
	if n > g.Cols-g.CursorCol {
		n = g.Cols - g.CursorCol
	}
	if n <= 0 {
		return
	}
	cells := g.active()
	row := g.CursorRow
	for col := g.Cols - 1; col >= g.CursorCol+n; col-- {
		cells[g.index(col, row)] = cells[g.index(col-n, row)]
	}
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	for col := g.CursorCol; col < g.CursorCol+n; col++ {
		cells[g.index(col, row)] = blank
	}
	g.dirty.MarkLine(row)
}

// DeleteChars shifts cells after the cursor+n left by n, clamped to the
// remaining width, filling vacated trailing cells with the current pen.
func (g *Grid) DeleteChars(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n > g.Cols-g.CursorCol {
		n = g.Cols - g.CursorCol
	}
	if n <= 0 {
		return
	}
	cells := g.active()
	row := g.CursorRow
	for col := g.CursorCol; col < g.Cols-n; col++ {
		cells[g.index(col, row)] = cells[g.index(col+n, row)]
	}
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	for col := g.Cols - n; col < g.Cols; col++ {
		cells[g.index(col, row)] = blank
	}
	g.dirty.MarkLine(row)
}

// EraseChars blanks n cells starting at the cursor without moving it
// or shifting anything.
func (g *Grid) EraseChars(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n > g.Cols-g.CursorCol {
		n = g.Cols - g.CursorCol
	}
	if n <= 0 {
		return
	}
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	cells := g.active()
	for col := g.CursorCol; col < g.CursorCol+n; col++ {
		cells[g.index(col, g.CursorRow)] = blank
	}
	g.dirty.MarkLine(g.CursorRow)
}

// InsertLines inserts n blank lines at the cursor row within the
// scroll region, shifting lines at/below it down.
func (g *Grid) InsertLines(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CursorRow+1 < g.scrollTop || g.CursorRow+1 > g.scrollBottom {
		return
	}
	g.scrollRegionWithinLocked(g.CursorRow+1, g.scrollBottom, -n)
}

// DeleteLines deletes n lines at the cursor row within the scroll
// region, shifting lines below it up.
func (g *Grid) DeleteLines(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CursorRow+1 < g.scrollTop || g.CursorRow+1 > g.scrollBottom {
		return
	}
	g.scrollRegionWithinLocked(g.CursorRow+1, g.scrollBottom, n)
}

// scrollRegionWithinLocked shifts lines within [top, bottom] relative
// to the cursor row, without the history-append side effect that
// scrollRegionLocked applies for DECSTBM-driven scrolling.
func (g *Grid) scrollRegionWithinLocked(top, bottom, n int) {
	if top < 1 {
		top = 1
	}
	if bottom > g.Rows {
		bottom = g.Rows
	}
	if top > bottom || n == 0 {
		return
	}
	cells := g.active()
	t, b := top-1, bottom-1
	if top == bottom {
		g.blankRow(cells, t)
		g.dirty.MarkLine(t)
		return
	}
	if n > 0 {
		for i := 0; i < n && i <= b-t; i++ {
			for row := t; row < b; row++ {
				copy(cells[g.index(0, row):g.index(0, row)+g.Cols], cells[g.index(0, row+1):g.index(0, row+1)+g.Cols])
			}
			g.blankRow(cells, b)
		}
	} else {
		for i := 0; i < -n && i <= b-t; i++ {
			for row := b; row > t; row-- {
				copy(cells[g.index(0, row):g.index(0, row)+g.Cols], cells[g.index(0, row-1):g.index(0, row-1)+g.Cols])
			}
			g.blankRow(cells, t)
		}
	}
	g.dirty.MarkRange(t, b)
}

// RepeatChar repeats ch with the current pen n times, as if typed
// again (CSI b, REP).
func (g *Grid) RepeatChar(ch rune, n int) {
	for i := 0; i < n; i++ {
		g.PutChar(ch, g.penFg, g.penBg, g.penFlags)
	}
}

// ---- scroll region ----

// SetScrollRegion sets the DECSTBM scroll region (1-based, inclusive)
// and homes the cursor.
func (g *Grid) SetScrollRegion(top, bottom int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if top < 1 {
		top = 1
	}
	if bottom > g.Rows {
		bottom = g.Rows
	}
	if top < bottom {
		g.scrollTop = top
		g.scrollBottom = bottom
	} else {
		g.scrollTop = 1
		g.scrollBottom = g.Rows
	}
	g.CursorCol = 0
	g.CursorRow = 0
	if g.OriginMode {
		g.CursorRow = g.scrollTop - 1
	}
	g.pendingWrap = false
}

// GetScrollRegion returns the current 1-based scroll region.
func (g *Grid) GetScrollRegion() (top, bottom int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scrollTop, g.scrollBottom
}

// ---- cursor save/restore & alternate screen ----

// SaveCursor stores the cursor position for the currently active screen.
func (g *Grid) SaveCursor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	pos := cursorPos{g.CursorCol, g.CursorRow}
	if g.altActive {
		g.savedAlt = pos
	} else {
		g.savedNormal = pos
	}
}

// RestoreCursor recalls the cursor position saved for the active screen.
func (g *Grid) RestoreCursor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	var pos cursorPos
	if g.altActive {
		pos = g.savedAlt
	} else {
		pos = g.savedNormal
	}
	g.CursorCol, g.CursorRow = pos.Col, pos.Row
	g.pendingWrap = false
	g.clampCursor()
}

// EnterAltScreen saves the cursor, clears the alternate buffer, and
// switches the active screen, per DEC private mode 1049.
func (g *Grid) EnterAltScreen() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.altActive {
		return
	}
	g.savedNormal = cursorPos{g.CursorCol, g.CursorRow}
	blank := blankCell(g.penFg, g.penBg, g.penFlags)
	for i := range g.altCells {
		g.altCells[i] = blank
	}
	g.altActive = true
	g.viewOffset = 0
	g.CursorCol, g.CursorRow = 0, 0
	g.dirty.RequestFullRedraw()
}

// LeaveAltScreen restores the normal screen and its saved cursor.
func (g *Grid) LeaveAltScreen() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.altActive {
		return
	}
	g.altActive = false
	g.CursorCol, g.CursorRow = g.savedNormal.Col, g.savedNormal.Row
	g.clampCursor()
	g.dirty.RequestFullRedraw()
}

// AltScreenActive reports whether the alternate screen is active.
func (g *Grid) AltScreenActive() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.altActive
}

// ---- resize ----

// Resize reallocates both screens and fully resets cursor/scroll
// region state. Scrollback is discarded on resize: this is the
// source's documented (if perhaps accidental) behavior, and spec.md
// directs adopting it rather than guessing at an alternative.
func (g *Grid) Resize(cols, rows int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	g.Cols, g.Rows = cols, rows
	g.cells = make([]Cell, cols*rows)
	g.altCells = make([]Cell, cols*rows)
	g.fillBlank(g.cells)
	g.fillBlank(g.altCells)
	g.history = nil
	g.viewOffset = 0
	g.scrollTop, g.scrollBottom = 1, rows
	g.CursorCol, g.CursorRow = 0, 0
	g.pendingWrap = false
	g.dirty = NewDirtyTracker(rows)
}

// ---- selection (grounded on the teacher's Grid selection fields;
// kept because the Renderer collaborator needs a way to know which
// cells to highlight for copy, the same way it needs dirty bits) ----

// SetSelection sets the selection bounds in display (viewport) coordinates.
func (g *Grid) SetSelection(startCol, startRow, endCol, endRow int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	startCol = clampInt(startCol, 0, g.Cols-1)
	endCol = clampInt(endCol, 0, g.Cols-1)
	startRow = clampInt(startRow, 0, g.Rows-1)
	endRow = clampInt(endRow, 0, g.Rows-1)
	g.sel = selection{true, startCol, startRow, endCol, endRow, g.viewOffset}
}

// ClearSelection clears any active selection.
func (g *Grid) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sel.active = false
}

// HasSelection reports whether a selection is active.
func (g *Grid) HasSelection() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sel.active
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SelectedText returns the text within the current selection, empty if none.
func (g *Grid) SelectedText() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.sel.active || g.sel.atViewOffset != g.viewOffset {
		return ""
	}
	startCol, startRow := g.sel.startCol, g.sel.startRow
	endCol, endRow := g.sel.endCol, g.sel.endRow
	if endRow < startRow || (endRow == startRow && endCol < startCol) {
		startCol, endCol = endCol, startCol
		startRow, endRow = endRow, startRow
	}
	var lines []string
	for row := startRow; row <= endRow; row++ {
		colStart, colEnd := 0, g.Cols-1
		if row == startRow {
			colStart = startCol
		}
		if row == endRow {
			colEnd = endCol
		}
		if colEnd < colStart {
			continue
		}
		line := g.viewportLineLocked(row)
		var b strings.Builder
		for col := colStart; col <= colEnd; col++ {
			ch := line[col].Ch
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// VisibleText returns the whole visible screen (at the current view
// offset) as plain text, rows newline-joined and trailing blanks on
// each row trimmed, for a copy with no active selection.
func (g *Grid) VisibleText() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	lines := make([]string, 0, g.Rows)
	for row := 0; row < g.Rows; row++ {
		line := g.viewportLineLocked(row)
		var b strings.Builder
		for col := 0; col < g.Cols; col++ {
			ch := line[col].Ch
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
