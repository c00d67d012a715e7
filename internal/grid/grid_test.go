package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutCharAdvancesCursor(t *testing.T) {
	g := NewGrid(10, 5, 100)
	g.PutChar('a', DefaultFg(), DefaultBg(), 0)
	col, row := g.GetCursor()
	assert.Equal(t, 1, col)
	assert.Equal(t, 0, row)
	assert.Equal(t, 'a', g.GetCell(0, 0).Ch)
}

func TestAutowrapDefersToNextWrite(t *testing.T) {
	g := NewGrid(3, 2, 100)
	g.PutChar('a', DefaultFg(), DefaultBg(), 0)
	g.PutChar('b', DefaultFg(), DefaultBg(), 0)
	g.PutChar('c', DefaultFg(), DefaultBg(), 0)
	col, row := g.GetCursor()
	require.Equal(t, 2, col, "cursor parks at last column, not past it")
	require.Equal(t, 0, row)

	g.PutChar('d', DefaultFg(), DefaultBg(), 0)
	col, row = g.GetCursor()
	assert.Equal(t, 1, col)
	assert.Equal(t, 1, row)
	assert.Equal(t, 'c', g.GetCell(2, 0).Ch)
	assert.Equal(t, 'd', g.GetCell(0, 1).Ch)
}

func TestAutowrapDisabledParksCursor(t *testing.T) {
	g := NewGrid(3, 2, 100)
	g.Autowrap = false
	for _, ch := range "abcdef" {
		g.PutChar(ch, DefaultFg(), DefaultBg(), 0)
	}
	col, row := g.GetCursor()
	assert.Equal(t, 2, col)
	assert.Equal(t, 0, row)
	assert.Equal(t, 'f', g.GetCell(2, 0).Ch)
}

func TestNewlineScrollsAndAppendsHistory(t *testing.T) {
	g := NewGrid(4, 2, 50)
	g.PutChar('x', DefaultFg(), DefaultBg(), 0)
	g.CarriageReturn()
	g.Newline()
	g.Newline()
	assert.Equal(t, 1, g.HistorySize())
	_, row := g.GetCursor()
	assert.Equal(t, 1, row)
}

func TestScrollbackCapsAtBudget(t *testing.T) {
	g := NewGrid(2, 1, 3)
	for i := 0; i < 10; i++ {
		g.Newline()
	}
	assert.Equal(t, 3, g.HistorySize())
}

func TestScrollRegionConfinesScrolling(t *testing.T) {
	g := NewGrid(3, 5, 100)
	g.SetScrollRegion(2, 4)
	for row := 0; row < 5; row++ {
		g.SetCursorPos(1, row+1)
		g.PutChar(rune('0'+row), DefaultFg(), DefaultBg(), 0)
	}
	g.SetCursorPos(1, 4)
	g.ScrollRegion(2, 4, 1)
	assert.Equal(t, '0', g.GetCell(0, 0).Ch, "row outside region untouched")
	assert.Equal(t, '2', g.GetCell(0, 1).Ch)
	assert.Equal(t, '3', g.GetCell(0, 2).Ch)
	assert.Equal(t, ' ', g.GetCell(0, 3).Ch)
	assert.Equal(t, '4', g.GetCell(0, 4).Ch, "row outside region untouched")
	assert.Equal(t, 0, g.HistorySize(), "region-scoped scroll does not push history")
}

func TestAltScreenIsPersistentAndSeparate(t *testing.T) {
	g := NewGrid(5, 2, 100)
	g.PutChar('n', DefaultFg(), DefaultBg(), 0)
	g.EnterAltScreen()
	assert.True(t, g.AltScreenActive())
	assert.Equal(t, ' ', g.GetCell(0, 0).Ch, "alt screen starts blank")
	g.PutChar('a', DefaultFg(), DefaultBg(), 0)
	g.LeaveAltScreen()
	assert.False(t, g.AltScreenActive())
	assert.Equal(t, 'n', g.GetCell(0, 0).Ch, "normal screen content preserved under alt")

	g.EnterAltScreen()
	assert.Equal(t, ' ', g.GetCell(0, 0).Ch, "re-entering alt screen clears, not recreates, its buffer")
}

func TestSaveRestoreCursorIsPerScreen(t *testing.T) {
	g := NewGrid(10, 10, 100)
	g.SetCursorPos(3, 3)
	g.SaveCursor()
	g.EnterAltScreen()
	g.SetCursorPos(5, 5)
	g.SaveCursor()
	g.SetCursorPos(1, 1)
	g.RestoreCursor()
	col, row := g.GetCursor()
	assert.Equal(t, 4, col)
	assert.Equal(t, 4, row)

	g.LeaveAltScreen()
	g.SetCursorPos(1, 1)
	g.RestoreCursor()
	col, row = g.GetCursor()
	assert.Equal(t, 2, col)
	assert.Equal(t, 2, row)
}

func TestOriginModeConfinesCursorPositioning(t *testing.T) {
	g := NewGrid(10, 10, 100)
	g.SetScrollRegion(3, 7)
	g.OriginMode = true
	g.SetCursorPos(1, 1)
	col, row := g.GetCursor()
	assert.Equal(t, 0, col)
	assert.Equal(t, 2, row, "row 1 in origin mode maps to scroll-region top")
}

func TestInsertAndDeleteChars(t *testing.T) {
	g := NewGrid(5, 1, 10)
	for _, ch := range "abcde" {
		g.PutChar(ch, DefaultFg(), DefaultBg(), 0)
	}
	g.SetCursorPos(2, 1)
	g.InsertChars(2)
	assert.Equal(t, 'a', g.GetCell(0, 0).Ch)
	assert.Equal(t, ' ', g.GetCell(1, 0).Ch)
	assert.Equal(t, ' ', g.GetCell(2, 0).Ch)
	assert.Equal(t, 'b', g.GetCell(3, 0).Ch)
	assert.Equal(t, 'c', g.GetCell(4, 0).Ch)

	g.SetCursorPos(2, 1)
	g.DeleteChars(1)
	assert.Equal(t, 'a', g.GetCell(0, 0).Ch)
	assert.Equal(t, ' ', g.GetCell(1, 0).Ch)
	assert.Equal(t, 'b', g.GetCell(2, 0).Ch)
}

func TestInsertLinesRespectScrollRegion(t *testing.T) {
	g := NewGrid(2, 5, 10)
	for row := 0; row < 5; row++ {
		g.SetCursorPos(1, row+1)
		g.PutChar(rune('0'+row), DefaultFg(), DefaultBg(), 0)
	}
	g.SetScrollRegion(2, 4)
	g.SetCursorPos(1, 2)
	g.InsertLines(1)
	assert.Equal(t, '0', g.GetCell(0, 0).Ch)
	assert.Equal(t, ' ', g.GetCell(0, 1).Ch)
	assert.Equal(t, '1', g.GetCell(0, 2).Ch)
	assert.Equal(t, '2', g.GetCell(0, 3).Ch)
	assert.Equal(t, '4', g.GetCell(0, 4).Ch)
}

func TestRepeatCharUsesCurrentPen(t *testing.T) {
	g := NewGrid(5, 1, 10)
	g.SetPen(IndexedColor(2), DefaultBg(), FlagBold)
	g.RepeatChar('x', 3)
	for col := 0; col < 3; col++ {
		cell := g.GetCell(col, 0)
		assert.Equal(t, 'x', cell.Ch)
		assert.Equal(t, FlagBold, cell.Flags)
	}
}

func TestViewOffsetClampsAndResets(t *testing.T) {
	g := NewGrid(4, 1, 5)
	for i := 0; i < 5; i++ {
		g.Newline()
	}
	g.ScrollViewUp(100)
	assert.Equal(t, 5, g.ViewOffset())
	g.ScrollViewDown(2)
	assert.Equal(t, 3, g.ViewOffset())
	g.ResetScrollOffset()
	assert.Equal(t, 0, g.ViewOffset())
}

func TestAltScreenIgnoresViewOffset(t *testing.T) {
	g := NewGrid(4, 1, 5)
	for i := 0; i < 5; i++ {
		g.Newline()
	}
	g.ScrollViewUp(2)
	g.EnterAltScreen()
	assert.Equal(t, 0, g.ViewOffset(), "entering alt screen resets view offset")
	g.ScrollViewUp(2)
	assert.Equal(t, 0, g.ViewOffset(), "view offset is inert on the alt screen")
}

func TestResizeDiscardsScrollback(t *testing.T) {
	g := NewGrid(4, 2, 10)
	for i := 0; i < 5; i++ {
		g.Newline()
	}
	require.Greater(t, g.HistorySize(), 0)
	g.Resize(6, 3)
	assert.Equal(t, 0, g.HistorySize())
	assert.Equal(t, 6, g.Cols)
	assert.Equal(t, 3, g.Rows)
}

func TestSelectionRoundTrip(t *testing.T) {
	g := NewGrid(5, 2, 10)
	for _, ch := range "hello" {
		g.PutChar(ch, DefaultFg(), DefaultBg(), 0)
	}
	g.SetSelection(0, 0, 4, 0)
	assert.True(t, g.HasSelection())
	assert.Equal(t, "hello", g.SelectedText())
	g.ClearSelection()
	assert.False(t, g.HasSelection())
	assert.Equal(t, "", g.SelectedText())
}

func TestClearToEndAndStart(t *testing.T) {
	g := NewGrid(3, 3, 10)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			g.SetCursorPos(col+1, row+1)
			g.PutChar('x', DefaultFg(), DefaultBg(), 0)
		}
	}
	g.SetCursorPos(2, 2)
	g.ClearToEnd()
	assert.Equal(t, 'x', g.GetCell(0, 0).Ch)
	assert.Equal(t, 'x', g.GetCell(0, 1).Ch)
	assert.Equal(t, ' ', g.GetCell(1, 1).Ch)
	assert.Equal(t, ' ', g.GetCell(0, 2).Ch)

	g2 := NewGrid(3, 3, 10)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			g2.SetCursorPos(col+1, row+1)
			g2.PutChar('x', DefaultFg(), DefaultBg(), 0)
		}
	}
	g2.SetCursorPos(2, 2)
	g2.ClearToStart()
	assert.Equal(t, ' ', g2.GetCell(0, 0).Ch)
	assert.Equal(t, ' ', g2.GetCell(0, 1).Ch)
	assert.Equal(t, 'x', g2.GetCell(2, 1).Ch)
	assert.Equal(t, 'x', g2.GetCell(0, 2).Ch)
}
