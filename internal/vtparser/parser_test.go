package vtparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javanhut/raventerm/internal/grid"
)

func TestANSIColorsScenario(t *testing.T) {
	term := NewTerminal(3, 1, 10)
	term.Process([]byte("\x1b[31mR\x1b[32mG\x1b[0mX"))

	r := term.Grid.GetCell(0, 0)
	assert.Equal(t, 'R', r.Ch)
	assert.Equal(t, grid.IndexedColor(1), r.Fg)

	g := term.Grid.GetCell(1, 0)
	assert.Equal(t, 'G', g.Ch)
	assert.Equal(t, grid.IndexedColor(2), g.Fg)

	x := term.Grid.GetCell(2, 0)
	assert.Equal(t, 'X', x.Ch)
	assert.Equal(t, grid.DefaultFg(), x.Fg)

	col, row := term.Grid.GetCursor()
	assert.Equal(t, 3, col)
	assert.Equal(t, 0, row)
}

func TestAutowrapScrollbackScenario(t *testing.T) {
	term := NewTerminal(5, 2, 10)
	term.Process([]byte("abcdef"))

	for col, ch := range "abcde" {
		assert.Equal(t, rune(ch), term.Grid.GetCell(col, 0).Ch)
	}
	assert.Equal(t, 'f', term.Grid.GetCell(0, 1).Ch)
	col, row := term.Grid.GetCursor()
	assert.Equal(t, 1, col)
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, term.Grid.HistorySize())

	term.Process([]byte("\n1\n2"))
	assert.GreaterOrEqual(t, term.Grid.HistorySize(), 1)
}

func TestSGRZeroResetsToFreshState(t *testing.T) {
	fresh := NewTerminal(3, 1, 10)
	withAttrs := NewTerminal(3, 1, 10)
	withAttrs.Process([]byte("\x1b[1;4;31;42m\x1b[0mZ"))
	fresh.Process([]byte("Z"))

	assert.Equal(t, fresh.Grid.GetCell(0, 0), withAttrs.Grid.GetCell(0, 0))
}

func TestUTF8BoundaryAcrossWrites(t *testing.T) {
	term := NewTerminal(5, 1, 10)
	// U+00E9 'é' = 0xC3 0xA9
	term.Process([]byte{0xC3})
	col, _ := term.Grid.GetCursor()
	require.Equal(t, 0, col, "incomplete sequence does not advance the cursor")

	term.Process([]byte{0xA9})
	assert.Equal(t, 'é', term.Grid.GetCell(0, 0).Ch)
}

func TestUTF8NonContinuationDiscardsPartial(t *testing.T) {
	term := NewTerminal(5, 1, 10)
	term.Process([]byte{0xC3, 'z'})
	assert.Equal(t, 'z', term.Grid.GetCell(0, 0).Ch)
}

func TestAutowrapDisabledParksCursorAtMargin(t *testing.T) {
	term := NewTerminal(3, 1, 10)
	term.Process([]byte("\x1b[?7l"))
	term.Process([]byte("abcdef"))
	col, _ := term.Grid.GetCursor()
	assert.Equal(t, 2, col)
	assert.Equal(t, 'f', term.Grid.GetCell(2, 0).Ch)
}

func TestApplicationCursorModePrivateMode(t *testing.T) {
	term := NewTerminal(10, 10, 10)
	assert.False(t, term.AppCursorKeys())
	term.Process([]byte("\x1b[?1h"))
	assert.True(t, term.AppCursorKeys())
	term.Process([]byte("\x1b[?1l"))
	assert.False(t, term.AppCursorKeys())
}

func TestDeviceAttributesResponse(t *testing.T) {
	term := NewTerminal(10, 10, 10)
	var got []byte
	term.SetResponseWriter(func(b []byte) { got = append(got, b...) })
	term.Process([]byte("\x1b[c"))
	assert.Equal(t, "\x1b[?1;2c", string(got))
}

func TestCursorPositionReport(t *testing.T) {
	term := NewTerminal(10, 10, 10)
	term.Grid.SetCursorPos(4, 3)
	var got []byte
	term.SetResponseWriter(func(b []byte) { got = append(got, b...) })
	term.Process([]byte("\x1b[6n"))
	assert.Equal(t, "\x1b[3;4R", string(got))
}

func TestWindowSizeReport(t *testing.T) {
	term := NewTerminal(80, 24, 10)
	var got []byte
	term.SetResponseWriter(func(b []byte) { got = append(got, b...) })
	term.Process([]byte("\x1b[18t"))
	assert.Equal(t, "\x1b[8;24;80t", string(got))
}

func TestDECSCUSRSetsCursorStyle(t *testing.T) {
	term := NewTerminal(10, 10, 10)
	term.Process([]byte("\x1b[3 q"))
	assert.Equal(t, grid.CursorUnderline, term.Grid.CursorStyleVal)
	assert.True(t, term.Grid.CursorBlink)
}

func TestDCSContentDiscardedUntilEscape(t *testing.T) {
	term := NewTerminal(10, 1, 10)
	term.Process([]byte("\x1bPsome garbage that is not CSI\x1b\\X"))
	assert.Equal(t, 'X', term.Grid.GetCell(0, 0).Ch)
}

func TestResetRestoresFreshState(t *testing.T) {
	term := NewTerminal(4, 2, 10)
	term.Process([]byte("\x1b[31mhi"))
	term.Process([]byte("\x1bc"))
	fresh := NewTerminal(4, 2, 10)
	assert.Equal(t, fresh.Grid.GetCell(0, 0), term.Grid.GetCell(0, 0))
	col, row := term.Grid.GetCursor()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
}

func TestAltScreenRestoresCursor(t *testing.T) {
	term := NewTerminal(10, 10, 10)
	term.Grid.SetCursorPos(5, 5)
	term.Process([]byte("\x1b[?1049h"))
	term.Process([]byte("\x1b[?1049l"))
	col, row := term.Grid.GetCursor()
	assert.Equal(t, 4, col)
	assert.Equal(t, 4, row)
}

func TestOSC4SetsIndexedPaletteColor(t *testing.T) {
	term := NewTerminal(5, 1, 10)
	term.Process([]byte("\x1b]4;1;#112233\x07"))
	assert.Equal(t, grid.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}, term.Grid.Palette().Indexed(1))
}

func TestOSC7RecordsWorkingDirectory(t *testing.T) {
	term := NewTerminal(5, 1, 10)
	term.Process([]byte("\x1b]7;file:///home/user/project\x07"))
	assert.Equal(t, "/home/user/project", term.WorkingDir())
}

func TestCharsetSpecialGraphicsSubstitution(t *testing.T) {
	term := NewTerminal(5, 1, 10)
	term.Process([]byte("\x1b(0"))
	term.Process([]byte("q"))
	assert.Equal(t, '─', term.Grid.GetCell(0, 0).Ch)
}
