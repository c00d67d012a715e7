// Package vtparser turns bytes read from the PTY into mutations on a
// grid.Grid. Dispatch is delegated to github.com/danielgatis/go-ansicode
// (itself built on github.com/danielgatis/go-vte's VT500 state-machine
// table): Terminal implements ansicode.Handler and an ansicode.Decoder
// drives the CSI/OSC/ESC parsing, UTF-8 decoding, and parameter scanning
// that a hand-rolled byte switch would otherwise have to reimplement.
package vtparser

import (
	"sync"

	"github.com/danielgatis/go-ansicode"

	"github.com/javanhut/raventerm/internal/grid"
)

// Terminal owns the pen/charset/app-mode state ansicode's Handler
// interface doesn't itself track, and the grid it drives.
type Terminal struct {
	Grid *grid.Grid

	decoder *ansicode.Decoder

	mu sync.Mutex

	currentFg    grid.Color
	currentBg    grid.Color
	currentFlags grid.CellFlags

	appCursorKeys bool

	charsets      [4]ansicode.Charset
	activeCharset int

	lastWorkingDir string

	responseWriter func([]byte)
}

// NewTerminal allocates a parser bound to a freshly created grid.
func NewTerminal(cols, rows, scrollback int) *Terminal {
	t := &Terminal{
		Grid:      grid.NewGrid(cols, rows, scrollback),
		currentFg: grid.DefaultFg(),
		currentBg: grid.DefaultBg(),
	}
	t.decoder = ansicode.NewDecoder(t)
	return t
}

// SetResponseWriter installs the callback used to flush parser-generated
// responses (device attributes, cursor/window reports, dynamic-color
// queries) back to the PTY.
func (t *Terminal) SetResponseWriter(w func([]byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responseWriter = w
}

func (t *Terminal) writeResponse(b []byte) {
	t.mu.Lock()
	w := t.responseWriter
	t.mu.Unlock()
	if w != nil {
		w(b)
	}
}

// WorkingDir returns the last path reported via OSC 7, the shell's
// notion of its current directory.
func (t *Terminal) WorkingDir() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastWorkingDir
}

// Process feeds a chunk of PTY output through the decoder. The decoder
// calls back into Terminal's Handler methods synchronously, so no lock
// is held across this call: each Handler method takes t.mu itself for
// the slice of state it owns, the same per-method locking
// go-ansicode's own reference consumer uses since Grid already
// serializes its own mutations independently.
func (t *Terminal) Process(data []byte) {
	_, _ = t.decoder.Write(data)
}

// AppCursorKeys reports whether DECCKM (application cursor keys) is set.
func (t *Terminal) AppCursorKeys() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appCursorKeys
}

// Resize propagates a terminal resize to the grid.
func (t *Terminal) Resize(cols, rows int) {
	t.Grid.Resize(cols, rows)
}

// IsCursorVisible reports whether DECTCEM is currently enabled.
func (t *Terminal) IsCursorVisible() bool {
	return t.Grid.CursorVisible
}

// decSpecialGraphics maps the ASCII range 0x60-0x7e to VT100 line
// drawing glyphs when a G-slot is designated to the DEC special
// graphics charset. go-ansicode reports the designation (ConfigureCharset)
// and activation (SetActiveCharset) but, like go-vte generally, performs
// no substitution itself — that translation is this package's job, same
// as it was under the old hand-rolled state machine.
var decSpecialGraphics = map[rune]rune{
	'`': '◆', 'a': '▒', 'b': '␉', 'c': '␌',
	'd': '␍', 'e': '␊', 'f': '°', 'g': '±',
	'h': '␤', 'i': '␋', 'j': '┘', 'k': '┐',
	'l': '┌', 'm': '└', 'n': '┼', 'o': '⎺',
	'p': '⎻', 'q': '─', 'r': '⎼', 's': '⎽',
	't': '├', 'u': '┤', 'v': '┴', 'w': '┬',
	'x': '│', 'y': '≤', 'z': '≥', '{': 'π',
	'|': '≠', '}': '£', '~': '·',
}
