// Package dispatch routes logical input events — keys, scroll wheel,
// OSK button presses, exit combos — to the terminal core, independent
// of any windowing toolkit. Grounded on the teacher's main.go callback
// switchyard: one big action-routing switch fed by keybindings.TranslateKey,
// generalized here into a standalone, testable Dispatcher.
package dispatch

import (
	"time"

	"github.com/javanhut/raventerm/internal/grid"
	"github.com/javanhut/raventerm/internal/keymap"
	"github.com/javanhut/raventerm/internal/osk"
)

// Scroll amounts, grounded on the teacher's main.go: a keyboard
// page-scroll moves 5 lines, a keyboard line-scroll moves 1, and the
// mouse wheel moves 3 lines per notch regardless of its magnitude.
const (
	ScrollKeyPageLines = 5
	ScrollKeyLineLines = 1
	ScrollWheelLines   = 3
)

// Button-repeat timing for a held OSK navigation button: an initial
// delay before the first repeat, then a fixed interval between
// further repeats, grounded on the host toolkit's own key-repeat feel
// (the teacher lets GLFW's native glfw.Repeat drive terminal keys; the
// OSK has no such native repeat source, so Dispatcher supplies one).
const (
	RepeatInitialDelay = 250 * time.Millisecond
	RepeatInterval     = 75 * time.Millisecond
)

// OSKMode is the OSK's on-screen display state: hidden, or showing one
// of the two input modes.
type OSKMode int

const (
	OSKOff OSKMode = iota
	OSKChars
	OSKSpecial
)

// Writer sends bytes to the PTY; satisfied by *session.Session.Write.
type Writer func([]byte) error

// Dispatcher owns no terminal state itself — it reads/writes the Grid
// and OSK model it's given and writes PTY bytes through Writer.
type Dispatcher struct {
	write Writer
	grid  *grid.Grid
	osk   *osk.Model

	oskMode OSKMode

	backHeld  bool
	startHeld bool
}

// Button identifies one of the two designated buttons the exit combo
// watches, independent of whatever physical key or OSK control the
// embedder maps to it.
type Button int

const (
	ButtonBack Button = iota
	ButtonStart
)

// HandleButton reports a press or release of one of the exit-combo
// buttons and returns whether both are now held simultaneously,
// spec.md §4.E's shutdown request. The embedder is responsible for
// acting on a true result (e.g. tearing down the session); Dispatcher
// itself has no shutdown side effect, matching the rest of its
// routing-only contract.
func (d *Dispatcher) HandleButton(btn Button, pressed bool) (shutdown bool) {
	switch btn {
	case ButtonBack:
		d.backHeld = pressed
	case ButtonStart:
		d.startHeld = pressed
	}
	return d.backHeld && d.startHeld
}

// New returns a Dispatcher wired to a PTY writer, the live grid (for
// scrollback navigation and selection), and an OSK model (may be nil
// if the embedder never enables the on-screen keyboard).
func New(write Writer, g *grid.Grid, oskModel *osk.Model) *Dispatcher {
	return &Dispatcher{write: write, grid: g, osk: oskModel}
}

// HandleKey encodes a physical key event and, unless the OSK is
// currently showing (Chars/Special mode steals the keyboard for its
// own navigation — see HandleOSKNav), writes the result to the PTY.
func (d *Dispatcher) HandleKey(sym keymap.Sym, mods keymap.Mods, termMode keymap.TermMode) error {
	if d.oskMode != OSKOff {
		return nil
	}
	out := keymap.Encode(sym, mods, termMode)
	if len(out) == 0 {
		return nil
	}
	if d.grid != nil {
		d.grid.ResetScrollOffset()
	}
	return d.write(out)
}

// HandleText writes OS-composed text input (e.g. an IME commit)
// straight to the PTY, bypassing key-event encoding.
func (d *Dispatcher) HandleText(r rune, alt bool) error {
	if d.oskMode != OSKOff {
		return nil
	}
	if d.grid != nil {
		d.grid.ResetScrollOffset()
	}
	return d.write(keymap.EncodeText(r, alt))
}

// HandleScrollKey moves the scrollback view in response to a
// keyboard scroll shortcut (PageUp/PageDown vs a single-line binding).
func (d *Dispatcher) HandleScrollKey(up, page bool) {
	if d.grid == nil {
		return
	}
	n := ScrollKeyLineLines
	if page {
		n = ScrollKeyPageLines
	}
	if up {
		d.grid.ScrollViewUp(n)
	} else {
		d.grid.ScrollViewDown(n)
	}
}

// HandleWheel moves the scrollback view in response to a mouse wheel
// notch; direction only, magnitude is fixed at ScrollWheelLines.
func (d *Dispatcher) HandleWheel(yoff float64) {
	if d.grid == nil || yoff == 0 {
		return
	}
	if yoff > 0 {
		d.grid.ScrollViewUp(ScrollWheelLines)
	} else {
		d.grid.ScrollViewDown(ScrollWheelLines)
	}
}

// Copy returns the text to place on the clipboard: the active
// selection if one exists, otherwise the whole visible screen.
func (d *Dispatcher) Copy() string {
	if d.grid == nil {
		return ""
	}
	if text := d.grid.SelectedText(); text != "" {
		return text
	}
	return d.grid.VisibleText()
}

// Paste writes clipboard text to the PTY, normalizing line endings to
// the carriage returns a terminal expects and resetting any
// scrollback view so the pasted output is visible as it streams in.
func (d *Dispatcher) Paste(clip string) error {
	if clip == "" {
		return nil
	}
	normalized := normalizeLineEndings(clip)
	if d.grid != nil {
		d.grid.ResetScrollOffset()
	}
	return d.write([]byte(normalized))
}

func normalizeLineEndings(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n':
			out = append(out, '\r')
			i++
		case s[i] == '\n':
			out = append(out, '\r')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// OSKMode reports the OSK's current display state.
func (d *Dispatcher) OSKMode() OSKMode {
	return d.oskMode
}

// CycleOSKMode advances Off -> Chars -> Special -> Off, the toggle
// order an on-screen keyboard button (or its keyboard shortcut) steps
// through on each press.
func (d *Dispatcher) CycleOSKMode() OSKMode {
	switch d.oskMode {
	case OSKOff:
		d.oskMode = OSKChars
	case OSKChars:
		d.oskMode = OSKSpecial
	case OSKSpecial:
		d.oskMode = OSKOff
	}
	if d.osk != nil {
		if d.oskMode == OSKChars {
			d.osk.SetMode(osk.ModeChars)
		} else if d.oskMode == OSKSpecial {
			d.osk.SetMode(osk.ModeSpecial)
		}
	}
	return d.oskMode
}

// HandleOSKNav routes a navigation direction to the OSK model's
// Chars- or Special-mode cursor movement, a no-op if the OSK is off.
func (d *Dispatcher) HandleOSKNav(dir NavDir) {
	if d.osk == nil || d.oskMode == OSKOff {
		return
	}
	switch d.oskMode {
	case OSKChars:
		switch dir {
		case NavUp:
			d.osk.MoveRow(-1)
		case NavDown:
			d.osk.MoveRow(1)
		case NavLeft:
			d.osk.MoveChar(-1)
		case NavRight:
			d.osk.MoveChar(1)
		}
	case OSKSpecial:
		switch dir {
		case NavUp:
			d.osk.MoveSpecialSet(-1)
		case NavDown:
			d.osk.MoveSpecialSet(1)
		case NavLeft:
			d.osk.MoveSpecialKey(-1)
		case NavRight:
			d.osk.MoveSpecialKey(1)
		}
	}
}

// NavDir is a logical OSK navigation direction.
type NavDir int

const (
	NavUp NavDir = iota
	NavDown
	NavLeft
	NavRight
)

// HandleOSKSelect emits the OSK's current highlighted key and, for an
// InternalCommand result, reports the command tag for the embedder to
// execute (cursor style, font size, reset — none of which the core
// OSK model can perform on its own, as it has no renderer reference).
func (d *Dispatcher) HandleOSKSelect() (command string, err error) {
	if d.osk == nil || d.oskMode == OSKOff {
		return "", nil
	}
	res := d.osk.Select()
	if len(res.Bytes) > 0 {
		if d.grid != nil {
			d.grid.ResetScrollOffset()
		}
		if err := d.write(res.Bytes); err != nil {
			return "", err
		}
	}
	return res.Command, nil
}

// HandleOSKBackspace/Space/Tab/Enter synthesize the corresponding
// keyboard event through the OSK's own modifier composition, for the
// fixed navigation buttons spec.md's OSK bar always shows.
func (d *Dispatcher) HandleOSKBackspace() error { return d.emitOSKNavKey(keymap.SymBackspace) }
func (d *Dispatcher) HandleOSKSpace() error     { return d.emitOSKNavKey(keymap.SymSpace) }
func (d *Dispatcher) HandleOSKTab() error       { return d.emitOSKNavKey(keymap.SymTab) }
func (d *Dispatcher) HandleOSKEnter() error     { return d.emitOSKNavKey(keymap.SymEnter) }

func (d *Dispatcher) emitOSKNavKey(sym keymap.Sym) error {
	if d.osk == nil || d.oskMode == OSKOff {
		return nil
	}
	out := d.osk.EmitNavigationKey(sym)
	if len(out) == 0 {
		return nil
	}
	if d.grid != nil {
		d.grid.ResetScrollOffset()
	}
	return d.write(out)
}
