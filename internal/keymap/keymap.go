// Package keymap translates a logical key event into the byte
// sequence a PTY expects, independent of any particular windowing
// toolkit's keycode space.
package keymap

// Sym is a logical key identifier: a letter, digit, or named special
// key. It deliberately does not depend on any specific host-toolkit
// keycode enumeration.
type Sym int

const (
	SymNone Sym = iota
	SymA
	SymB
	SymC
	SymD
	SymE
	SymF
	SymG
	SymH
	SymI
	SymJ
	SymK
	SymL
	SymM
	SymN
	SymO
	SymP
	SymQ
	SymR
	SymS
	SymT
	SymU
	SymV
	SymW
	SymX
	SymY
	SymZ
	SymDigit0
	SymDigit1
	SymDigit2
	SymDigit3
	SymDigit4
	SymDigit5
	SymDigit6
	SymDigit7
	SymDigit8
	SymDigit9
	SymUp
	SymDown
	SymLeft
	SymRight
	SymHome
	SymEnd
	SymPageUp
	SymPageDown
	SymInsert
	SymDelete
	SymEnter
	SymBackspace
	SymTab
	SymEscape
	SymSpace
	SymF1
	SymF2
	SymF3
	SymF4
	SymF5
	SymF6
	SymF7
	SymF8
	SymF9
	SymF10
	SymF11
	SymF12
	SymPrintScreen
	SymScrollLock
	SymPause
)

// Mods is a bitset over the four modifier keys.
type Mods uint8

const (
	ModCtrl Mods = 1 << iota
	ModAlt
	ModShift
	ModGui
)

func (m Mods) has(x Mods) bool { return m&x != 0 }

// TermMode is the subset of live terminal state the encoder needs to
// pick between alternate byte sequences (e.g. application cursor keys).
type TermMode struct {
	AppCursorKeys bool
}

var letterSyms = map[Sym]byte{
	SymA: 'a', SymB: 'b', SymC: 'c', SymD: 'd', SymE: 'e', SymF: 'f',
	SymG: 'g', SymH: 'h', SymI: 'i', SymJ: 'j', SymK: 'k', SymL: 'l',
	SymM: 'm', SymN: 'n', SymO: 'o', SymP: 'p', SymQ: 'q', SymR: 'r',
	SymS: 's', SymT: 't', SymU: 'u', SymV: 'v', SymW: 'w', SymX: 'x',
	SymY: 'y', SymZ: 'z',
}

var digitSyms = map[Sym]byte{
	SymDigit0: '0', SymDigit1: '1', SymDigit2: '2', SymDigit3: '3',
	SymDigit4: '4', SymDigit5: '5', SymDigit6: '6', SymDigit7: '7',
	SymDigit8: '8', SymDigit9: '9',
}

// ctrlNavLiterals are the fixed escape sequences Ctrl+{arrow,letter}
// combinations send, per spec.md §4.C step 3.
var ctrlNavLiterals = map[Sym]string{
	SymUp:    "\x1b[1;5A",
	SymDown:  "\x1b[1;5B",
	SymRight: "\x1b[1;5C",
	SymLeft:  "\x1b[1;5D",
	SymC:     "\x03",
	SymD:     "\x04",
	SymZ:     "\x1a",
	SymL:     "\x0c",
	SymU:     "\x15",
	SymK:     "\x0b",
	SymW:     "\x17",
	SymA:     "\x01",
	SymE:     "\x05",
}

var fKeySeqs = map[Sym]string{
	SymF1:  "\x1bOP",
	SymF2:  "\x1bOQ",
	SymF3:  "\x1bOR",
	SymF4:  "\x1bOS",
	SymF5:  "\x1b[15~",
	SymF6:  "\x1b[17~",
	SymF7:  "\x1b[18~",
	SymF8:  "\x1b[19~",
	SymF9:  "\x1b[20~",
	SymF10: "\x1b[21~",
	SymF11: "\x1b[23~",
	SymF12: "\x1b[24~",
}

// Encode maps a logical key event to the byte sequence to write to the
// PTY, following spec.md §4.C's eight-step precedence table; an empty
// result means the event produces no PTY output on its own (e.g.
// SymNone or a key with no mapping).
func Encode(sym Sym, mods Mods, mode TermMode) []byte {
	ctrl, alt, shift := mods.has(ModCtrl), mods.has(ModAlt), mods.has(ModShift)

	// 1. Ctrl + letter -> C0 control.
	if ctrl && !alt {
		if ch, ok := letterSyms[sym]; ok {
			return []byte{ch - 'a' + 1}
		}
	}

	// 2. Ctrl + Space -> NUL.
	if ctrl && sym == SymSpace {
		return []byte{0x00}
	}

	// 3. Ctrl + {arrow, C, D, Z, L, U, K, W, A, E} -> fixed literal.
	if ctrl && !alt {
		if seq, ok := ctrlNavLiterals[sym]; ok {
			return []byte(seq)
		}
	}

	// 4. Alt + printable/digit -> ESC then the character.
	if alt && !ctrl {
		if ch, ok := letterSyms[sym]; ok {
			if shift {
				ch -= 'a' - 'A'
			}
			return []byte{0x1b, ch}
		}
		if ch, ok := digitSyms[sym]; ok {
			return []byte{0x1b, ch}
		}
	}

	// 5. Alt + Backspace/f/b -> fixed literal.
	if alt && !ctrl {
		switch sym {
		case SymBackspace:
			return []byte{0x1b, 0x7f}
		case SymF:
			return []byte("\x1bf")
		case SymB:
			return []byte("\x1bb")
		}
	}

	// 6. Arrow/Home/End honor application-cursor-keys mode.
	if seq, ok := arrowOrEdgeSeq(sym, mode.AppCursorKeys); ok {
		return []byte(seq)
	}

	// 7. Standard special keys.
	switch sym {
	case SymEnter:
		return []byte{'\r'}
	case SymBackspace:
		return []byte{0x7f}
	case SymTab:
		if shift {
			return []byte("\x1b[Z")
		}
		return []byte{'\t'}
	case SymEscape:
		return []byte{0x1b}
	case SymPageUp:
		return []byte("\x1b[5~")
	case SymPageDown:
		return []byte("\x1b[6~")
	case SymInsert:
		return []byte("\x1b[2~")
	case SymDelete:
		return []byte("\x1b[3~")
	}
	if seq, ok := fKeySeqs[sym]; ok {
		return []byte(seq)
	}

	// 8. Printable ASCII.
	if ch, ok := letterSyms[sym]; ok {
		if shift {
			ch -= 'a' - 'A'
		}
		return []byte{ch}
	}
	if ch, ok := digitSyms[sym]; ok {
		return []byte{ch}
	}
	if sym == SymSpace {
		return []byte{' '}
	}

	return nil
}

func arrowOrEdgeSeq(sym Sym, appCursor bool) (string, bool) {
	prefix := "\x1b["
	if appCursor {
		prefix = "\x1bO"
	}
	switch sym {
	case SymUp:
		return prefix + "A", true
	case SymDown:
		return prefix + "B", true
	case SymRight:
		return prefix + "C", true
	case SymLeft:
		return prefix + "D", true
	case SymHome:
		return prefix + "H", true
	case SymEnd:
		return prefix + "F", true
	}
	return "", false
}

// EncodeText implements the printable-from-OS-event path: when the
// host has already delivered composed text (as opposed to a raw key
// event), its bytes are written verbatim, with Alt still producing an
// ESC-prefixed sequence.
func EncodeText(r rune, alt bool) []byte {
	buf := make([]byte, 0, 5)
	if alt {
		buf = append(buf, 0x1b)
	}
	return appendUTF8(buf, r)
}

func appendUTF8(buf []byte, r rune) []byte {
	switch {
	case r < 0x80:
		return append(buf, byte(r))
	case r < 0x800:
		return append(buf, byte(0xC0|(r>>6)), byte(0x80|(r&0x3F)))
	case r < 0x10000:
		return append(buf, byte(0xE0|(r>>12)), byte(0x80|((r>>6)&0x3F)), byte(0x80|(r&0x3F)))
	default:
		return append(buf, byte(0xF0|(r>>18)), byte(0x80|((r>>12)&0x3F)), byte(0x80|((r>>6)&0x3F)), byte(0x80|(r&0x3F)))
	}
}
