package osk

import (
	"strings"

	"github.com/javanhut/raventerm/internal/keymap"
)

// tokenSyms maps a macro/.kb {TOKEN} name to the keycode it stands for.
var tokenSyms = map[string]keymap.Sym{
	"ENTER":     keymap.SymEnter,
	"TAB":       keymap.SymTab,
	"SPACE":     keymap.SymSpace,
	"BS":        keymap.SymBackspace,
	"BACKSPACE": keymap.SymBackspace,
	"DEL":       keymap.SymDelete,
	"ESC":       keymap.SymEscape,
	"UP":        keymap.SymUp,
	"DOWN":      keymap.SymDown,
	"LEFT":      keymap.SymLeft,
	"RIGHT":     keymap.SymRight,
	"HOME":      keymap.SymHome,
	"END":       keymap.SymEnd,
	"PGUP":      keymap.SymPageUp,
	"PGDN":      keymap.SymPageDown,
	"INS":       keymap.SymInsert,
	"F1":        keymap.SymF1,
	"F2":        keymap.SymF2,
	"F3":        keymap.SymF3,
	"F4":        keymap.SymF4,
	"F5":        keymap.SymF5,
	"F6":        keymap.SymF6,
	"F7":        keymap.SymF7,
	"F8":        keymap.SymF8,
	"F9":        keymap.SymF9,
	"F10":       keymap.SymF10,
	"F11":       keymap.SymF11,
	"F12":       keymap.SymF12,
}

// tokenMods maps a macro/.kb {TOKEN} name that toggles a one-shot
// modifier rather than emitting a keycode.
var tokenMods = map[string]keymap.Mods{
	"SHIFT": keymap.ModShift,
	"CTRL":  keymap.ModCtrl,
	"ALT":   keymap.ModAlt,
	"GUI":   keymap.ModGui,
}

// scanTokens splits s into a sequence of literal runs and {TOKEN}
// names, honoring \{ as an escaped literal brace.
func scanTokens(s string) (literals []string, tokens []string, order []bool) {
	var cur strings.Builder
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '\\' && i+1 < len(s) && (s[i+1] == '{' || s[i+1] == '}'):
			cur.WriteByte(s[i+1])
			i += 2
		case s[i] == '{':
			if cur.Len() > 0 {
				literals = append(literals, cur.String())
				order = append(order, false)
				cur.Reset()
			}
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				cur.WriteByte(s[i])
				i++
				continue
			}
			tok := s[i+1 : i+end]
			tokens = append(tokens, tok)
			order = append(order, true)
			i += end + 1
		default:
			cur.WriteByte(s[i])
			i++
		}
	}
	if cur.Len() > 0 {
		literals = append(literals, cur.String())
		order = append(order, false)
	}
	return literals, tokens, order
}

// expandMacroLocked walks a macro body left to right, emitting literal
// bytes directly and tokens either as a modifier toggle (consumed
// immediately, affecting subsequent tokens in the same macro) or as an
// encoded keycode. Reports whether any Sequence token fired, so the
// caller knows whether to clear one-shot modifiers afterward.
func (m *Model) expandMacroLocked(body string) ([]byte, bool) {
	var out []byte
	sawSequence := false

	litIdx, tokIdx := 0, 0
	literals, tokens, order := scanTokens(body)
	for _, isToken := range order {
		if isToken {
			tok := tokens[tokIdx]
			tokIdx++
			if bit, ok := tokenMods[tok]; ok {
				m.oneShot ^= bit
				continue
			}
			if sym, ok := tokenSyms[tok]; ok {
				effective := m.effectiveModifiersLocked()
				out = append(out, keymap.Encode(sym, effective, m.termMode)...)
				sawSequence = true
				continue
			}
			// Unknown token: pass through literally, braces and all.
			out = append(out, '{')
			out = append(out, tok...)
			out = append(out, '}')
		} else {
			out = append(out, literals[litIdx]...)
			litIdx++
		}
	}
	return out, sawSequence
}
