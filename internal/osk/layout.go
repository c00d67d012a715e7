package osk

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/javanhut/raventerm/internal/keymap"
)

// ParseLayoutFile reads a .kb layout file: `[mask]` section headers
// naming a modifier combination (e.g. `[base]`, `[shift]`,
// `[ctrl+alt]`), followed by one row per line until the next header.
// Each row is whitespace-separated tokens: a bare rune is a Literal
// key, `{NAME}` is a Sequence keycode or the `{N/A}`/`{DEFAULT}`
// sentinels, and `\X` escapes a literal that would otherwise be
// treated as whitespace or brace syntax. A line that is exactly
// `{DEFAULT}` marks the whole row as the DEFAULT fallback.
// Grounded on the teacher's config/themes.go bufio.Scanner line parser.
func ParseLayoutFile(path string) (map[keymap.Mods][]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	layers := make(map[keymap.Mods][]Row)
	var curMask keymap.Mods
	haveSection := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			mask, err := parseMaskName(trimmed[1 : len(trimmed)-1])
			if err != nil {
				return nil, err
			}
			curMask = mask
			haveSection = true
			continue
		}
		if !haveSection {
			return nil, fmt.Errorf("osk: layout row before any [mask] section: %q", line)
		}
		row, err := parseRow(trimmed)
		if err != nil {
			return nil, err
		}
		layers[curMask] = append(layers[curMask], row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return layers, nil
}

func parseMaskName(name string) (keymap.Mods, error) {
	if name == "base" {
		return 0, nil
	}
	var mask keymap.Mods
	for _, part := range strings.Split(name, "+") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "shift":
			mask |= keymap.ModShift
		case "ctrl", "control":
			mask |= keymap.ModCtrl
		case "alt":
			mask |= keymap.ModAlt
		case "gui", "super", "meta":
			mask |= keymap.ModGui
		default:
			return 0, fmt.Errorf("osk: unknown modifier name %q", part)
		}
	}
	return mask, nil
}

func parseRow(line string) (Row, error) {
	if line == "{DEFAULT}" {
		return DefaultRow, nil
	}
	tokens := tokenizeRow(line)
	keys := make([]KeyDescriptor, 0, len(tokens))
	for _, tok := range tokens {
		key, err := parseKeyToken(tok)
		if err != nil {
			return Row{}, err
		}
		keys = append(keys, key)
	}
	return Row{Keys: keys}, nil
}

// tokenizeRow splits a row on whitespace, but keeps a `{...}` group
// and a `\X` escape intact even if they would otherwise straddle a
// split point (they never contain unescaped whitespace in practice,
// so a plain Fields-like scan with brace-awareness suffices).
func tokenizeRow(line string) []string {
	var tokens []string
	var cur strings.Builder
	inBrace := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			cur.WriteByte(c)
			cur.WriteByte(line[i+1])
			i += 2
		case c == '{':
			inBrace = true
			cur.WriteByte(c)
			i++
		case c == '}':
			inBrace = false
			cur.WriteByte(c)
			i++
		case (c == ' ' || c == '\t') && !inBrace:
			flush()
			i++
		default:
			cur.WriteByte(c)
			i++
		}
	}
	flush()
	return tokens
}

func parseKeyToken(tok string) (KeyDescriptor, error) {
	if strings.HasPrefix(tok, "\\") && len(tok) >= 2 {
		return KeyDescriptor{Kind: DescLiteral, Text: tok[1:]}, nil
	}
	if strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}") {
		name := tok[1 : len(tok)-1]
		switch name {
		case "N/A":
			return NAKey, nil
		case "DEFAULT":
			return KeyDescriptor{Kind: DescNA}, fmt.Errorf("osk: {DEFAULT} only valid as a whole row")
		}
		if sym, ok := tokenSyms[name]; ok {
			return KeyDescriptor{Kind: DescSequence, Sym: sym}, nil
		}
		if bit, ok := tokenMods[name]; ok {
			return KeyDescriptor{Kind: DescModToggle, Mods: bit}, nil
		}
		if strings.HasPrefix(name, "MACRO:") {
			return KeyDescriptor{Kind: DescMacro, Text: name[len("MACRO:"):]}, nil
		}
		if strings.HasPrefix(name, "CMD_") {
			return KeyDescriptor{Kind: DescInternalCommand, Text: name}, nil
		}
		if n, err := strconv.Unquote(`"` + name + `"`); err == nil && n != "" {
			return KeyDescriptor{Kind: DescLiteral, Text: n}, nil
		}
		return KeyDescriptor{}, fmt.Errorf("osk: unrecognized key token %q", tok)
	}
	return KeyDescriptor{Kind: DescLiteral, Text: tok}, nil
}
