package osk

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/javanhut/raventerm/internal/keymap"
)

// ParseKeySetFile reads a .keys special-key-set file: an optional
// `name=...`/`mask=...` header line, then one key per line as
// `display:value`, where a literal `:` inside a field is written
// `\:`. The display label is cosmetic (the Renderer collaborator's
// concern); this parser keeps only what drives emission. Recognized
// value forms:
//
//	SEQ:NAME          -> Sequence key for the named keycode
//	MACRO:body        -> Macro key, body scanned at emission time
//	CMD_*             -> InternalCommand
//	LOAD_FILE:path    -> LoadSet, path is everything after the prefix
//	UNLOAD_FILE:name  -> UnloadSet, name is everything after the prefix
//	anything else     -> Literal key, value is the literal text
//
// Grounded on the teacher's config/themes.go line-oriented parser,
// generalized from its single `key=value` grammar to this format's
// prefixed value descriptors.
func ParseKeySetFile(path string) (string, keymap.Mods, []KeyDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var mask keymap.Mods
	var keys []KeyDescriptor

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "name=") {
			name = strings.TrimPrefix(line, "name=")
			continue
		}
		if strings.HasPrefix(line, "mask=") {
			m, err := parseMaskName(strings.TrimPrefix(line, "mask="))
			if err != nil {
				return "", 0, nil, err
			}
			mask = m
			continue
		}
		_, value, ok := splitEscapedPair(line, ':')
		if !ok {
			return "", 0, nil, fmt.Errorf("osk: malformed key-set line %q", line)
		}
		key, err := parseKeySetValue(value)
		if err != nil {
			return "", 0, nil, err
		}
		keys = append(keys, key)
	}
	if err := scanner.Err(); err != nil {
		return "", 0, nil, err
	}
	return name, mask, keys, nil
}

func parseKeySetValue(value string) (KeyDescriptor, error) {
	switch {
	case strings.HasPrefix(value, "SEQ:"):
		name := strings.TrimPrefix(value, "SEQ:")
		sym, ok := tokenSyms[name]
		if !ok {
			return KeyDescriptor{}, fmt.Errorf("osk: unknown keycode name %q", name)
		}
		return KeyDescriptor{Kind: DescSequence, Sym: sym}, nil
	case strings.HasPrefix(value, "MACRO:"):
		return KeyDescriptor{Kind: DescMacro, Text: strings.TrimPrefix(value, "MACRO:")}, nil
	case strings.HasPrefix(value, "LOAD_FILE:"):
		return KeyDescriptor{Kind: DescLoadSet, Text: unescapeColon(strings.TrimPrefix(value, "LOAD_FILE:"))}, nil
	case strings.HasPrefix(value, "UNLOAD_FILE:"):
		return KeyDescriptor{Kind: DescUnloadSet, Text: unescapeColon(strings.TrimPrefix(value, "UNLOAD_FILE:"))}, nil
	case strings.HasPrefix(value, "CMD_"):
		return KeyDescriptor{Kind: DescInternalCommand, Text: value}, nil
	default:
		return KeyDescriptor{Kind: DescLiteral, Text: unescapeColon(value)}, nil
	}
}

// splitEscapedPair splits s into exactly two fields on the first
// unescaped sep, returning ok=false if sep never appears unescaped.
// Everything after the first unescaped sep — including further
// unescaped seps — belongs to the second field, so value descriptors
// like `SEQ:HOME` or `LOAD_FILE:other:set` survive intact.
func splitEscapedPair(s string, sep byte) (first, second string, ok bool) {
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == sep {
			cur.WriteByte(sep)
			i++
			continue
		}
		if s[i] == sep {
			return cur.String(), s[i+1:], true
		}
		cur.WriteByte(s[i])
	}
	return "", "", false
}

func unescapeColon(s string) string {
	return strings.ReplaceAll(s, `\:`, ":")
}
