package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/javanhut/raventerm/internal/grid"
)

// LoadTheme parses a color-scheme file ("name=#RRGGBB" lines,
// "#"-prefixed comments, recognized keys foreground/background/cursor
// and color0..color15) and applies it to a freshly built palette.
// Missing or unrecognized keys keep the palette's built-in defaults.
func LoadTheme(path string) (*grid.Palette, error) {
	p := grid.NewPalette()
	if path == "" {
		return p, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		rgba, ok := parseHexColor(value)
		if !ok {
			continue
		}
		applyThemeKey(p, key, rgba)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func applyThemeKey(p *grid.Palette, key string, c grid.RGBA) {
	switch key {
	case "foreground":
		p.DefaultFg = c
	case "background":
		p.DefaultBg = c
	case "cursor":
		p.CursorColor = c
	default:
		if strings.HasPrefix(key, "color") {
			n, err := strconv.Atoi(strings.TrimPrefix(key, "color"))
			if err == nil && n >= 0 && n <= 15 {
				p.SetIndexed(uint8(n), c)
			}
		}
	}
}

func parseHexColor(s string) (grid.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return grid.RGBA{}, false
	}
	r, err1 := strconv.ParseUint(s[0:2], 16, 8)
	g, err2 := strconv.ParseUint(s[2:4], 16, 8)
	b, err3 := strconv.ParseUint(s[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return grid.RGBA{}, false
	}
	return grid.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, true
}
