package grid

// ColorKind identifies how a Color's channels should be interpreted.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed
	ColorRGB
)

// Color is a terminal color: either "use the pane default", a palette
// index (0-255), or a direct RGB triple.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// DefaultFg returns the sentinel "use the palette default foreground" color.
func DefaultFg() Color { return Color{Kind: ColorDefault} }

// DefaultBg returns the sentinel "use the palette default background" color.
func DefaultBg() Color { return Color{Kind: ColorDefault} }

// IndexedColor builds a palette-index color (0-15 ANSI, 16-231 cube, 232-255 grayscale).
func IndexedColor(index uint8) Color { return Color{Kind: ColorIndexed, Index: index} }

// RGBColor builds a direct 24-bit color.
func RGBColor(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// RGBA is an 8-bit-per-channel color, the resolved form Color values map to.
type RGBA struct {
	R, G, B, A uint8
}

// Palette holds the 16 ANSI colors, the 240 derived xterm colors (6x6x6
// cube + 24 grayscales), and the default foreground/background/cursor
// colors. It is loaded once from a color-scheme file and can be
// overridden at runtime by OSC 4.
type Palette struct {
	ansi        [256]RGBA
	DefaultFg   RGBA
	DefaultBg   RGBA
	CursorColor RGBA
}

// NewPalette returns a palette pre-populated with the standard xterm
// 256-color cube, the classic ANSI 16 as overridable entries 0-15, and
// sane default fg/bg/cursor colors.
func NewPalette() *Palette {
	p := &Palette{
		DefaultFg:   RGBA{0xe0, 0xe0, 0xe0, 0xff},
		DefaultBg:   RGBA{0x10, 0x10, 0x10, 0xff},
		CursorColor: RGBA{0xff, 0xff, 0xff, 0xff},
	}
	p.resetAnsi16()
	p.buildCube()
	p.buildGrayscale()
	return p
}

var ansi16 = [16]RGBA{
	{0x00, 0x00, 0x00, 0xff}, {0xcd, 0x00, 0x00, 0xff},
	{0x00, 0xcd, 0x00, 0xff}, {0xcd, 0xcd, 0x00, 0xff},
	{0x00, 0x00, 0xee, 0xff}, {0xcd, 0x00, 0xcd, 0xff},
	{0x00, 0xcd, 0xcd, 0xff}, {0xe5, 0xe5, 0xe5, 0xff},
	{0x7f, 0x7f, 0x7f, 0xff}, {0xff, 0x00, 0x00, 0xff},
	{0x00, 0xff, 0x00, 0xff}, {0xff, 0xff, 0x00, 0xff},
	{0x5c, 0x5c, 0xff, 0xff}, {0xff, 0x00, 0xff, 0xff},
	{0x00, 0xff, 0xff, 0xff}, {0xff, 0xff, 0xff, 0xff},
}

func (p *Palette) resetAnsi16() {
	for i, c := range ansi16 {
		p.ansi[i] = c
	}
}

func (p *Palette) buildCube() {
	steps := [6]uint8{0x00, 0x5f, 0x87, 0xaf, 0xd7, 0xff}
	idx := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.ansi[idx] = RGBA{steps[r], steps[g], steps[b], 0xff}
				idx++
			}
		}
	}
}

func (p *Palette) buildGrayscale() {
	idx := 232
	for i := 0; i < 24; i++ {
		v := uint8(8 + i*10)
		p.ansi[idx] = RGBA{v, v, v, 0xff}
		idx++
	}
}

// SetIndexed overrides one of the 256 palette slots (OSC 4).
func (p *Palette) SetIndexed(index uint8, c RGBA) {
	p.ansi[index] = c
}

// Indexed returns the resolved color for a palette index.
func (p *Palette) Indexed(index uint8) RGBA {
	return p.ansi[index]
}

// ResetIndexed restores a single palette slot (OSC 104) to its default
// ANSI-16/cube/grayscale value, undoing any OSC 4 override.
func (p *Palette) ResetIndexed(index uint8) {
	switch {
	case index < 16:
		p.ansi[index] = ansi16[index]
	case index < 232:
		steps := [6]uint8{0x00, 0x5f, 0x87, 0xaf, 0xd7, 0xff}
		i := int(index) - 16
		p.ansi[index] = RGBA{steps[i/36], steps[(i/6)%6], steps[i%6], 0xff}
	default:
		v := uint8(8 + (int(index)-232)*10)
		p.ansi[index] = RGBA{v, v, v, 0xff}
	}
}

// Resolve maps a cell Color to a concrete RGBA using this palette,
// given whether it is being used as a foreground or background slot.
func (p *Palette) Resolve(c Color, isForeground bool) RGBA {
	switch c.Kind {
	case ColorIndexed:
		return p.ansi[c.Index]
	case ColorRGB:
		return RGBA{c.R, c.G, c.B, 0xff}
	default:
		if isForeground {
			return p.DefaultFg
		}
		return p.DefaultBg
	}
}
