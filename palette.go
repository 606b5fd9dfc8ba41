package coreterm

import (
	"image/color"

	ansicode "github.com/danielgatis/go-ansicode"
	headlessterm "github.com/danielgatis/go-headless-term"
)

// rgb is a plain 8-bit-per-channel color, independent of image/color so the
// snapshot ABI surface (see snapshot.go) does not leak the dependency's
// color.Color interface.
type rgb struct {
	R, G, B uint8
}

// Palette is the per-handle color table: 16 ANSI entries plus default
// foreground/background, applied only at snapshot time. It never mutates
// emulator state.
type Palette struct {
	ANSI [16]rgb
	FG   rgb
	BG   rgb
}

// DefaultPalette seeds a Palette from the embedded Grid dependency's own
// standard xterm-style colors (github.com/danielgatis/go-headless-term's
// DefaultPalette/DefaultForeground/DefaultBackground), not the original
// product's brand-specific palette constants.
func DefaultPalette() Palette {
	var p Palette
	for i := 0; i < 16; i++ {
		c := headlessterm.DefaultPalette[i]
		p.ANSI[i] = rgb{c.R, c.G, c.B}
	}
	fg := headlessterm.DefaultForeground
	bg := headlessterm.DefaultBackground
	p.FG = rgb{fg.R, fg.G, fg.B}
	p.BG = rgb{bg.R, bg.G, bg.B}
	return p
}

// resolveColor maps an emulator-side color to concrete RGB: a concrete
// color.RGBA is used as-is, while *headlessterm.IndexedColor and
// *headlessterm.NamedColor resolve through the handle's palette. The
// embedded Terminal's OSC 4/10/11 custom-color table is unexported and not
// reachable from this package, so it is treated as always empty here; every
// Named/Indexed color falls straight through to the palette-based fallback.
func resolveColor(c color.Color, palette *Palette, isForeground bool) rgb {
	if c == nil {
		if isForeground {
			return palette.FG
		}
		return palette.BG
	}

	switch v := c.(type) {
	case color.RGBA:
		return rgb{v.R, v.G, v.B}
	case *headlessterm.IndexedColor:
		return resolveIndexed(v.Index, palette)
	case *headlessterm.NamedColor:
		return resolveNamed(v.Name, palette, isForeground)
	default:
		r, g, b, _ := c.RGBA()
		return rgb{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
	}
}

func resolveNamed(name int, palette *Palette, isForeground bool) rgb {
	switch name {
	case int(ansicode.NamedColorForeground):
		return palette.FG
	case int(ansicode.NamedColorBackground):
		return palette.BG
	default:
		if name >= 0 && name < 16 {
			return palette.ANSI[name]
		}
		if isForeground {
			return palette.FG
		}
		return palette.BG
	}
}

func resolveIndexed(index int, palette *Palette) rgb {
	switch {
	case index < 16:
		return palette.ANSI[index]
	case index < 232:
		// 6x6x6 color cube on the xterm-standard ramp: a component is 0
		// when its step k is 0, else k*40+55. Deliberately not the flat
		// k*51 ramp the embedded dependency's DefaultPalette init() uses.
		idx := index - 16
		r := idx / 36
		g := (idx / 6) % 6
		b := idx % 6
		return rgb{cubeComponent(r), cubeComponent(g), cubeComponent(b)}
	default:
		// Grayscale ramp, 232..255.
		v := uint8(8 + (index-232)*10)
		return rgb{v, v, v}
	}
}

func cubeComponent(k int) uint8 {
	if k == 0 {
		return 0
	}
	return uint8(k*40 + 55)
}

func halveChannel(v uint8) uint8 {
	return v / 2
}
