package termcell

import (
	"image/color"

	"github.com/gogpu/termcell/codec"
)

// Color is a straight (non-premultiplied) RGBA color.
// Each component is in the range [0, 1].
type Color struct {
	R, G, B, A float32
}

// UnpackColor decodes a packed RGBA8 value (r in the low byte).
func UnpackColor(v uint32) Color {
	r, g, b, a := codec.DecodeColor(v)
	return Color{R: r, G: g, B: b, A: a}
}

// Pack encodes c as RGBA8 with round-to-nearest. Components are clamped.
func (c Color) Pack() uint32 {
	return codec.PackRGBA(to8(c.R), to8(c.G), to8(c.B), to8(c.A))
}

// NRGBA converts c to the standard library's straight-alpha color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// FromColor converts a standard color.Color to Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}

// SameRGB reports whether c and o have exactly equal color channels.
// Alpha is ignored.
func (c Color) SameRGB(o Color) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Premultiply returns a premultiplied color.
func (c Color) Premultiply() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Over composites c over dst using straight-alpha source-over.
func (c Color) Over(dst Color) Color {
	if c.A >= 1 {
		return c
	}
	if c.A <= 0 {
		return dst
	}
	da := dst.A * (1 - c.A)
	a := c.A + da
	if a == 0 {
		return Color{}
	}
	return Color{
		R: (c.R*c.A + dst.R*da) / a,
		G: (c.G*c.A + dst.G*da) / a,
		B: (c.B*c.A + dst.B*da) / a,
		A: a,
	}
}

// RGB creates an opaque color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return UnpackColor(codec.PackRGBA(r, g, b, 255))
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA".
// Unrecognized lengths yield opaque black.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255

	switch len(hex) {
	case 3:
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
	case 8:
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
		parseHex(hex[6:8], &a)
	default:
		return Color{A: 1}
	}

	return UnpackColor(codec.PackRGBA(uint8(r), uint8(g), uint8(b), uint8(a)))
}

func parseHex(s string, val *uint32) {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return
		}
	}
}

func to8(x float32) uint8 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return uint8(x*255 + 0.5)
}

// Common colors
var (
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
	Transparent = Color{}
)
