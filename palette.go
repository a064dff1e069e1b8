package termcell

// ColorIndex names the 16 base entries of a ColorTable.
type ColorIndex uint8

const (
	IndexBlack ColorIndex = iota
	IndexRed
	IndexGreen
	IndexYellow
	IndexBlue
	IndexMagenta
	IndexCyan
	IndexGray
	IndexDarkGray
	IndexLightRed
	IndexLightGreen
	IndexLightYellow
	IndexLightBlue
	IndexLightMagenta
	IndexLightCyan
	IndexWhite
)

// ColorTable maps the 16 base palette indices to RGB. Indices 16..255 are
// the fixed xterm 6×6×6 cube and grayscale ramp.
type ColorTable [16]TermColor

var defaultColorTable = ColorTable{
	IndexBlack:        TermRGB(0, 0, 0),
	IndexRed:          TermRGB(205, 0, 0),
	IndexGreen:        TermRGB(0, 205, 0),
	IndexYellow:       TermRGB(205, 205, 0),
	IndexBlue:         TermRGB(0, 0, 238),
	IndexMagenta:      TermRGB(205, 0, 205),
	IndexCyan:         TermRGB(0, 205, 205),
	IndexGray:         TermRGB(229, 229, 229),
	IndexDarkGray:     TermRGB(127, 127, 127),
	IndexLightRed:     TermRGB(255, 0, 0),
	IndexLightGreen:   TermRGB(0, 255, 0),
	IndexLightYellow:  TermRGB(255, 255, 0),
	IndexLightBlue:    TermRGB(92, 92, 255),
	IndexLightMagenta: TermRGB(255, 0, 255),
	IndexLightCyan:    TermRGB(0, 255, 255),
	IndexWhite:        TermRGB(255, 255, 255),
}

// DefaultColorTable returns the xterm base palette.
func DefaultColorTable() ColorTable { return defaultColorTable }

// Set replaces entry i.
func (t *ColorTable) Set(i ColorIndex, c TermColor) {
	if int(i) < len(t) {
		t[i] = c
	}
}

// Resolve returns c as an RGB color. Default colors resolve to def; indexed
// colors go through the table. A table entry that is itself default or
// indexed also resolves to def.
func (t *ColorTable) Resolve(c TermColor, def TermColor) TermColor {
	switch c.kind {
	case kindRGB:
		return c
	case kindIndexed:
		if int(c.index) < len(t) {
			if e := t[c.index]; e.kind == kindRGB {
				return e
			}
			return def
		}
		return xtermColor(c.index)
	}
	return def
}

var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// xtermColor returns the fixed palette entry for i >= 16.
func xtermColor(i uint8) TermColor {
	if i >= 232 {
		v := 8 + 10*(i-232)
		return TermRGB(v, v, v)
	}
	n := i - 16
	return TermRGB(cubeLevels[n/36], cubeLevels[n/6%6], cubeLevels[n%6])
}
