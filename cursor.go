package termcell

import (
	"fmt"

	"github.com/gogpu/termcell/codec"
)

// CursorStyle selects the cursor shape.
type CursorStyle uint8

const (
	// CursorBar is a thin vertical bar at the start of the cell.
	CursorBar CursorStyle = iota
	// CursorBlock covers the full cell width.
	CursorBlock
	// CursorUnderscore is a horizontal bar on the underline rows.
	CursorUnderscore
	// CursorBoldUnderscore is CursorUnderscore two rows thicker.
	CursorBoldUnderscore
	// CursorBoldBar is CursorBar two columns wider.
	CursorBoldBar
	// CursorRtlBar is a bar at the end of the cell, for right-to-left text.
	CursorRtlBar
	// CursorRtlBoldBar is CursorBoldBar at the end of the cell.
	CursorRtlBoldBar
)

// String returns the style name.
func (s CursorStyle) String() string {
	switch s {
	case CursorBar:
		return "bar"
	case CursorBlock:
		return "block"
	case CursorUnderscore:
		return "underscore"
	case CursorBoldUnderscore:
		return "bold-underscore"
	case CursorBoldBar:
		return "bold-bar"
	case CursorRtlBar:
		return "rtl-bar"
	case CursorRtlBoldBar:
		return "rtl-bold-bar"
	default:
		return fmt.Sprintf("CursorStyle(%d)", uint8(s))
	}
}

// ParseCursorStyle returns the style with the given String name.
func ParseCursorStyle(name string) (CursorStyle, error) {
	for s := CursorBar; s <= CursorRtlBoldBar; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return CursorBar, fmt.Errorf("termcell: unknown cursor style %q", name)
}

// ToRTL maps bar styles to their right-to-left variants.
func (s CursorStyle) ToRTL() CursorStyle {
	switch s {
	case CursorBar:
		return CursorRtlBar
	case CursorBoldBar:
		return CursorRtlBoldBar
	}
	return s
}

// ToLTR maps right-to-left bar styles back to their left-to-right variants.
func (s CursorStyle) ToLTR() CursorStyle {
	switch s {
	case CursorRtlBar:
		return CursorBar
	case CursorRtlBoldBar:
		return CursorBoldBar
	}
	return s
}

// Band is a half-open [Min, Max) row range relative to the top of a cell.
type Band struct {
	Min, Max uint32
}

// Empty reports whether the band covers no rows.
func (b Band) Empty() bool { return b.Min >= b.Max }

// EncodeCursorSpec builds the packed cursor spec for one cell.
//
// band is the cell-relative underline band used as cursor metrics, atlasY
// the atlas row of the glyph and cellW the glyph width in texels. Horizontal
// styles are expressed in atlas rows; vertical styles in cell-local columns.
// An empty band encodes a hidden cursor.
func EncodeCursorSpec(style CursorStyle, band Band, atlasY, cellW uint32) (uint32, error) {
	if band.Min == band.Max {
		return 0, nil
	}
	w := absDiff(band.Max, band.Min)

	var c codec.Cursor
	var lo, hi uint32
	switch style {
	case CursorBlock:
		lo, hi = 0, cellW
	case CursorUnderscore:
		lo, hi = band.Min+atlasY, band.Max+atlasY+1
		c.Horizontal = true
	case CursorBoldUnderscore:
		lo, hi = band.Min+atlasY, band.Max+atlasY+3
		c.Horizontal = true
	case CursorBar:
		lo, hi = 0, w+1
	case CursorBoldBar:
		lo, hi = 0, w+3
	case CursorRtlBar:
		lo, hi = saturatingSub(cellW, w+1), cellW
	case CursorRtlBoldBar:
		lo, hi = saturatingSub(cellW, w+3), cellW
	default:
		return 0, fmt.Errorf("termcell: unknown cursor style %d", uint8(style))
	}
	if lo > 0xFF || hi > 0xFF {
		return 0, fmt.Errorf("%s cursor [%d, %d): %w", style, lo, hi, ErrCursorRangeOverflow)
	}
	c.Visible = true
	c.Min, c.Max = uint8(lo), uint8(hi)
	return codec.EncodeCursor(c), nil
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func saturatingSub(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}
