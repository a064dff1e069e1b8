package termcell

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/termcell/codec"
)

// SelectGlyphColor combines an atlas sample with the foreground color.
//
// The result alpha is tex.A*fg.A. Monochrome glyphs take the foreground
// RGB; color glyphs keep their atlas RGB.
func SelectGlyphColor(tex, fg Color, colorGlyph bool) Color {
	alpha := tex.A * fg.A
	if colorGlyph {
		return tex.WithAlpha(alpha)
	}
	return fg.WithAlpha(alpha)
}

// ApplyDecorations replaces color with fg on underline and strikeout rows.
// py is the atlas-space row of the pixel. Strikeout is applied last.
func ApplyDecorations(color, fg Color, py int, underline, strikeout codec.Range16) Color {
	if underline.Contains(py) {
		color = fg
	}
	if strikeout.Contains(py) {
		color = fg
	}
	return color
}

// ApplyCursor overlays the cursor on color when the pixel is inside the
// cursor band. px is the cell-local column and py the atlas-space row.
func ApplyCursor(color Color, px, py int, cursor codec.Cursor, cursorColor Color) Color {
	if !cursor.Visible {
		return color
	}
	pos := px
	if cursor.Horizontal {
		pos = py
	}
	if !cursor.Contains(pos) {
		return color
	}

	if color.A == 0 {
		return cursorColor.WithAlpha(1)
	}

	fgWeight := color.A * (1 - cursorColor.A)
	curWeight := 1 - fgWeight
	out := Color{
		R: color.R*fgWeight + cursorColor.R*curWeight,
		G: color.G*fgWeight + cursorColor.G*curWeight,
		B: color.B*fgWeight + cursorColor.B*curWeight,
	}
	if color.SameRGB(cursorColor) {
		// Inverted alpha keeps a same-colored cursor visible.
		out.A = 1 - color.A
	} else {
		out.A = 1
	}
	return out
}

// Composite computes the output color of one text-cell pixel.
//
// The atlas is sampled at UV divided by the atlas size, then glyph
// selection, decorations and the cursor are applied in that order, each
// overriding the previous result. The returned color has straight alpha.
//
// Composite is pure and safe for concurrent use.
func Composite(in FragmentInput, atlas AtlasBinding) Color {
	var tex Color
	if atlas.Texture != nil && atlas.Width > 0 && atlas.Height > 0 {
		tex = atlas.Texture.Sample(in.UV[0]/atlas.Width, in.UV[1]/atlas.Height)
	}

	fg := UnpackColor(in.FgColor)
	color := SelectGlyphColor(tex, fg, in.ColorGlyph)

	py := int(math32.Floor(in.UV[1]))
	color = ApplyDecorations(color, fg, py,
		codec.DecodeRange16(in.UnderlineRange),
		codec.DecodeRange16(in.StrikeoutRange))

	px := int(math32.Floor(in.UV[0] - in.UVX0))
	return ApplyCursor(color, px, py,
		codec.DecodeCursor(in.CursorSpec),
		UnpackColor(in.CursorColor))
}
