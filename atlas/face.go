package atlas

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/termcell"
)

// FaceRasterizer renders runes of a font.Face into cell-sized coverage masks.
type FaceRasterizer struct {
	face   font.Face
	cellW  int
	cellH  int
	ascent int
}

// NewFaceRasterizer derives the cell box from the face: the advance of 'M'
// by the line height.
func NewFaceRasterizer(face font.Face) *FaceRasterizer {
	m := face.Metrics()
	adv, ok := face.GlyphAdvance('M')
	if !ok || adv <= 0 {
		adv = m.Height / 2
	}
	return &FaceRasterizer{
		face:   face,
		cellW:  adv.Ceil(),
		cellH:  m.Height.Ceil(),
		ascent: m.Ascent.Ceil(),
	}
}

// CellSize returns the width and height of one terminal cell in pixels.
func (r *FaceRasterizer) CellSize() (w, h int) { return r.cellW, r.cellH }

// LineMetrics returns the underline and strikeout rows of the cell box.
// The underline sits one row below the baseline and is at least one row
// thick; the strikeout crosses the middle of the x-height.
func (r *FaceRasterizer) LineMetrics() termcell.LineMetrics {
	thick := max(1, r.cellH/13)
	under := termcell.Band{Min: uint32(r.ascent + 1), Max: uint32(r.ascent + 1 + thick)}
	if int(under.Max) > r.cellH {
		under = termcell.Band{Min: uint32(max(0, r.cellH-thick)), Max: uint32(r.cellH)}
	}

	xh := r.face.Metrics().XHeight.Ceil()
	if xh <= 0 || xh > r.ascent {
		xh = r.ascent * 7 / 10
	}
	mid := r.ascent - xh/2
	return termcell.LineMetrics{
		Underline: under,
		Strikeout: termcell.Band{Min: uint32(mid), Max: uint32(mid + thick)},
	}
}

// italicSkew is the horizontal shift per row of a synthesized italic.
const italicSkew = 0.25

// Rasterize draws ch into a mask of cells×1 terminal cells. Bold is
// synthesized by drawing the glyph twice one pixel apart; italic by
// shearing the upright mask about the baseline.
func (r *FaceRasterizer) Rasterize(ch rune, cells int, style termcell.Attr) *image.Alpha {
	bounds := image.Rect(0, 0, r.cellW*max(1, cells), r.cellH)
	mask := image.NewAlpha(bounds)
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: r.face,
		Dot:  fixed.P(0, r.ascent),
	}
	d.DrawString(string(ch))
	if style&termcell.AttrBold != 0 {
		d.Dot = fixed.P(1, r.ascent)
		d.DrawString(string(ch))
	}
	if style&termcell.AttrItalic == 0 {
		return mask
	}

	sheared := image.NewAlpha(bounds)
	s2d := f64.Aff3{
		1, -italicSkew, italicSkew * float64(r.ascent),
		0, 1, 0,
	}
	draw.BiLinear.Transform(sheared, s2d, mask, bounds, draw.Over, nil)
	return sheared
}

// Glyph returns the atlas placement of ch, rasterizing and inserting it on
// first use. Wide runes occupy two cells. The atlas lock is held across a
// miss so concurrent callers never insert the same key twice.
func (a *Atlas) Glyph(r *FaceRasterizer, ch rune, style termcell.Attr) (termcell.Glyph, error) {
	cells := termcell.RuneWidth(ch)
	k := Key{Rune: ch, Style: style & (termcell.AttrBold | termcell.AttrItalic), Wide: cells == 2}

	a.mu.Lock()
	defer a.mu.Unlock()
	if g, ok := a.glyphs[k]; ok {
		return g, nil
	}
	g, err := a.insertMaskLocked(r.Rasterize(ch, cells, k.Style))
	if err != nil {
		return termcell.Glyph{}, err
	}
	a.glyphs[k] = g
	return g, nil
}
