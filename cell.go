package termcell

import (
	"errors"
	"fmt"

	"golang.org/x/text/width"

	"github.com/gogpu/termcell/codec"
)

// Attr is a set of cell display attributes.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderlined
	AttrSlowBlink
	AttrRapidBlink
	AttrReversed
	AttrHidden
	AttrCrossedOut
)

// Has reports whether all attributes in mask are set.
func (a Attr) Has(mask Attr) bool { return a&mask == mask }

// Foreground alpha levels.
const (
	alphaHidden = 0
	alphaDim    = 127
	alphaNormal = 255

	// cursorAlpha is the fixed alpha of packed cursor colors.
	cursorAlpha = 99
)

type colorKind uint8

const (
	kindDefault colorKind = iota
	kindRGB
	kindIndexed
)

// TermColor is a terminal color: the default, an explicit RGB value or an
// index into the packer's color table. The zero value is the terminal
// default, resolved by the packer.
type TermColor struct {
	R, G, B uint8
	kind    colorKind
	index   uint8
}

// TermRGB returns an explicit terminal color.
func TermRGB(r, g, b uint8) TermColor {
	return TermColor{R: r, G: g, B: b, kind: kindRGB}
}

// TermIndexed returns the 256-color palette entry i. Entries below 16 are
// looked up in the packer's ColorTable.
func TermIndexed(i uint8) TermColor {
	return TermColor{kind: kindIndexed, index: i}
}

// IsDefault reports whether c is the terminal default color.
func (c TermColor) IsDefault() bool { return c.kind == kindDefault }

// Index returns the palette index of an indexed color.
func (c TermColor) Index() (uint8, bool) { return c.index, c.kind == kindIndexed }

func (c TermColor) pack(alpha uint8) uint32 {
	return codec.PackRGBA(c.R, c.G, c.B, alpha)
}

// Glyph is the placement of a rasterized glyph in the atlas, in texels.
type Glyph struct {
	X, Y, W, H uint32
	// Color marks glyphs whose atlas RGB is used as is (emoji).
	Color bool
}

// LineMetrics holds the cell-relative underline and strikeout rows of a
// font. The underline band doubles as cursor metrics.
type LineMetrics struct {
	Underline Band
	Strikeout Band
}

// Cell is one glyph placed on the terminal grid.
type Cell struct {
	// X, Y is the top-left pixel of the glyph quad on the target.
	X, Y  float32
	Glyph Glyph
	Fg    TermColor
	Bg    TermColor
	Attrs Attr
	// Cursor marks the cell under the cursor.
	Cursor bool
}

// CellQuad is the packed per-cell record consumed by the compositing stages,
// one per glyph quad.
type CellQuad struct {
	X, Y, W, H float32
	// U, V is the atlas texel of the quad's top-left corner.
	U, V float32
	UVX0 float32

	FgColor        uint32
	ColorGlyph     bool
	UnderlineRange uint32
	StrikeoutRange uint32
	CursorSpec     uint32
	CursorColor    uint32
	BgColor        uint32
}

// Fragment returns the compositing input for the texel at local offset
// (lx, ly) inside the quad.
func (q *CellQuad) Fragment(lx, ly float32) FragmentInput {
	return FragmentInput{
		UV:             [2]float32{q.U + lx, q.V + ly},
		UVX0:           q.UVX0,
		FgColor:        q.FgColor,
		ColorGlyph:     q.ColorGlyph,
		UnderlineRange: q.UnderlineRange,
		StrikeoutRange: q.StrikeoutRange,
		CursorSpec:     q.CursorSpec,
		CursorColor:    q.CursorColor,
	}
}

// CellPacker converts grid cells to packed CellQuads.
//
// The zero value resolves default colors to white on black, draws a bar
// cursor and shows every blink phase.
type CellPacker struct {
	Metrics LineMetrics

	// Colors resolves indexed colors. Nil uses DefaultColorTable.
	Colors *ColorTable

	ResetFg TermColor
	ResetBg TermColor
	// CursorColor overrides the cursor color. Default uses the cell's
	// effective foreground.
	CursorColor   TermColor
	CursorStyle   CursorStyle
	CursorVisible bool

	// Blink supplies the blink phases. Nil means always showing.
	Blink *Blinker
}

func (p *CellPacker) table() *ColorTable {
	if p.Colors != nil {
		return p.Colors
	}
	return &defaultColorTable
}

func (p *CellPacker) resetFg() TermColor { return p.table().Resolve(p.ResetFg, TermRGB(255, 255, 255)) }
func (p *CellPacker) resetBg() TermColor { return p.table().Resolve(p.ResetBg, TermRGB(0, 0, 0)) }

func (p *CellPacker) fgAlpha(a Attr) uint8 {
	fast, slow, _ := p.Blink.Showing()
	switch {
	case a.Has(AttrHidden),
		a.Has(AttrRapidBlink) && !fast,
		a.Has(AttrSlowBlink) && !slow:
		return alphaHidden
	case a.Has(AttrDim):
		return alphaDim
	default:
		return alphaNormal
	}
}

// Pack builds the CellQuad for c.
func (p *CellPacker) Pack(c Cell) (CellQuad, error) {
	g := c.Glyph
	if g.W == 0 || g.H == 0 {
		return CellQuad{}, ErrEmptyGlyph
	}

	colors := p.table()
	fg := colors.Resolve(c.Fg, p.resetFg())
	bg := colors.Resolve(c.Bg, p.resetBg())
	if c.Attrs.Has(AttrReversed) {
		fg, bg = bg, fg
	}

	cursorColor := colors.Resolve(p.CursorColor, fg)

	var under, strike Band
	if c.Attrs.Has(AttrUnderlined) {
		under = p.Metrics.Underline
	}
	if c.Attrs.Has(AttrCrossedOut) {
		strike = p.Metrics.Strikeout
	}
	underRange, err := decorationRange(under, g.Y)
	if err != nil {
		return CellQuad{}, fmt.Errorf("underline: %w", err)
	}
	strikeRange, err := decorationRange(strike, g.Y)
	if err != nil {
		return CellQuad{}, fmt.Errorf("strikeout: %w", err)
	}

	var cursorSpec uint32
	if c.Cursor && p.CursorVisible {
		if _, _, showing := p.Blink.Showing(); showing {
			cursorSpec, err = EncodeCursorSpec(p.CursorStyle, p.Metrics.Underline, g.Y, g.W)
			if errors.Is(err, ErrCursorRangeOverflow) {
				// The glyph sits too low in the atlas for an 8-bit cursor
				// band. Draw the cell without a cursor.
				Logger().Warn("termcell: cursor dropped",
					"style", p.CursorStyle, "atlas_y", g.Y, "err", err)
				cursorSpec = 0
			} else if err != nil {
				return CellQuad{}, err
			}
		}
	}

	return CellQuad{
		X:              c.X,
		Y:              c.Y,
		W:              float32(g.W),
		H:              float32(g.H),
		U:              float32(g.X),
		V:              float32(g.Y),
		UVX0:           float32(g.X),
		FgColor:        fg.pack(p.fgAlpha(c.Attrs)),
		ColorGlyph:     g.Color,
		UnderlineRange: underRange,
		StrikeoutRange: strikeRange,
		CursorSpec:     cursorSpec,
		CursorColor:    cursorColor.pack(cursorAlpha),
		BgColor:        bg.pack(255),
	}, nil
}

// PackAll packs cells in order, stopping at the first error. A cursor band
// that cannot be encoded is dropped rather than failing the frame.
func (p *CellPacker) PackAll(cells []Cell) ([]CellQuad, error) {
	quads := make([]CellQuad, 0, len(cells))
	for i, c := range cells {
		q, err := p.Pack(c)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		quads = append(quads, q)
	}
	return quads, nil
}

func decorationRange(b Band, atlasY uint32) (uint32, error) {
	lo, hi := uint64(b.Min)+uint64(atlasY), uint64(b.Max)+uint64(atlasY)
	if lo > 0xFFFF || hi > 0xFFFF {
		return 0, fmt.Errorf("rows [%d, %d): %w", lo, hi, ErrDecorationOverflow)
	}
	return codec.EncodeRange16(uint16(lo), uint16(hi)), nil
}

// RuneWidth returns the number of terminal cells r occupies: 2 for East
// Asian wide and fullwidth runes, 0 for NUL, 1 otherwise.
func RuneWidth(r rune) int {
	if r == 0 {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
