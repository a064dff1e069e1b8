package main

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/termcell"
	"github.com/gogpu/termcell/atlas"
)

// screenCell is one grid position. Wide runes occupy their cell and mark
// the next one as a spacer.
type screenCell struct {
	ch     rune
	fg, bg termcell.TermColor
	attrs  termcell.Attr
	spacer bool
}

// screen is a minimal terminal grid with a write cursor.
type screen struct {
	cols, rows int
	cells      []screenCell
	col, row   int

	fg, bg termcell.TermColor
	attrs  termcell.Attr

	cursorCol, cursorRow int
}

func newScreen(cols, rows int) *screen {
	s := &screen{cols: cols, rows: rows, cells: make([]screenCell, cols*rows)}
	for i := range s.cells {
		s.cells[i].ch = ' '
	}
	return s
}

func (s *screen) moveTo(col, row int) { s.col, s.row = col, row }

func (s *screen) style(fg, bg termcell.TermColor, attrs termcell.Attr) {
	s.fg, s.bg, s.attrs = fg, bg, attrs
}

func (s *screen) reset() { s.style(termcell.TermColor{}, termcell.TermColor{}, 0) }

// print writes text at the write cursor, clipping at the right edge.
func (s *screen) print(text string) {
	for _, r := range text {
		w := termcell.RuneWidth(r)
		if w == 0 {
			continue
		}
		if s.row >= s.rows || s.col+w > s.cols {
			return
		}
		i := s.row*s.cols + s.col
		s.cells[i] = screenCell{ch: r, fg: s.fg, bg: s.bg, attrs: s.attrs}
		if w == 2 {
			s.cells[i+1] = screenCell{spacer: true, bg: s.bg}
		}
		s.col += w
	}
}

// layout resolves every cell to an atlas glyph placed on the pixel grid.
func (s *screen) layout(a *atlas.Atlas, rast *atlas.FaceRasterizer, cellW, cellH int) ([]termcell.Cell, error) {
	out := make([]termcell.Cell, 0, len(s.cells))
	for i, c := range s.cells {
		if c.spacer {
			continue
		}
		g, err := a.Glyph(rast, c.ch, c.attrs)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", c.ch, err)
		}
		col, row := i%s.cols, i/s.cols
		out = append(out, termcell.Cell{
			X:      float32(col * cellW),
			Y:      float32(row * cellH),
			Glyph:  g,
			Fg:     c.fg,
			Bg:     c.bg,
			Attrs:  c.attrs,
			Cursor: col == s.cursorCol && row == s.cursorRow,
		})
	}
	termcell.Logger().Debug("termdemo: laid out screen",
		slog.Int("cells", len(out)), slog.Int("glyphs", a.Len()))
	return out, nil
}

var palette = []termcell.TermColor{
	termcell.TermRGB(0xf3, 0x8b, 0xa8),
	termcell.TermRGB(0xa6, 0xe3, 0xa1),
	termcell.TermRGB(0xf9, 0xe2, 0xaf),
	termcell.TermRGB(0x89, 0xb4, 0xfa),
	termcell.TermRGB(0xf5, 0xc2, 0xe7),
	termcell.TermRGB(0x94, 0xe2, 0xd5),
}

// drawSample fills the screen with text exercising every cell attribute.
func drawSample(s *screen) {
	none := termcell.TermColor{}

	s.moveTo(1, 0)
	s.style(palette[3], none, termcell.AttrBold)
	s.print("termcell demo")

	samples := []struct {
		label string
		attrs termcell.Attr
	}{
		{"normal", 0},
		{"bold", termcell.AttrBold},
		{"italic", termcell.AttrItalic},
		{"dim", termcell.AttrDim},
		{"underlined", termcell.AttrUnderlined},
		{"crossed out", termcell.AttrCrossedOut},
		{"reversed", termcell.AttrReversed},
		{"slow blink", termcell.AttrSlowBlink},
		{"rapid blink", termcell.AttrRapidBlink},
		{"hidden", termcell.AttrHidden},
	}
	for i, smp := range samples {
		s.moveTo(1, 2+i)
		s.reset()
		s.print(fmt.Sprintf("%-12s", smp.label))
		s.style(palette[i%len(palette)], none, smp.attrs)
		s.print("The quick brown fox")
	}

	s.moveTo(1, 12)
	for i, c := range palette {
		s.style(termcell.TermRGB(0x1e, 0x1e, 0x2e), c, 0)
		s.print(fmt.Sprintf(" %d ", i))
	}

	// The 16 base colors come from the packer's color table.
	s.moveTo(1, 13)
	for i := range 16 {
		fg := termcell.TermIndexed(uint8(termcell.IndexBlack))
		if i == int(termcell.IndexBlack) || i == int(termcell.IndexBlue) {
			fg = termcell.TermIndexed(uint8(termcell.IndexWhite))
		}
		s.style(fg, termcell.TermIndexed(uint8(i)), 0)
		s.print(fmt.Sprintf(" %x ", i))
	}

	s.moveTo(1, 14)
	s.reset()
	s.print("$ ls -la ")
	s.cursorCol, s.cursorRow = s.col, s.row
}
