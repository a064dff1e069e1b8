package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/termcell"
	"github.com/gogpu/termcell/atlas"
	"github.com/gogpu/termcell/blit"
)

var (
	red  = termcell.Color{R: 1, A: 1}
	blue = termcell.Color{B: 1, A: 1}
)

// halfGlyphAtlas returns a 16×16 atlas holding one 4×4 glyph whose left two
// columns are fully covered.
func halfGlyphAtlas(t *testing.T) (*atlas.Atlas, termcell.Glyph) {
	t.Helper()
	a, err := atlas.New(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	mask := image.NewAlpha(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 2 {
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	g, err := a.InsertMask(mask)
	if err != nil {
		t.Fatal(err)
	}
	return a, g
}

func solidImage(t testing.TB, c color.NRGBA) *atlas.Image {
	t.Helper()
	img, err := atlas.NewImage(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	img.Fill(c)
	return img
}

func newTestRenderer(t *testing.T, w, h int, opts ...Option) *Renderer {
	t.Helper()
	r, err := NewRenderer(w, h, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(r.Close)
	return r
}

func packOne(t *testing.T, p *termcell.CellPacker, c termcell.Cell) termcell.CellQuad {
	t.Helper()
	q, err := p.Pack(c)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func assertPixel(t *testing.T, p *Pixmap, x, y int, want termcell.Color) {
	t.Helper()
	if got := p.GetPixel(x, y); got.NRGBA() != want.NRGBA() {
		t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got.NRGBA(), want.NRGBA())
	}
}

// =============================================================================
// Construction and validation
// =============================================================================

func TestNewRendererInvalid(t *testing.T) {
	for _, d := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		if _, err := NewRenderer(d[0], d[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewRenderer(%d, %d) err = %v, want ErrInvalidDimensions", d[0], d[1], err)
		}
	}
}

func TestRendererOptions(t *testing.T) {
	r := newTestRenderer(t, 20, 30, WithWorkers(3), WithBandHeight(13))
	if r.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", r.Workers())
	}
	if r.BandHeight() != 13 {
		t.Errorf("BandHeight() = %d, want 13", r.BandHeight())
	}
}

func TestRenderRequiresAtlas(t *testing.T) {
	r := newTestRenderer(t, 8, 8)
	err := r.Render(&Frame{Cells: []termcell.CellQuad{{W: 1, H: 1}}})
	if !errors.Is(err, ErrNilAtlas) {
		t.Errorf("err = %v, want ErrNilAtlas", err)
	}
}

func TestRenderRequiresImageTexture(t *testing.T) {
	r := newTestRenderer(t, 8, 8)
	err := r.Render(&Frame{Images: []Image{{Dst: image.Rect(0, 0, 2, 2)}}})
	if !errors.Is(err, ErrNilTexture) {
		t.Errorf("err = %v, want ErrNilTexture", err)
	}
}

func TestRenderAfterClose(t *testing.T) {
	r, _ := NewRenderer(4, 4)
	r.Close()
	r.Close()
	if err := r.Render(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

// =============================================================================
// Stages
// =============================================================================

func TestRenderClearColor(t *testing.T) {
	clearColor := termcell.Hex("#336699")
	r := newTestRenderer(t, 5, 7, WithClearColor(clearColor), WithBandHeight(2))
	if err := r.Render(&Frame{}); err != nil {
		t.Fatal(err)
	}
	for y := range 7 {
		for x := range 5 {
			assertPixel(t, r.Target(), x, y, clearColor)
		}
	}
}

func TestRenderBackgroundAndGlyph(t *testing.T) {
	a, g := halfGlyphAtlas(t)
	var p termcell.CellPacker
	q := packOne(t, &p, termcell.Cell{
		X: 2, Y: 3, Glyph: g,
		Fg: termcell.TermRGB(255, 0, 0),
		Bg: termcell.TermRGB(0, 0, 255),
	})

	r := newTestRenderer(t, 10, 10)
	if err := r.Render(&Frame{Cells: []termcell.CellQuad{q}, Atlas: a.Binding()}); err != nil {
		t.Fatal(err)
	}
	px := r.Target()
	// Covered glyph columns take the foreground.
	assertPixel(t, px, 2, 3, red)
	assertPixel(t, px, 3, 6, red)
	// Uncovered texels show the background.
	assertPixel(t, px, 4, 3, blue)
	assertPixel(t, px, 5, 6, blue)
	// Outside the quad only the clear color remains.
	assertPixel(t, px, 1, 3, termcell.Black)
	assertPixel(t, px, 6, 3, termcell.Black)
	assertPixel(t, px, 2, 7, termcell.Black)
}

func TestRenderUnderline(t *testing.T) {
	a, g := halfGlyphAtlas(t)
	p := termcell.CellPacker{
		Metrics: termcell.LineMetrics{Underline: termcell.Band{Min: 3, Max: 4}},
	}
	q := packOne(t, &p, termcell.Cell{
		Glyph: g, Attrs: termcell.AttrUnderlined,
		Fg: termcell.TermRGB(255, 0, 0),
		Bg: termcell.TermRGB(0, 0, 255),
	})

	r := newTestRenderer(t, 4, 4)
	if err := r.Render(&Frame{Cells: []termcell.CellQuad{q}, Atlas: a.Binding()}); err != nil {
		t.Fatal(err)
	}
	for x := range 4 {
		assertPixel(t, r.Target(), x, 3, red)
	}
	assertPixel(t, r.Target(), 3, 2, blue)
}

func TestRenderBlockCursor(t *testing.T) {
	a, g := halfGlyphAtlas(t)
	p := termcell.CellPacker{
		Metrics:       termcell.LineMetrics{Underline: termcell.Band{Min: 3, Max: 4}},
		CursorStyle:   termcell.CursorBlock,
		CursorVisible: true,
	}
	q := packOne(t, &p, termcell.Cell{
		Glyph: g, Cursor: true,
		Fg: termcell.TermRGB(255, 0, 0),
		Bg: termcell.TermRGB(0, 0, 255),
	})

	r := newTestRenderer(t, 4, 4)
	if err := r.Render(&Frame{Cells: []termcell.CellQuad{q}, Atlas: a.Binding()}); err != nil {
		t.Fatal(err)
	}
	// Empty glyph texels take the opaque cursor color.
	assertPixel(t, r.Target(), 3, 1, red)
	// Glyph texels of the cursor's own color are inverted to transparent,
	// leaving the background.
	assertPixel(t, r.Target(), 0, 1, blue)
}

func TestRenderImageLayers(t *testing.T) {
	a, g := halfGlyphAtlas(t)
	var p termcell.CellPacker
	q := packOne(t, &p, termcell.Cell{
		Glyph: g,
		Fg:    termcell.TermRGB(255, 0, 0),
		Bg:    termcell.TermRGB(0, 0, 255),
	})
	green := solidImage(t, color.NRGBA{G: 255, A: 255})

	tests := []struct {
		name      string
		above     bool
		atGlyph   termcell.Color
		atNoGlyph termcell.Color
	}{
		{"below text", false, red, blue},
		{"above text", true, termcell.Color{G: 1, A: 1}, termcell.Color{G: 1, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(t, 4, 4)
			err := r.Render(&Frame{
				Cells:  []termcell.CellQuad{q},
				Atlas:  a.Binding(),
				Images: []Image{{Texture: green, Dst: image.Rect(0, 0, 4, 4), AboveText: tt.above}},
			})
			if err != nil {
				t.Fatal(err)
			}
			assertPixel(t, r.Target(), 0, 0, tt.atGlyph)
			assertPixel(t, r.Target(), 3, 0, tt.atNoGlyph)
		})
	}
}

func TestRenderImageClip(t *testing.T) {
	green := solidImage(t, color.NRGBA{G: 255, A: 255})
	r := newTestRenderer(t, 10, 10)
	err := r.Render(&Frame{Images: []Image{{
		Texture: green,
		Dst:     image.Rect(0, 0, 10, 10),
		Clip:    image.Rect(0, 0, 5, 10),
	}}})
	if err != nil {
		t.Fatal(err)
	}
	assertPixel(t, r.Target(), 4, 5, termcell.Color{G: 1, A: 1})
	assertPixel(t, r.Target(), 5, 5, termcell.Black)
	assertPixel(t, r.Target(), 9, 9, termcell.Black)
}

func TestRenderImageTransformOutsideUnit(t *testing.T) {
	green := solidImage(t, color.NRGBA{G: 255, A: 255})
	r := newTestRenderer(t, 6, 6)
	err := r.Render(&Frame{Images: []Image{{
		Texture:   green,
		Dst:       image.Rect(0, 0, 6, 6),
		Transform: blit.Translate(2, 0),
	}}})
	if err != nil {
		t.Fatal(err)
	}
	for y := range 6 {
		for x := range 6 {
			assertPixel(t, r.Target(), x, y, termcell.Black)
		}
	}
}

func TestRenderImageHalfAlphaBlends(t *testing.T) {
	white := solidImage(t, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	r := newTestRenderer(t, 2, 2)
	if err := r.Render(&Frame{Images: []Image{{Texture: white, Dst: image.Rect(0, 0, 2, 2)}}}); err != nil {
		t.Fatal(err)
	}
	got := r.Target().GetPixel(1, 1).NRGBA()
	if got.A != 255 || got.R < 126 || got.R > 130 {
		t.Errorf("pixel = %v, want opaque mid gray", got)
	}
}

func TestRenderImageFit(t *testing.T) {
	green := solidImage(t, color.NRGBA{G: 255, A: 255}) // 4×4
	tests := []struct {
		fit     blit.Fit
		visible []int // columns covered by the image on row 1
	}{
		{blit.FitFill, []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{blit.FitStart, []int{0, 1, 2, 3}},
		{blit.FitCenter, []int{2, 3, 4, 5}},
		{blit.FitEnd, []int{4, 5, 6, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.fit.String(), func(t *testing.T) {
			r := newTestRenderer(t, 8, 4)
			err := r.Render(&Frame{Images: []Image{{
				Texture: green,
				Dst:     image.Rect(0, 0, 8, 4),
				Fit:     tt.fit,
			}}})
			if err != nil {
				t.Fatal(err)
			}
			want := make([]termcell.Color, 8)
			for x := range want {
				want[x] = termcell.Black
			}
			for _, x := range tt.visible {
				want[x] = termcell.Color{G: 1, A: 1}
			}
			for x, c := range want {
				assertPixel(t, r.Target(), x, 1, c)
			}
		})
	}
}

// unsized hides the texture size, so Fit cannot apply.
type unsized struct{ termcell.Texture }

func TestRenderImageFitNeedsSize(t *testing.T) {
	green := solidImage(t, color.NRGBA{G: 255, A: 255})
	r := newTestRenderer(t, 8, 4)
	err := r.Render(&Frame{Images: []Image{{
		Texture: unsized{green},
		Dst:     image.Rect(0, 0, 8, 4),
		Fit:     blit.FitCenter,
	}}})
	if err != nil {
		t.Fatal(err)
	}
	assertPixel(t, r.Target(), 0, 1, termcell.Color{G: 1, A: 1})
}

func TestPresent(t *testing.T) {
	src := NewPixmap(2, 2)
	src.Clear(red)
	margin := blue

	t.Run("aspect", func(t *testing.T) {
		dst := image.NewNRGBA(image.Rect(0, 0, 3, 4))
		Present(dst, src, margin, PresentAspect)
		for y := range 4 {
			for x := range 3 {
				want := margin.NRGBA()
				if x < 2 && y < 2 {
					want = red.NRGBA()
				}
				if got := dst.NRGBAAt(x, y); got != want {
					t.Errorf("(%d, %d) = %v, want %v", x, y, got, want)
				}
			}
		}
	})
	t.Run("stretch", func(t *testing.T) {
		dst := image.NewNRGBA(image.Rect(0, 0, 5, 3))
		Present(dst, src, margin, PresentStretch)
		for y := range 3 {
			for x := range 5 {
				if got := dst.NRGBAAt(x, y); got != red.NRGBA() {
					t.Errorf("(%d, %d) = %v, want red", x, y, got)
				}
			}
		}
	})
}

// =============================================================================
// Parallelism and dirty bands
// =============================================================================

func gridFrame(t testing.TB) *Frame {
	t.Helper()
	a, err := atlas.New(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	var glyphs []termcell.Glyph
	for i := range 4 {
		mask := image.NewAlpha(image.Rect(0, 0, 5, 7))
		for y := range 7 {
			for x := range 5 {
				if (x+y+i)%3 == 0 {
					mask.SetAlpha(x, y, color.Alpha{A: uint8(60 * (i + 1))})
				}
			}
		}
		g, err := a.InsertMask(mask)
		if err != nil {
			t.Fatal(err)
		}
		glyphs = append(glyphs, g)
	}

	p := termcell.CellPacker{
		Metrics: termcell.LineMetrics{
			Underline: termcell.Band{Min: 6, Max: 7},
			Strikeout: termcell.Band{Min: 3, Max: 4},
		},
		CursorStyle:   termcell.CursorUnderscore,
		CursorVisible: true,
	}
	var cells []termcell.Cell
	for row := range 9 {
		for col := range 12 {
			n := row*12 + col
			cells = append(cells, termcell.Cell{
				X:      float32(col * 5),
				Y:      float32(row * 7),
				Glyph:  glyphs[n%4],
				Fg:     termcell.TermRGB(uint8(n*7), uint8(n*13), uint8(n*29)),
				Bg:     termcell.TermRGB(uint8(n*31), 40, uint8(n*3)),
				Attrs:  termcell.Attr(n % 512),
				Cursor: n == 50,
			})
		}
	}
	quads, err := p.PackAll(cells)
	if err != nil {
		t.Fatal(err)
	}
	return &Frame{
		Cells: quads,
		Atlas: a.Binding(),
		Images: []Image{{
			Texture: solidImage(t, color.NRGBA{R: 200, G: 100, A: 90}),
			Dst:     image.Rect(10, 10, 40, 50),
			Clip:    image.Rect(0, 20, 60, 45),
		}},
	}
}

func TestRenderDeterministicAcrossWorkers(t *testing.T) {
	f := gridFrame(t)

	ref := newTestRenderer(t, 60, 63, WithWorkers(1), WithBandHeight(63))
	if err := ref.Render(f); err != nil {
		t.Fatal(err)
	}

	configs := []struct {
		workers, band int
	}{
		{2, 7},
		{4, 1},
		{8, 10},
		{3, 0},
	}
	for _, c := range configs {
		r := newTestRenderer(t, 60, 63, WithWorkers(c.workers), WithBandHeight(c.band))
		if err := r.Render(f); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(r.Target().Data(), ref.Target().Data()) {
			t.Errorf("workers=%d band=%d: output differs from single-worker render", c.workers, c.band)
		}
	}
}

func TestRenderDirtyOnlyRedrawsMarkedBands(t *testing.T) {
	a, g := halfGlyphAtlas(t)
	var p termcell.CellPacker
	top := packOne(t, &p, termcell.Cell{X: 0, Y: 0, Glyph: g, Bg: termcell.TermRGB(0, 0, 255)})
	bottom := packOne(t, &p, termcell.Cell{X: 0, Y: 4, Glyph: g, Bg: termcell.TermRGB(0, 0, 255)})

	r := newTestRenderer(t, 4, 8, WithBandHeight(4))
	f := &Frame{Cells: []termcell.CellQuad{top, bottom}, Atlas: a.Binding()}
	if err := r.Render(f); err != nil {
		t.Fatal(err)
	}

	// Nothing is dirty after a full render.
	f.Cells[0].BgColor = red.Pack()
	f.Cells[1].BgColor = red.Pack()
	if err := r.RenderDirty(f); err != nil {
		t.Fatal(err)
	}
	assertPixel(t, r.Target(), 3, 0, blue)
	assertPixel(t, r.Target(), 3, 4, blue)

	r.InvalidateCell(&f.Cells[1])
	if err := r.RenderDirty(f); err != nil {
		t.Fatal(err)
	}
	assertPixel(t, r.Target(), 3, 0, blue)
	assertPixel(t, r.Target(), 3, 4, red)

	// Rectangles outside the target are ignored.
	r.Invalidate(image.Rect(0, 100, 4, 120))
	if err := r.RenderDirty(f); err != nil {
		t.Fatal(err)
	}
	assertPixel(t, r.Target(), 3, 0, blue)
}

// =============================================================================
// Geometry
// =============================================================================

func TestQuadBounds(t *testing.T) {
	tests := []struct {
		q    termcell.CellQuad
		want image.Rectangle
	}{
		{termcell.CellQuad{X: 0, Y: 0, W: 4, H: 3}, image.Rect(0, 0, 4, 3)},
		{termcell.CellQuad{X: 2.5, Y: 1, W: 2, H: 1}, image.Rect(2, 1, 4, 2)},
		{termcell.CellQuad{X: 2.6, Y: 0, W: 1, H: 1}, image.Rect(3, 0, 4, 1)},
		{termcell.CellQuad{X: -2, Y: -1, W: 3, H: 2}, image.Rect(-2, -1, 1, 1)},
	}
	for _, tt := range tests {
		if got := quadBounds(&tt.q); got != tt.want {
			t.Errorf("quadBounds(%+v) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestImageBounds(t *testing.T) {
	img := Image{Dst: image.Rect(0, 0, 10, 10)}
	if img.Bounds() != img.Dst {
		t.Errorf("unclipped Bounds() = %v", img.Bounds())
	}
	img.Clip = image.Rect(5, 5, 20, 20)
	if want := image.Rect(5, 5, 10, 10); img.Bounds() != want {
		t.Errorf("clipped Bounds() = %v, want %v", img.Bounds(), want)
	}
}

func BenchmarkRenderGrid(b *testing.B) {
	f := gridFrame(b)
	r, _ := NewRenderer(60, 63, WithBandHeight(7))
	defer r.Close()
	b.ResetTimer()
	for range b.N {
		_ = r.Render(f)
	}
}
