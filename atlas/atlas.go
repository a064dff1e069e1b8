package atlas

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/termcell"
)

// Key identifies a cached glyph.
type Key struct {
	Rune  rune
	Style termcell.Attr // bold and italic only
	Wide  bool
}

// Atlas packs glyph bitmaps into one texture using shelf allocation:
// glyphs fill a row left to right, and a new shelf starts below the
// tallest glyph of the current one.
//
// Insertions are serialized internally. Sampling is lock-free and must not
// overlap an insertion.
type Atlas struct {
	*Image

	mu      sync.Mutex
	padding int
	shelfX  int
	shelfY  int
	shelfH  int
	glyphs  map[Key]termcell.Glyph
}

// New creates an empty atlas. Glyphs are separated by one texel of padding
// so nearest sampling at quad edges never reads a neighbor.
func New(width, height int) (*Atlas, error) {
	img, err := NewImage(width, height)
	if err != nil {
		return nil, err
	}
	return &Atlas{
		Image:   img,
		padding: 1,
		glyphs:  make(map[Key]termcell.Glyph),
	}, nil
}

// Binding returns the atlas as a compositing binding.
func (a *Atlas) Binding() termcell.AtlasBinding {
	return termcell.AtlasBinding{
		Texture: a,
		Width:   float32(a.width),
		Height:  float32(a.height),
	}
}

// Allocate reserves a w×h region.
func (a *Atlas) Allocate(w, h int) (image.Rectangle, error) {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, ErrInvalidDimensions
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocateLocked(w, h)
}

func (a *Atlas) allocateLocked(w, h int) (image.Rectangle, error) {
	if w > a.width || h > a.height {
		return image.Rectangle{}, fmt.Errorf("%dx%d in %dx%d: %w", w, h, a.width, a.height, ErrAtlasFull)
	}
	if a.shelfX+w > a.width {
		a.shelfY += a.shelfH + a.padding
		a.shelfX, a.shelfH = 0, 0
	}
	if a.shelfY+h > a.height {
		return image.Rectangle{}, fmt.Errorf("%dx%d: %w", w, h, ErrAtlasFull)
	}
	r := image.Rect(a.shelfX, a.shelfY, a.shelfX+w, a.shelfY+h)
	a.shelfX += w + a.padding
	a.shelfH = max(a.shelfH, h)
	return r, nil
}

// InsertMask stores a coverage mask as white texels whose alpha is the
// coverage. The glyph is monochrome: the compositor tints it with the
// cell foreground.
func (a *Atlas) InsertMask(mask *image.Alpha) (termcell.Glyph, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.insertMaskLocked(mask)
}

func (a *Atlas) insertMaskLocked(mask *image.Alpha) (termcell.Glyph, error) {
	b := mask.Bounds()
	if b.Empty() {
		return termcell.Glyph{}, ErrInvalidDimensions
	}
	r, err := a.allocateLocked(b.Dx(), b.Dy())
	if err != nil {
		return termcell.Glyph{}, err
	}
	draw.DrawMask(a.NRGBA(), r, image.White, image.Point{}, mask, b.Min, draw.Src)
	return glyphOf(r, false), nil
}

// InsertImage scales src into a w×h region and stores it as a color glyph.
func (a *Atlas) InsertImage(src image.Image, w, h int) (termcell.Glyph, error) {
	r, err := a.Allocate(w, h)
	if err != nil {
		return termcell.Glyph{}, err
	}
	draw.CatmullRom.Scale(a.NRGBA(), r, src, src.Bounds(), draw.Src, nil)
	return glyphOf(r, true), nil
}

// Lookup returns a previously stored glyph.
func (a *Atlas) Lookup(k Key) (termcell.Glyph, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, ok := a.glyphs[k]
	return g, ok
}

// Store records a glyph under k.
func (a *Atlas) Store(k Key, g termcell.Glyph) {
	a.mu.Lock()
	a.glyphs[k] = g
	a.mu.Unlock()
}

// Len returns the number of stored glyphs.
func (a *Atlas) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.glyphs)
}

// Reset discards all glyphs and clears the texture.
func (a *Atlas) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.pix)
	clear(a.glyphs)
	a.shelfX, a.shelfY, a.shelfH = 0, 0, 0
}

func glyphOf(r image.Rectangle, colorGlyph bool) termcell.Glyph {
	return termcell.Glyph{
		X:     uint32(r.Min.X),
		Y:     uint32(r.Min.Y),
		W:     uint32(r.Dx()),
		H:     uint32(r.Dy()),
		Color: colorGlyph,
	}
}
