// Package atlas provides CPU textures for the software renderer: RGBA8
// images with a GPU-style sampler, and a glyph atlas that packs rasterized
// glyphs into one such image.
package atlas

import (
	"errors"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	"github.com/gogpu/termcell"
)

// Common errors for texture operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("atlas: invalid dimensions")

	// ErrOutOfBounds is returned when pixel coordinates are outside the image.
	ErrOutOfBounds = errors.New("atlas: coordinates out of bounds")

	// ErrAtlasFull is returned when a glyph does not fit the remaining space.
	ErrAtlasFull = errors.New("atlas: no space left")
)

// Filter selects how Sample reads texels.
type Filter uint8

const (
	// FilterNearest selects the texel containing the coordinate.
	FilterNearest Filter = iota
	// FilterBilinear interpolates the four nearest texel centers.
	FilterBilinear
)

// String returns a string representation of the filter.
func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "Nearest"
	case FilterBilinear:
		return "Bilinear"
	default:
		return "Unknown"
	}
}

// Image is a straight-alpha RGBA8 texture.
//
// Image is safe for concurrent reads. Writes require external
// synchronization and must not overlap a render.
type Image struct {
	pix    []byte
	width  int
	height int
	filter Filter
}

// NewImage creates a transparent image.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Image{
		pix:    make([]byte, width*height*4),
		width:  width,
		height: height,
	}, nil
}

// FromImage copies src into a new Image.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	img, err := NewImage(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	draw.Copy(img.NRGBA(), image.Point{}, src, b, draw.Src, nil)
	return img, nil
}

// NRGBA returns an image.NRGBA sharing the pixel memory of m.
func (m *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    m.pix,
		Stride: m.width * 4,
		Rect:   image.Rect(0, 0, m.width, m.height),
	}
}

// Width returns the image width in texels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in texels.
func (m *Image) Height() int { return m.height }

// Pix returns the raw RGBA8 rows, tightly packed.
func (m *Image) Pix() []byte { return m.pix }

// SetFilter sets the sampling filter.
func (m *Image) SetFilter(f Filter) { m.filter = f }

// RGBA8 returns the texel at (x, y). Out-of-bounds reads return zero.
func (m *Image) RGBA8(x, y int) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0, 0, 0, 0
	}
	i := (y*m.width + x) * 4
	return m.pix[i], m.pix[i+1], m.pix[i+2], m.pix[i+3]
}

// SetRGBA8 writes the texel at (x, y).
func (m *Image) SetRGBA8(x, y int, r, g, b, a uint8) error {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return ErrOutOfBounds
	}
	i := (y*m.width + x) * 4
	m.pix[i], m.pix[i+1], m.pix[i+2], m.pix[i+3] = r, g, b, a
	return nil
}

// Fill sets every texel to c.
func (m *Image) Fill(c color.NRGBA) {
	for i := 0; i < len(m.pix); i += 4 {
		m.pix[i], m.pix[i+1], m.pix[i+2], m.pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Sample reads the texture at normalized coordinates with clamp-to-edge
// addressing.
func (m *Image) Sample(u, v float32) termcell.Color {
	if m.filter == FilterBilinear {
		return m.sampleBilinear(u, v)
	}
	x := clamp(int(math32.Floor(u*float32(m.width))), 0, m.width-1)
	y := clamp(int(math32.Floor(v*float32(m.height))), 0, m.height-1)
	return m.texel(x, y)
}

func (m *Image) sampleBilinear(u, v float32) termcell.Color {
	fx := u*float32(m.width) - 0.5
	fy := v*float32(m.height) - 0.5
	x0f, y0f := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0f, fy-y0f
	x0, y0 := int(x0f), int(y0f)

	c00 := m.texel(clamp(x0, 0, m.width-1), clamp(y0, 0, m.height-1))
	c10 := m.texel(clamp(x0+1, 0, m.width-1), clamp(y0, 0, m.height-1))
	c01 := m.texel(clamp(x0, 0, m.width-1), clamp(y0+1, 0, m.height-1))
	c11 := m.texel(clamp(x0+1, 0, m.width-1), clamp(y0+1, 0, m.height-1))

	return lerp(lerp(c00, c10, tx), lerp(c01, c11, tx), ty)
}

func (m *Image) texel(x, y int) termcell.Color {
	i := (y*m.width + x) * 4
	return termcell.Color{
		R: float32(m.pix[i]) / 255,
		G: float32(m.pix[i+1]) / 255,
		B: float32(m.pix[i+2]) / 255,
		A: float32(m.pix[i+3]) / 255,
	}
}

func lerp(a, b termcell.Color, t float32) termcell.Color {
	return termcell.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
