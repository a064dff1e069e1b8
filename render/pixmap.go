// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/gogpu/termcell"
)

// Pixmap is a straight-alpha RGBA8 pixel buffer.
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a transparent pixmap.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int { return p.width }

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int { return p.height }

// Data returns the raw pixel data, 4 bytes per pixel, rows tightly packed.
func (p *Pixmap) Data() []uint8 { return p.data }

// SetPixel replaces the pixel at (x, y). Out-of-bounds writes are ignored.
func (p *Pixmap) SetPixel(x, y int, c termcell.Color) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	n := c.NRGBA()
	i := (y*p.width + x) * 4
	p.data[i+0] = n.R
	p.data[i+1] = n.G
	p.data[i+2] = n.B
	p.data[i+3] = n.A
}

// GetPixel returns the pixel at (x, y), or transparent when out of bounds.
func (p *Pixmap) GetPixel(x, y int) termcell.Color {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return termcell.Transparent
	}
	i := (y*p.width + x) * 4
	return termcell.Color{
		R: float32(p.data[i+0]) / 255,
		G: float32(p.data[i+1]) / 255,
		B: float32(p.data[i+2]) / 255,
		A: float32(p.data[i+3]) / 255,
	}
}

// BlendPixel composites c over the pixel at (x, y) with straight-alpha
// source-over.
func (p *Pixmap) BlendPixel(x, y int, c termcell.Color) {
	if c.A <= 0 {
		return
	}
	if c.A >= 1 {
		p.SetPixel(x, y, c)
		return
	}
	p.SetPixel(x, y, c.Over(p.GetPixel(x, y)))
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c termcell.Color) {
	p.ClearRows(0, p.height, c)
}

// ClearRows fills rows [y0, y1) with a color.
func (p *Pixmap) ClearRows(y0, y1 int, c termcell.Color) {
	y0, y1 = max(y0, 0), min(y1, p.height)
	n := c.NRGBA()
	for i := y0 * p.width * 4; i < y1*p.width*4; i += 4 {
		p.data[i+0] = n.R
		p.data[i+1] = n.G
		p.data[i+2] = n.B
		p.data[i+3] = n.A
	}
}

// ToImage copies the pixmap into an image.NRGBA.
func (p *Pixmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, p.ToImage()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.GetPixel(x, y).NRGBA()
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}
