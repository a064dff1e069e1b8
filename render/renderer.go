// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/termcell"
	"github.com/gogpu/termcell/blit"
	"github.com/gogpu/termcell/internal/parallel"
)

var (
	// ErrInvalidDimensions is returned when the target size is non-positive.
	ErrInvalidDimensions = errors.New("render: invalid dimensions")

	// ErrNilAtlas is returned when a frame has cells but no atlas texture.
	ErrNilAtlas = errors.New("render: frame has cells but no atlas")

	// ErrNilTexture is returned when a frame image has no texture.
	ErrNilTexture = errors.New("render: image has no texture")

	// ErrClosed is returned when rendering with a closed renderer.
	ErrClosed = errors.New("render: renderer closed")
)

// Renderer draws frames into a Pixmap using a pool of workers.
//
// Render and RenderDirty must not be called concurrently. Invalidate is
// safe to call from any goroutine.
type Renderer struct {
	target *Pixmap
	pool   *parallel.WorkerPool
	dirty  *parallel.DirtyBands
	clear  termcell.Color
	closed bool
}

// NewRenderer creates a renderer with a width×height target.
func NewRenderer(width, height int, opts ...Option) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimensions)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	pool := parallel.NewWorkerPool(o.workers)
	bandH := o.bandHeight
	if bandH <= 0 {
		bandH = parallel.BandHeightFor(height, pool.Workers(), 1)
	}

	termcell.Logger().Debug("render: renderer created",
		"width", width, "height", height,
		"workers", pool.Workers(), "band_height", bandH)

	return &Renderer{
		target: NewPixmap(width, height),
		pool:   pool,
		dirty:  parallel.NewDirtyBands(height, bandH),
		clear:  o.clear,
	}, nil
}

// Target returns the pixmap frames are drawn into.
func (r *Renderer) Target() *Pixmap { return r.target }

// BandHeight returns the rows per work item.
func (r *Renderer) BandHeight() int { return r.dirty.BandHeight() }

// Workers returns the number of render workers.
func (r *Renderer) Workers() int { return r.pool.Workers() }

// Render draws the whole frame.
func (r *Renderer) Render(f *Frame) error {
	r.dirty.MarkAll()
	return r.RenderDirty(f)
}

// Invalidate marks the bands overlapping rect for the next RenderDirty.
func (r *Renderer) Invalidate(rect image.Rectangle) {
	rect = rect.Intersect(r.target.Bounds())
	if rect.Empty() {
		return
	}
	r.dirty.MarkRows(rect.Min.Y, rect.Max.Y)
}

// InvalidateCell marks the bands covered by a cell quad.
func (r *Renderer) InvalidateCell(q *termcell.CellQuad) {
	r.Invalidate(quadBounds(q))
}

// RenderDirty redraws only the bands marked since the last render. Each
// redrawn band is cleared and gets the full stage order, so the frame must
// describe the whole screen, not only the changes.
func (r *Renderer) RenderDirty(f *Frame) error {
	if r.closed {
		return ErrClosed
	}
	if err := validate(f); err != nil {
		return err
	}
	bands := r.dirty.TakeDirty(r.target.height)
	if len(bands) == 0 {
		return nil
	}

	termcell.Logger().Debug("render: frame",
		"cells", len(f.Cells), "images", len(f.Images), "bands", len(bands))

	r.pool.ForEach(len(bands), func(i int) {
		r.renderBand(f, bands[i])
	})
	return nil
}

// Close stops the workers. The target stays readable.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.pool.Close()
}

func validate(f *Frame) error {
	if f == nil {
		return nil
	}
	if len(f.Cells) > 0 && (f.Atlas.Texture == nil || f.Atlas.Width <= 0 || f.Atlas.Height <= 0) {
		return ErrNilAtlas
	}
	for i := range f.Images {
		if f.Images[i].Texture == nil {
			return fmt.Errorf("image %d: %w", i, ErrNilTexture)
		}
	}
	return nil
}

func (r *Renderer) renderBand(f *Frame, b parallel.Band) {
	band := image.Rect(0, b.Y0, r.target.width, b.Y1)
	r.target.ClearRows(b.Y0, b.Y1, r.clear)
	if f == nil {
		return
	}

	for i := range f.Cells {
		r.drawBackground(&f.Cells[i], band)
	}
	for i := range f.Images {
		if !f.Images[i].AboveText {
			r.drawImage(&f.Images[i], band)
		}
	}
	for i := range f.Cells {
		r.drawCell(&f.Cells[i], f.Atlas, band)
	}
	for i := range f.Images {
		if f.Images[i].AboveText {
			r.drawImage(&f.Images[i], band)
		}
	}
}

func (r *Renderer) drawBackground(q *termcell.CellQuad, band image.Rectangle) {
	area := quadBounds(q).Intersect(band)
	if area.Empty() {
		return
	}
	c := blit.Fill(q.BgColor)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			r.target.BlendPixel(x, y, c)
		}
	}
}

// drawCell composites every pixel of q whose center lies in band. Local
// coordinates are taken at pixel centers so floor() lands on the texel
// under the pixel.
func (r *Renderer) drawCell(q *termcell.CellQuad, atlas termcell.AtlasBinding, band image.Rectangle) {
	area := quadBounds(q).Intersect(band)
	if area.Empty() {
		return
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		ly := float32(y) + 0.5 - q.Y
		for x := area.Min.X; x < area.Max.X; x++ {
			lx := float32(x) + 0.5 - q.X
			c := termcell.Composite(q.Fragment(lx, ly), atlas)
			r.target.BlendPixel(x, y, c)
		}
	}
}

func (r *Renderer) drawImage(img *Image, band image.Rectangle) {
	if img.Dst.Empty() {
		return
	}
	uvClip := blit.UnitClip
	area := img.Dst
	if !img.Clip.Empty() {
		var ok bool
		area, uvClip, ok = termcell.ClipUV(img.Dst, img.Clip)
		if !ok {
			return
		}
	}
	area = area.Intersect(band)
	if area.Empty() {
		return
	}

	m := img.uvTransform()
	w, h := float32(img.Dst.Dx()), float32(img.Dst.Dy())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		v := (float32(y-img.Dst.Min.Y) + 0.5) / h
		for x := area.Min.X; x < area.Max.X; x++ {
			u := (float32(x-img.Dst.Min.X) + 0.5) / w
			c := blit.SampleClipped(img.Texture, [2]float32{u, v}, m, uvClip)
			r.target.BlendPixel(x, y, c)
		}
	}
}
