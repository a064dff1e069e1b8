// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/termcell"
	"github.com/gogpu/termcell/blit"
)

// Frame is everything drawn in one render call.
type Frame struct {
	// Cells are drawn in order; later cells blend over earlier ones.
	Cells []termcell.CellQuad
	// Atlas is the glyph atlas sampled by Cells.
	Atlas termcell.AtlasBinding
	// Images are drawn in order within their layer.
	Images []Image
}

// Image is a texture placed on the target.
type Image struct {
	Texture termcell.Texture
	// Dst is the destination rectangle in target pixels.
	Dst image.Rectangle
	// Clip restricts the visible part of Dst. The zero rectangle means
	// no clipping.
	Clip image.Rectangle
	// Fit scales the texture into Dst. Modes other than blit.FitFill need
	// a texture that reports its size (see Sized).
	Fit blit.Fit
	// Transform maps destination UVs to texture UVs after Fit. The zero
	// value is the identity.
	Transform f32.Aff3
	// AboveText draws the image after the text cells instead of before.
	AboveText bool
}

// Sized is a texture that knows its size in texels.
type Sized interface {
	Width() int
	Height() int
}

// uvTransform returns the full destination-UV to texture-UV transform.
func (img *Image) uvTransform() f32.Aff3 {
	m := img.Transform
	if m == f32Zero {
		m = blit.Identity
	}
	if img.Fit == blit.FitFill {
		return m
	}
	tex, ok := img.Texture.(Sized)
	if !ok {
		return m
	}
	fit := blit.FitTransform(img.Fit,
		float32(tex.Width()), float32(tex.Height()),
		float32(img.Dst.Dx()), float32(img.Dst.Dy()))
	return blit.Mul(m, fit)
}

// Bounds returns the pixels the image can touch.
func (img *Image) Bounds() image.Rectangle {
	if img.Clip.Empty() {
		return img.Dst
	}
	return img.Dst.Intersect(img.Clip)
}

// quadBounds returns the pixels whose centers lie inside the quad.
func quadBounds(q *termcell.CellQuad) image.Rectangle {
	return image.Rect(
		pixelStart(q.X), pixelStart(q.Y),
		pixelStart(q.X+q.W), pixelStart(q.Y+q.H),
	)
}

// pixelStart returns the first pixel whose center is at or after edge.
func pixelStart(edge float32) int {
	return int(math32.Ceil(edge - 0.5))
}

var f32Zero f32.Aff3
