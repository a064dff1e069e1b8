// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/termcell"
)

// PresentMode selects how a rendered frame is copied to a surface.
type PresentMode uint8

const (
	// PresentAspect copies the frame 1:1 at the top-left corner and fills
	// the rest of the surface with the margin color. Cells keep their
	// shape, and pixel positions match PosToCell.
	PresentAspect PresentMode = iota
	// PresentStretch scales the frame over the whole surface with nearest
	// sampling.
	PresentStretch
)

// Present copies src onto dst. Surface pixels not covered by the frame
// are set to margin.
func Present(dst draw.Image, src *Pixmap, margin termcell.Color, mode PresentMode) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	frame := src.ToImage()
	if mode == PresentStretch {
		draw.NearestNeighbor.Scale(dst, b, frame, frame.Bounds(), draw.Src, nil)
		return
	}
	draw.Draw(dst, b, image.NewUniform(margin.NRGBA()), image.Point{}, draw.Src)
	draw.Draw(dst, b, frame, image.Point{}, draw.Src)
}
