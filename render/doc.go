// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render draws terminal frames on the CPU.
//
// A [Renderer] owns a [Pixmap] target and a worker pool. Each frame is
// split into horizontal row bands; every band runs the full stage order
// on its own rows:
//
//  1. clear to the clear color
//  2. cell backgrounds (flat fill)
//  3. images placed below text
//  4. text cells (termcell.Composite, blended source-over)
//  5. images placed above text
//
// Bands never share rows, so workers write the target without locks and
// the output is identical for any worker count.
//
// # Usage
//
//	r, err := render.NewRenderer(640, 390, render.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	err = r.Render(&render.Frame{Cells: quads, Atlas: atlas.Binding()})
//	_ = r.Target().SavePNG("frame.png")
//
// # Partial redraw
//
// [Renderer.Invalidate] marks the bands overlapping a rectangle and
// [Renderer.RenderDirty] redraws only those, which is how blinking cells
// and the cursor are refreshed.
package render
