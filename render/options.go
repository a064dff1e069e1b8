// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/termcell"

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := render.NewRenderer(800, 600,
//	    render.WithWorkers(4),
//	    render.WithClearColor(termcell.Hex("#1e1e2e")),
//	)
type Option func(*options)

type options struct {
	workers    int
	bandHeight int
	clear      termcell.Color
}

func defaultOptions() options {
	return options{
		workers:    0, // GOMAXPROCS
		bandHeight: 0, // derived from height and workers
		clear:      termcell.Black,
	}
}

// WithWorkers sets the number of render workers. Zero or negative uses
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBandHeight sets the number of rows rendered per work item. Use the
// cell height so bands follow terminal rows. Zero picks a size from the
// target height and worker count.
func WithBandHeight(rows int) Option {
	return func(o *options) {
		o.bandHeight = rows
	}
}

// WithClearColor sets the color the target is cleared to before drawing.
func WithClearColor(c termcell.Color) Option {
	return func(o *options) {
		o.clear = c
	}
}
