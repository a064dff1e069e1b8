// Package termcell composites terminal text cells.
//
// # Overview
//
// A terminal frame is drawn as one quad per glyph. Every pixel of a quad is
// produced by [Composite], which samples the glyph atlas and then applies,
// in fixed order:
//
//  1. glyph color selection (monochrome glyphs take the foreground color,
//     color glyphs keep their atlas color)
//  2. underline and strikeout bands
//  3. the cursor overlay
//
// Each step overrides the previous result. Composite is pure; the software
// renderer in package render calls it from many goroutines at once, and
// internal/gpu runs the same logic as a WGSL fragment shader.
//
// # Packed parameters
//
// Per-cell parameters travel as packed u32 values (see package codec):
// RGBA8 colors, 16-bit row ranges and an 8-bit cursor band. [CellPacker]
// builds them from terminal cells:
//
//	p := termcell.CellPacker{
//	    Metrics:       metrics,
//	    CursorStyle:   termcell.CursorBlock,
//	    CursorVisible: true,
//	}
//	quad, err := p.Pack(termcell.Cell{
//	    X: 0, Y: 0,
//	    Glyph: glyph,
//	    Fg:    termcell.TermRGB(255, 0, 0),
//	    Attrs: termcell.AttrUnderlined,
//	})
//
// # Alpha
//
// Composite returns straight alpha. The software renderer blends it with
// straight source-over; the GPU shaders premultiply before the
// premultiplied-alpha blend, which yields the same result.
//
// # Logging
//
// termcell is silent by default. Use [SetLogger] to enable diagnostics
// for this package and its sub-packages.
package termcell
