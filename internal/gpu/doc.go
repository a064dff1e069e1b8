//go:build !nogpu

// Package gpu renders terminal frames with wgpu HAL render pipelines.
//
// The package runs the same stages as the software renderer as three WGSL
// programs:
//
//   - text_bg: one flat quad per cell with the packed background color
//   - image: clipped, UV-transformed image blits below or above the text
//   - text_fg: the text-cell compositing stage (glyph color, underline,
//     strikeout, cursor) over the glyph atlas
//
// Every pass premultiplies its output and blends with
// gputypes.BlendStatePremultiplied, which is the GPU form of the software
// renderer's straight-alpha source-over.
//
// # Vertex data
//
// Each cell is a quad of four vertices in TL, TR, BL, BR order indexed as
// (0,1,2) (2,3,1). Per-cell parameters are replicated on every vertex and
// read with flat interpolation. Vertex serializers and gputypes layouts
// share the stride constants in vertex.go.
//
// # Usage
//
//	r, err := gpu.NewCellRendererFromProvider(provider, gpu.PipelineConfig{})
//	if err != nil {
//	    return err
//	}
//	defer r.Destroy()
//	if err := r.Init(); err != nil {
//	    return err
//	}
//	_ = r.UploadAtlas(atlas.Pix(), atlas.Width(), atlas.Height())
//	err = r.Render(view, w, h, &gpu.Frame{Cells: quads})
//
// Build with -tags nogpu to leave the package out.
package gpu
