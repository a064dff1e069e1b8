//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"image"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termcell"
)

// cellVertexStride is the byte stride per vertex of the text_fg pipeline.
// Layout per vertex:
//
//	position     (vec2<f32>) = 8 bytes  (location 0)
//	uv           (vec2<f32>) = 8 bytes  (location 1)
//	uv_x0        (f32)       = 4 bytes  (location 2)
//	fg_color     (u32)       = 4 bytes  (location 3)
//	color_glyph  (u32)       = 4 bytes  (location 4)
//	underline    (u32)       = 4 bytes  (location 5)
//	strikeout    (u32)       = 4 bytes  (location 6)
//	cursor       (u32)       = 4 bytes  (location 7)
//	cursor_color (u32)       = 4 bytes  (location 8)
//	padding                  = 4 bytes
//
// Total = 48 bytes per vertex.
const cellVertexStride = 48

// bgVertexStride: position (vec2<f32>) + color (u32) = 12 bytes.
const bgVertexStride = 12

// imageVertexStride: position (vec2<f32>) + uv (vec2<f32>) = 16 bytes.
const imageVertexStride = 16

// Uniform buffer sizes.
const (
	globalsUniformSize     = 16 // screen_size, pad
	atlasParamsUniformSize = 16 // atlas_size, pad
	imageParamsUniformSize = 48 // uv_clip, transform_row0, transform_row1
)

// verticesPerQuad and indicesPerQuad describe the TL, TR, BL, BR corner
// order drawn as triangles (0,1,2) and (2,3,1).
const (
	verticesPerQuad = 4
	indicesPerQuad  = 6
)

// cellVertexLayout matches VertexInput in text_fg.wgsl.
func cellVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: cellVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
				{Format: gputypes.VertexFormatFloat32, Offset: 16, ShaderLocation: 2},  // uv_x0
				{Format: gputypes.VertexFormatUint32, Offset: 20, ShaderLocation: 3},   // fg_color
				{Format: gputypes.VertexFormatUint32, Offset: 24, ShaderLocation: 4},   // color_glyph
				{Format: gputypes.VertexFormatUint32, Offset: 28, ShaderLocation: 5},   // underline
				{Format: gputypes.VertexFormatUint32, Offset: 32, ShaderLocation: 6},   // strikeout
				{Format: gputypes.VertexFormatUint32, Offset: 36, ShaderLocation: 7},   // cursor
				{Format: gputypes.VertexFormatUint32, Offset: 40, ShaderLocation: 8},   // cursor_color
			},
		},
	}
}

// bgVertexLayout matches VertexInput in text_bg.wgsl.
func bgVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: bgVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatUint32, Offset: 8, ShaderLocation: 1},    // color
			},
		},
	}
}

// imageVertexLayout matches VertexInput in image.wgsl.
func imageVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: imageVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
			},
		},
	}
}

// corner is one quad vertex: a position and the matching atlas texel.
type corner struct {
	x, y, u, v float32
}

// quadCorners returns the TL, TR, BL, BR corners of q.
func quadCorners(q *termcell.CellQuad) [verticesPerQuad]corner {
	return [verticesPerQuad]corner{
		{q.X, q.Y, q.U, q.V},
		{q.X + q.W, q.Y, q.U + q.W, q.V},
		{q.X, q.Y + q.H, q.U, q.V + q.H},
		{q.X + q.W, q.Y + q.H, q.U + q.W, q.V + q.H},
	}
}

// BuildCellVertices serializes cell quads into raw text_fg vertex bytes.
// Each quad produces 4 vertices x 48 bytes.
func BuildCellVertices(quads []termcell.CellQuad) []byte {
	if len(quads) == 0 {
		return nil
	}
	data := make([]byte, len(quads)*verticesPerQuad*cellVertexStride)
	off := 0
	for i := range quads {
		q := &quads[i]
		var colorGlyph uint32
		if q.ColorGlyph {
			colorGlyph = 1
		}
		for _, c := range quadCorners(q) {
			buf := data[off : off+cellVertexStride]
			putF32(buf[0:], c.x)
			putF32(buf[4:], c.y)
			putF32(buf[8:], c.u)
			putF32(buf[12:], c.v)
			putF32(buf[16:], q.UVX0)
			binary.LittleEndian.PutUint32(buf[20:], q.FgColor)
			binary.LittleEndian.PutUint32(buf[24:], colorGlyph)
			binary.LittleEndian.PutUint32(buf[28:], q.UnderlineRange)
			binary.LittleEndian.PutUint32(buf[32:], q.StrikeoutRange)
			binary.LittleEndian.PutUint32(buf[36:], q.CursorSpec)
			binary.LittleEndian.PutUint32(buf[40:], q.CursorColor)
			off += cellVertexStride
		}
	}
	return data
}

// BuildBgVertices serializes the background quads of cells.
func BuildBgVertices(quads []termcell.CellQuad) []byte {
	if len(quads) == 0 {
		return nil
	}
	data := make([]byte, len(quads)*verticesPerQuad*bgVertexStride)
	off := 0
	for i := range quads {
		for _, c := range quadCorners(&quads[i]) {
			putF32(data[off:], c.x)
			putF32(data[off+4:], c.y)
			binary.LittleEndian.PutUint32(data[off+8:], quads[i].BgColor)
			off += bgVertexStride
		}
	}
	return data
}

// BuildImageVertices serializes the quad covering dst with UVs spanning the
// full texture.
func BuildImageVertices(dst image.Rectangle) []byte {
	x0, y0 := float32(dst.Min.X), float32(dst.Min.Y)
	x1, y1 := float32(dst.Max.X), float32(dst.Max.Y)
	corners := [verticesPerQuad]corner{
		{x0, y0, 0, 0},
		{x1, y0, 1, 0},
		{x0, y1, 0, 1},
		{x1, y1, 1, 1},
	}
	data := make([]byte, verticesPerQuad*imageVertexStride)
	for i, c := range corners {
		off := i * imageVertexStride
		putF32(data[off:], c.x)
		putF32(data[off+4:], c.y)
		putF32(data[off+8:], c.u)
		putF32(data[off+12:], c.v)
	}
	return data
}

// generateQuadIndices generates index data for numQuads quads using the
// pattern 0,1,2, 2,3,1 over the TL, TR, BL, BR corners.
func generateQuadIndices(numQuads int) []uint32 {
	indices := make([]uint32, numQuads*indicesPerQuad)
	for i := 0; i < numQuads; i++ {
		base := i * indicesPerQuad
		v := uint32(i * verticesPerQuad) //nolint:gosec // bounded by MaxCells

		indices[base+0] = v + 0
		indices[base+1] = v + 1
		indices[base+2] = v + 2

		indices[base+3] = v + 2
		indices[base+4] = v + 3
		indices[base+5] = v + 1
	}
	return indices
}

// BuildQuadIndexData serializes quad indices into raw uint32 bytes.
func BuildQuadIndexData(numQuads int) []byte {
	indices := generateQuadIndices(numQuads)
	data := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(data[i*4:], idx)
	}
	return data
}

// makeGlobalsUniform creates the 16-byte screen-size uniform.
func makeGlobalsUniform(width, height uint32) []byte {
	buf := make([]byte, globalsUniformSize)
	putF32(buf[0:], float32(width))
	putF32(buf[4:], float32(height))
	return buf
}

// makeAtlasParamsUniform creates the 16-byte atlas-size uniform.
func makeAtlasParamsUniform(width, height uint32) []byte {
	buf := make([]byte, atlasParamsUniformSize)
	putF32(buf[0:], float32(width))
	putF32(buf[4:], float32(height))
	return buf
}

// makeImageParamsUniform creates the 48-byte image uniform: the UV clip
// rectangle followed by the two rows of the UV transform.
func makeImageParamsUniform(clip [4]float32, m f32.Aff3) []byte {
	buf := make([]byte, imageParamsUniformSize)
	vals := [12]float32{
		clip[0], clip[1], clip[2], clip[3],
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
	}
	for i, v := range vals {
		putF32(buf[i*4:], v)
	}
	return buf
}

func putF32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}
