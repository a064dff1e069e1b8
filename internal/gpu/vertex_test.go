//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"image"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/termcell"
	"github.com/gogpu/termcell/blit"
)

func readF32(buf []byte, off uint64) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func readU32(buf []byte, off uint64) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

var testQuad = termcell.CellQuad{
	X: 10, Y: 20, W: 7, H: 13,
	U: 30, V: 40, UVX0: 30,
	FgColor:        0x11223344,
	ColorGlyph:     true,
	UnderlineRange: 0x00350036,
	StrikeoutRange: 0x002e002f,
	CursorSpec:     0x20700,
	CursorColor:    0x63ffffff,
	BgColor:        0xff000000,
}

// =============================================================================
// Layout / serializer agreement
// =============================================================================

func TestCellVertexLayoutMatchesSerializer(t *testing.T) {
	data := BuildCellVertices([]termcell.CellQuad{testQuad})
	if len(data) != verticesPerQuad*cellVertexStride {
		t.Fatalf("len = %d, want %d", len(data), verticesPerQuad*cellVertexStride)
	}

	layout := cellVertexLayout()[0]
	if layout.ArrayStride != cellVertexStride {
		t.Errorf("ArrayStride = %d, want %d", layout.ArrayStride, cellVertexStride)
	}

	// Second vertex is the top-right corner.
	v := data[cellVertexStride : 2*cellVertexStride]
	floats := map[uint32][]float32{
		0: {17, 20}, // position
		1: {37, 40}, // uv
		2: {30},     // uv_x0
	}
	ints := map[uint32]uint32{
		3: testQuad.FgColor,
		4: 1,
		5: testQuad.UnderlineRange,
		6: testQuad.StrikeoutRange,
		7: testQuad.CursorSpec,
		8: testQuad.CursorColor,
	}
	for _, a := range layout.Attributes {
		if want, ok := floats[uint32(a.ShaderLocation)]; ok {
			for i, w := range want {
				if got := readF32(v, uint64(a.Offset)+uint64(i*4)); got != w {
					t.Errorf("location %d[%d] = %v, want %v", a.ShaderLocation, i, got, w)
				}
			}
			continue
		}
		if want, ok := ints[uint32(a.ShaderLocation)]; ok {
			if a.Format != gputypes.VertexFormatUint32 {
				t.Errorf("location %d format = %v, want Uint32", a.ShaderLocation, a.Format)
			}
			if got := readU32(v, uint64(a.Offset)); got != want {
				t.Errorf("location %d = %#x, want %#x", a.ShaderLocation, got, want)
			}
			continue
		}
		t.Errorf("unexpected location %d", a.ShaderLocation)
	}
	if len(layout.Attributes) != 9 {
		t.Errorf("attributes = %d, want 9", len(layout.Attributes))
	}
}

func TestCellVertexCorners(t *testing.T) {
	data := BuildCellVertices([]termcell.CellQuad{testQuad})
	want := [verticesPerQuad][4]float32{
		{10, 20, 30, 40}, // TL
		{17, 20, 37, 40}, // TR
		{10, 33, 30, 53}, // BL
		{17, 33, 37, 53}, // BR
	}
	for i, w := range want {
		off := uint64(i * cellVertexStride)
		got := [4]float32{readF32(data, off), readF32(data, off+4), readF32(data, off+8), readF32(data, off+12)}
		if got != w {
			t.Errorf("vertex %d = %v, want %v", i, got, w)
		}
	}
}

func TestBgVertices(t *testing.T) {
	data := BuildBgVertices([]termcell.CellQuad{testQuad, testQuad})
	if len(data) != 2*verticesPerQuad*bgVertexStride {
		t.Fatalf("len = %d", len(data))
	}
	layout := bgVertexLayout()[0]
	if layout.ArrayStride != bgVertexStride {
		t.Errorf("ArrayStride = %d, want %d", layout.ArrayStride, bgVertexStride)
	}
	last := data[7*bgVertexStride:]
	if x, y := readF32(last, 0), readF32(last, 4); x != 17 || y != 33 {
		t.Errorf("BR = (%v, %v), want (17, 33)", x, y)
	}
	if c := readU32(last, uint64(layout.Attributes[1].Offset)); c != testQuad.BgColor {
		t.Errorf("color = %#x, want %#x", c, testQuad.BgColor)
	}
}

func TestImageVertices(t *testing.T) {
	data := BuildImageVertices(image.Rect(5, 6, 25, 16))
	if len(data) != verticesPerQuad*imageVertexStride {
		t.Fatalf("len = %d", len(data))
	}
	br := data[3*imageVertexStride:]
	got := [4]float32{readF32(br, 0), readF32(br, 4), readF32(br, 8), readF32(br, 12)}
	if want := [4]float32{25, 16, 1, 1}; got != want {
		t.Errorf("BR = %v, want %v", got, want)
	}
}

func TestBuildEmpty(t *testing.T) {
	if BuildCellVertices(nil) != nil || BuildBgVertices(nil) != nil {
		t.Error("empty input should produce nil")
	}
}

// =============================================================================
// Indices and uniforms
// =============================================================================

func TestQuadIndices(t *testing.T) {
	got := generateQuadIndices(2)
	want := []uint32{0, 1, 2, 2, 3, 1, 4, 5, 6, 6, 7, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	data := BuildQuadIndexData(2)
	if len(data) != 12*4 || readU32(data, 11*4) != 5 {
		t.Errorf("index bytes = %v", data)
	}
}

func TestUniforms(t *testing.T) {
	g := makeGlobalsUniform(640, 480)
	if len(g) != globalsUniformSize || readF32(g, 0) != 640 || readF32(g, 4) != 480 {
		t.Errorf("globals = %v", g)
	}
	a := makeAtlasParamsUniform(512, 256)
	if len(a) != atlasParamsUniformSize || readF32(a, 0) != 512 || readF32(a, 4) != 256 {
		t.Errorf("atlas params = %v", a)
	}

	m := blit.Mul(blit.Translate(0.25, 0), blit.Scale(0.5, 2))
	p := makeImageParamsUniform([4]float32{0, 0, 0.5, 1}, m)
	if len(p) != imageParamsUniformSize {
		t.Fatalf("image params len = %d", len(p))
	}
	if readF32(p, 8) != 0.5 {
		t.Errorf("clip max_u = %v, want 0.5", readF32(p, 8))
	}
	// row0 = (0.5, 0, 0.25, 0), row1 = (0, 2, 0, 0)
	if readF32(p, 16) != 0.5 || readF32(p, 24) != 0.25 || readF32(p, 36) != 2 {
		t.Errorf("transform rows = %v", p[16:])
	}
}

func BenchmarkBuildCellVertices(b *testing.B) {
	quads := make([]termcell.CellQuad, 80*24)
	for i := range quads {
		quads[i] = testQuad
	}
	b.ResetTimer()
	for range b.N {
		_ = BuildCellVertices(quads)
	}
}
