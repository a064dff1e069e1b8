// Package blit implements the stages that run beside text-cell compositing:
// flat background fill and image blits, plain or clipped and transformed.
package blit

import (
	"golang.org/x/image/math/f32"

	"github.com/gogpu/termcell"
)

// Identity is the identity UV transform.
var Identity = f32.Aff3{1, 0, 0, 0, 1, 0}

// UnitClip is a clip rectangle that admits every in-range UV.
var UnitClip = [4]float32{0, 0, 1, 1}

// Fill returns the unpacked background color.
func Fill(packed uint32) termcell.Color {
	return termcell.UnpackColor(packed)
}

// Sample reads tex at uv. UVs outside [0,1] on either axis yield
// transparent black.
func Sample(tex termcell.Texture, uv [2]float32) termcell.Color {
	if !inUnit(uv) {
		return termcell.Transparent
	}
	return tex.Sample(uv[0], uv[1])
}

// SampleClipped reads tex at uv after clipping and transforming it.
//
// clip is (minU, minV, maxU, maxV) in untransformed UV space, inclusive.
// A uv outside clip yields transparent black before the transform is
// evaluated. Otherwise uv is mapped through m, a row-major 2×3 affine
// matrix applied to (u, v, 1); a result outside [0,1] is also transparent.
func SampleClipped(tex termcell.Texture, uv [2]float32, m f32.Aff3, clip [4]float32) termcell.Color {
	if uv[0] < clip[0] || uv[1] < clip[1] || uv[0] > clip[2] || uv[1] > clip[3] {
		return termcell.Transparent
	}
	t := Apply(m, uv)
	if !inUnit(t) {
		return termcell.Transparent
	}
	return tex.Sample(t[0], t[1])
}

// Apply transforms uv by m.
func Apply(m f32.Aff3, uv [2]float32) [2]float32 {
	return [2]float32{
		m[0]*uv[0] + m[1]*uv[1] + m[2],
		m[3]*uv[0] + m[4]*uv[1] + m[5],
	}
}

// Scale returns a transform scaling UVs about the origin.
func Scale(sx, sy float32) f32.Aff3 {
	return f32.Aff3{sx, 0, 0, 0, sy, 0}
}

// Translate returns a transform offsetting UVs.
func Translate(tx, ty float32) f32.Aff3 {
	return f32.Aff3{1, 0, tx, 0, 1, ty}
}

// Mul returns the transform applying b first, then a.
func Mul(a, b f32.Aff3) f32.Aff3 {
	return f32.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func inUnit(uv [2]float32) bool {
	return uv[0] >= 0 && uv[0] <= 1 && uv[1] >= 0 && uv[1] <= 1
}
