package termcell

import "image"

// ToClip maps a pixel-space position to clip space for a target of the
// given size: x grows right, y grows up, both in [-1, 1] on the target.
func ToClip(p, screen [2]float32) [2]float32 {
	return [2]float32{
		2*p[0]/screen[0] - 1,
		-(2*p[1]/screen[1] - 1),
	}
}

// FromClip is the inverse of ToClip.
func FromClip(c, screen [2]float32) [2]float32 {
	return [2]float32{
		(c[0] + 1) * screen[0] / 2,
		(1 - c[1]) * screen[1] / 2,
	}
}

// ClipUV intersects the destination rectangle of an image with a clip
// rectangle. It returns the visible pixels and the matching sub-rectangle
// of the image in normalized UV space as (minU, minV, maxU, maxV).
// ok is false when nothing is visible.
func ClipUV(dst, clip image.Rectangle) (visible image.Rectangle, uv [4]float32, ok bool) {
	visible = dst.Intersect(clip)
	if visible.Empty() {
		return image.Rectangle{}, [4]float32{}, false
	}
	w, h := float32(dst.Dx()), float32(dst.Dy())
	uv = [4]float32{
		float32(visible.Min.X-dst.Min.X) / w,
		float32(visible.Min.Y-dst.Min.Y) / h,
		float32(visible.Max.X-dst.Min.X) / w,
		float32(visible.Max.Y-dst.Min.Y) / h,
	}
	return visible, uv, true
}

// PosToCell returns the grid column and row under pixel p for cells of
// cellW×cellH pixels. Positions left of or above the grid map to cell
// (0, 0), as does a zero cell size.
func PosToCell(p image.Point, cellW, cellH int) image.Point {
	if p.X < 0 || p.Y < 0 || cellW <= 0 || cellH <= 0 {
		return image.Point{}
	}
	return image.Pt(p.X/cellW, p.Y/cellH)
}
