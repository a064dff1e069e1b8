// Package codec decodes the bit-packed per-cell parameters of the text-cell
// stage and provides the matching encoders used when building vertex data.
//
// Layouts (all little-endian u32 as uploaded to the GPU):
//
//	range16:  bits 16..31 = min, bits 0..15 = max       (half-open [min, max))
//	cursor:   bit 17 = visible, bit 16 = horizontal,
//	          bits 8..15 = max, bits 0..7 = min          (half-open [min, max))
//	color:    byte 0 = r, byte 1 = g, byte 2 = b, byte 3 = a
//
// Decoding is total: every u32 decodes to something. A range with min >= max
// is empty and matches no coordinate.
package codec

// Cursor flag bits.
const (
	CursorVisible    uint32 = 1 << 17
	CursorHorizontal uint32 = 1 << 16
)

// Range16 is a half-open [Min, Max) pixel range decoded from a range16 field.
type Range16 struct {
	Min, Max uint16
}

// Contains reports whether Min <= v < Max.
func (r Range16) Contains(v int) bool {
	return int(r.Min) <= v && v < int(r.Max)
}

// Empty reports whether the range matches no coordinate.
func (r Range16) Empty() bool {
	return r.Min >= r.Max
}

// DecodeRange16 unpacks a range16 field.
func DecodeRange16(v uint32) Range16 {
	return Range16{
		Min: uint16(v >> 16),
		Max: uint16(v & 0xFFFF),
	}
}

// EncodeRange16 packs [minV, maxV) into a range16 field.
func EncodeRange16(minV, maxV uint16) uint32 {
	return uint32(minV)<<16 | uint32(maxV)
}

// Cursor is a decoded cursor spec. Min and Max bound the cursor band along
// the row axis when Horizontal is set and along the column axis otherwise.
type Cursor struct {
	Visible    bool
	Horizontal bool
	Min, Max   uint8
}

// Contains reports whether Min <= v < Max.
func (c Cursor) Contains(v int) bool {
	return int(c.Min) <= v && v < int(c.Max)
}

// DecodeCursor unpacks a cursor spec field.
func DecodeCursor(v uint32) Cursor {
	return Cursor{
		Visible:    v&CursorVisible != 0,
		Horizontal: v&CursorHorizontal != 0,
		Min:        uint8(v & 0xFF),
		Max:        uint8((v >> 8) & 0xFF),
	}
}

// EncodeCursor packs c into a cursor spec field.
func EncodeCursor(c Cursor) uint32 {
	v := uint32(c.Max)<<8 | uint32(c.Min)
	if c.Visible {
		v |= CursorVisible
	}
	if c.Horizontal {
		v |= CursorHorizontal
	}
	return v
}

// DecodeColor unpacks an RGBA8 color into straight float components in [0,1].
func DecodeColor(v uint32) (r, g, b, a float32) {
	r = float32(v&0xFF) / 255
	g = float32((v>>8)&0xFF) / 255
	b = float32((v>>16)&0xFF) / 255
	a = float32(v>>24) / 255
	return r, g, b, a
}

// PackRGBA packs 8-bit channels into an RGBA8 color field.
func PackRGBA(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// UnpackRGBA splits an RGBA8 color field into its 8-bit channels.
func UnpackRGBA(v uint32) (r, g, b, a uint8) {
	return uint8(v), uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)
}
