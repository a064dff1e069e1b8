package termcell

// FragmentInput is the per-pixel input of the text-cell stage.
// Every field except UV is constant across a cell quad.
type FragmentInput struct {
	// UV is the atlas-space sample coordinate in texels.
	UV [2]float32
	// UVX0 is the atlas-space x origin of the glyph, used to derive
	// cell-local columns for vertical cursors.
	UVX0 float32

	FgColor        uint32 // packed RGBA8
	ColorGlyph     bool
	UnderlineRange uint32 // packed range16
	StrikeoutRange uint32 // packed range16
	CursorSpec     uint32 // packed cursor spec
	CursorColor    uint32 // packed RGBA8
}

// Texture is a read-only image sampled with normalized coordinates.
// Implementations must be safe for concurrent use.
type Texture interface {
	Sample(u, v float32) Color
}

// AtlasBinding pairs the glyph atlas with its size in texels.
// Atlas-space UVs are divided by the size before sampling.
type AtlasBinding struct {
	Texture       Texture
	Width, Height float32
}
