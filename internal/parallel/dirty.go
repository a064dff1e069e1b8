package parallel

import (
	"math/bits"
	"sync/atomic"
)

// DirtyBands tracks which row bands need redrawing using an atomic bitmap.
// All methods are safe for concurrent use.
type DirtyBands struct {
	words      []atomic.Uint64
	bandHeight int
	bands      int
}

// NewDirtyBands creates a tracker for a target of height rows split into
// bands of bandHeight rows. All bands start clean.
// Returns nil if either dimension is non-positive.
func NewDirtyBands(height, bandHeight int) *DirtyBands {
	if height <= 0 || bandHeight <= 0 {
		return nil
	}
	n := (height + bandHeight - 1) / bandHeight
	return &DirtyBands{
		words:      make([]atomic.Uint64, (n+63)/64),
		bandHeight: bandHeight,
		bands:      n,
	}
}

// Mark marks band i as dirty. Out-of-range indices are ignored.
func (d *DirtyBands) Mark(i int) {
	if i < 0 || i >= d.bands {
		return
	}
	d.words[i/64].Or(1 << (i & 63))
}

// MarkRows marks every band overlapping rows [y0, y1).
func (d *DirtyBands) MarkRows(y0, y1 int) {
	y0 = max(y0, 0)
	if y1 <= y0 {
		return
	}
	last := min((y1-1)/d.bandHeight, d.bands-1)
	for i := y0 / d.bandHeight; i <= last; i++ {
		d.Mark(i)
	}
}

// MarkAll marks every band dirty.
func (d *DirtyBands) MarkAll() {
	full := d.bands / 64
	for i := 0; i < full; i++ {
		d.words[i].Store(^uint64(0))
	}
	if rem := d.bands % 64; rem > 0 {
		d.words[full].Store(1<<rem - 1)
	}
}

// IsDirty reports whether band i is dirty.
func (d *DirtyBands) IsDirty(i int) bool {
	if i < 0 || i >= d.bands {
		return false
	}
	return d.words[i/64].Load()&(1<<(i&63)) != 0
}

// Count returns the number of dirty bands.
func (d *DirtyBands) Count() int {
	n := 0
	for i := range d.words {
		n += bits.OnesCount64(d.words[i].Load())
	}
	return n
}

// TakeDirty returns the dirty bands in row order and clears them.
func (d *DirtyBands) TakeDirty(height int) []Band {
	var out []Band
	for w := range d.words {
		word := d.words[w].Swap(0)
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			word &^= 1 << bit
			i := w*64 + bit
			y0 := i * d.bandHeight
			out = append(out, Band{y0, min(y0+d.bandHeight, height)})
		}
	}
	return out
}

// BandHeight returns the rows per band.
func (d *DirtyBands) BandHeight() int { return d.bandHeight }
