package parallel

// Band is a half-open range of target rows [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Height returns the number of rows in the band.
func (b Band) Height() int { return b.Y1 - b.Y0 }

// SplitRows partitions [0, height) into consecutive bands of bandHeight
// rows. The last band may be shorter. Non-positive bandHeight yields a
// single band.
func SplitRows(height, bandHeight int) []Band {
	if height <= 0 {
		return nil
	}
	if bandHeight <= 0 || bandHeight >= height {
		return []Band{{0, height}}
	}
	bands := make([]Band, 0, (height+bandHeight-1)/bandHeight)
	for y := 0; y < height; y += bandHeight {
		bands = append(bands, Band{y, min(y+bandHeight, height)})
	}
	return bands
}

// BandHeightFor picks a band height that gives each worker several bands,
// rounded up to a multiple of align (the cell height) so bands follow
// terminal rows.
func BandHeightFor(height, workers, align int) int {
	if workers <= 0 {
		workers = 1
	}
	if align <= 0 {
		align = 1
	}
	h := height / (workers * 4)
	h = (h + align - 1) / align * align
	return max(h, align)
}
