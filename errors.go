package termcell

import "errors"

var (
	// ErrCursorRangeOverflow is returned when a cursor band does not fit the
	// 8-bit bounds of a packed cursor spec.
	ErrCursorRangeOverflow = errors.New("termcell: cursor range exceeds 8 bits")

	// ErrDecorationOverflow is returned when an atlas-relative underline or
	// strikeout row does not fit 16 bits.
	ErrDecorationOverflow = errors.New("termcell: decoration row exceeds 16 bits")

	// ErrEmptyGlyph is returned when a cell references a zero-sized atlas region.
	ErrEmptyGlyph = errors.New("termcell: glyph has zero size")
)
