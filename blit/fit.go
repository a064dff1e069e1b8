package blit

import (
	"fmt"

	"golang.org/x/image/math/f32"
)

// Fit selects how an image is scaled into its destination rectangle.
type Fit uint8

const (
	// FitFill stretches the image over the whole rectangle.
	FitFill Fit = iota
	// FitStart scales on whichever axis keeps the aspect ratio and aligns
	// the image left or top.
	FitStart
	// FitCenter is FitStart centered on the free axis.
	FitCenter
	// FitEnd is FitStart aligned right or bottom.
	FitEnd
	// FitHorizontalStart fills the width and keeps the aspect ratio. The
	// image is clipped or leaves a gap vertically, aligned to the top.
	FitHorizontalStart
	FitHorizontalCenter
	FitHorizontalEnd
	// FitVerticalStart fills the height and keeps the aspect ratio. The
	// image is clipped or leaves a gap horizontally, aligned to the left.
	FitVerticalStart
	FitVerticalCenter
	FitVerticalEnd
)

var fitNames = [...]string{
	FitFill:             "fill",
	FitStart:            "start",
	FitCenter:           "center",
	FitEnd:              "end",
	FitHorizontalStart:  "horizontal-start",
	FitHorizontalCenter: "horizontal-center",
	FitHorizontalEnd:    "horizontal-end",
	FitVerticalStart:    "vertical-start",
	FitVerticalCenter:   "vertical-center",
	FitVerticalEnd:      "vertical-end",
}

// String returns the mode name.
func (f Fit) String() string {
	if int(f) < len(fitNames) {
		return fitNames[f]
	}
	return fmt.Sprintf("Fit(%d)", uint8(f))
}

// ParseFit returns the mode with the given String name.
func ParseFit(name string) (Fit, error) {
	for f, n := range fitNames {
		if n == name {
			return Fit(f), nil
		}
	}
	return FitFill, fmt.Errorf("blit: unknown fit %q", name)
}

type fitAxis uint8

const (
	axisAuto fitAxis = iota
	axisWidth
	axisHeight
)

type fitAlign uint8

const (
	alignStart fitAlign = iota
	alignCenter
	alignEnd
)

func (f Fit) mode() (fitAxis, fitAlign) {
	switch f {
	case FitStart, FitCenter, FitEnd:
		return axisAuto, fitAlign(f - FitStart)
	case FitHorizontalStart, FitHorizontalCenter, FitHorizontalEnd:
		return axisWidth, fitAlign(f - FitHorizontalStart)
	default:
		return axisHeight, fitAlign(f - FitVerticalStart)
	}
}

// FitTransform returns the destination-UV to texture-UV transform that
// places an imgW×imgH image into a viewW×viewH rectangle with mode fit.
// Texture UVs outside [0,1] are transparent, which leaves the letterbox
// gaps empty. FitFill and degenerate sizes yield the identity.
func FitTransform(fit Fit, imgW, imgH, viewW, viewH float32) f32.Aff3 {
	if fit == FitFill || int(fit) >= len(fitNames) || imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return Identity
	}
	axis, align := fit.mode()
	if axis == axisAuto {
		if viewW*imgH/viewH > imgW {
			axis = axisHeight
		} else {
			axis = axisWidth
		}
	}

	offset := func(s float32) float32 {
		switch align {
		case alignCenter:
			return (1 - s) / 2
		case alignEnd:
			return 1 - s
		}
		return 0
	}
	if axis == axisHeight {
		s := (viewW * imgH) / (viewH * imgW)
		return Mul(Translate(offset(s), 0), Scale(s, 1))
	}
	s := (viewH * imgW) / (viewW * imgH)
	return Mul(Translate(0, offset(s)), Scale(1, s))
}
