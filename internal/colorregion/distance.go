package colorregion

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// go-colorful keeps L in [0,1]; Delta E is conventionally quoted with L in
// [0,100].
const labScale = 100

// Colorful converts c to a go-colorful color with channels in [0,1].
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Lab returns the CIE L*a*b* coordinates of c under D65, with L in [0,100].
//
// The conversion linearizes each sRGB channel, applies the sRGB to XYZ
// matrix normalized to the D65 white point, then the XYZ to Lab transform
// with the 0.008856 linearity threshold.
func (c RGB) Lab() (l, a, b float64) {
	l, a, b = c.Colorful().Lab()
	return l * labScale, a * labScale, b * labScale
}

// ColorDistance returns the CIE76 Delta E between two colors.
//
// The result is never negative, is zero for identical colors and does not
// depend on argument order.
func ColorDistance(a, b RGB) float64 {
	return a.Colorful().DistanceLab(b.Colorful()) * labScale
}

// ParseHex parses "#RRGGBB" or "#RGB".
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}
