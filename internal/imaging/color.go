package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor is an opaque 8-bit color.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor is RGBColor plus straight (non-premultiplied) alpha, 0 fully
// transparent to 255 opaque.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor holds hue in degrees [0,360) and saturation and lightness as
// whole percentages.
type HSLColor struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// ColorResult describes one sampled pixel.
//
// Lab uses the same D65 space and 0-100 lightness scale as the region
// matcher, so a sampled pixel can be compared by eye with a Delta E score.
type ColorResult struct {
	Hex  string     `json:"hex"` // "#RRGGBB", alpha dropped
	RGB  RGBColor   `json:"rgb"`
	RGBA RGBAColor  `json:"rgba"`
	HSL  HSLColor   `json:"hsl"`
	Lab  [3]float64 `json:"lab"` // rounded to 2 decimals
}

// SampleColor reads the pixel at (x, y).
//
// Channels are un-premultiplied before conversion, so a half transparent
// pixel reports the same RGB that the color region analyzer buckets. Fully
// transparent pixels read as black.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %v", x, y, img.Bounds())
	}

	px := img.At(x, y)
	_, _, _, a := px.RGBA()
	c, _ := colorful.MakeColor(px)
	r, g, b := c.RGB255()

	return &ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", r, g, b),
		RGB:  RGBColor{R: r, G: g, B: b},
		RGBA: RGBAColor{R: r, G: g, B: b, A: uint8(a >> 8)},
		HSL:  toHSL(c),
		Lab:  toLab(c),
	}, nil
}

// Region is a rectangle with (X1, Y1) inclusive and (X2, Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts r to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

func toHSL(c colorful.Color) HSLColor {
	h, s, l := c.Hsl()
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}

func toLab(c colorful.Color) [3]float64 {
	l, a, b := c.Lab()
	round := func(v float64) float64 { return math.Round(v*10000) / 100 }
	return [3]float64{round(l), round(a), round(b)}
}
