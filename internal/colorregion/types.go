package colorregion

import "fmt"

// RGB is an opaque 8-bit color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex formats the color as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Point is a pixel position, 0-based from the top-left corner.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dimensions is the natural size of an analyzed image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ColorRegion is one dominant color of an image and where it was first seen.
type ColorRegion struct {
	// Color is the quantized bucket color.
	Color RGB `json:"color"`

	// Representative is the first unquantized sample that fell in the bucket.
	Representative RGB `json:"representative"`

	// Coordinates is the position of Representative in the image.
	Coordinates Point `json:"coordinates"`

	// Size approximates prominence in [0.1, 0.3). It is not measured.
	Size float64 `json:"size"`

	// Confidence is 0.9 - 0.1*rank.
	Confidence float64 `json:"confidence"`

	// Count is the number of samples in the bucket.
	Count int `json:"count"`
}

// ImageColorMap is the result of one analysis. Regions and DominantColors
// are index-aligned and ordered by dominance.
type ImageColorMap struct {
	Regions         []ColorRegion `json:"regions"`
	DominantColors  []RGB         `json:"dominant_colors"`
	ImageDimensions Dimensions    `json:"image_dimensions"`

	// SampledPixels counts the opaque samples behind the histogram.
	SampledPixels int `json:"sampled_pixels"`
}

// ColorMatch pairs one region of each image.
type ColorMatch struct {
	RegionA ColorRegion `json:"region_a"`
	RegionB ColorRegion `json:"region_b"`
	IndexA  int         `json:"index_a"`
	IndexB  int         `json:"index_b"`
	Score   float64     `json:"score"`
}
