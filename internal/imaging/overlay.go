package imaging

import (
	"image"
	"image/color"
	"image/draw"
)

// Marker is a point to highlight on a preview image
type Marker struct {
	X     int        // X coordinate (0-based, relative to the image origin)
	Y     int        // Y coordinate (0-based)
	Fill  color.RGBA // Swatch color, usually the region color
	Label string     // Digits and commas only
}

// markerRadius is the half-width of a marker swatch in pixels
const markerRadius = 5

// MarkerOverlayResult contains the annotated preview
type MarkerOverlayResult struct {
	EncodedImage
	Markers int `json:"markers"`
}

// MarkerOverlay draws a swatch with an outline at every marker, labels it,
// and encodes the result as PNG. Markers outside the image are clipped.
func MarkerOverlay(img image.Image, markers []Marker) (*MarkerOverlayResult, error) {
	bounds := img.Bounds()

	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}

	for _, m := range markers {
		outline := contrastColor(m.Fill)
		for dy := -markerRadius - 1; dy <= markerRadius+1; dy++ {
			for dx := -markerRadius - 1; dx <= markerRadius+1; dx++ {
				c := m.Fill
				if dx < -markerRadius || dx > markerRadius || dy < -markerRadius || dy > markerRadius {
					c = outline
				}
				setClipped(result, m.X+dx, m.Y+dy, c)
			}
		}
		if m.Label != "" {
			drawLabel(result, m.X+markerRadius+3, m.Y-markerRadius, m.Label, labelColor, bgColor)
		}
	}

	enc, err := EncodePNG(result)
	if err != nil {
		return nil, err
	}
	return &MarkerOverlayResult{EncodedImage: *enc, Markers: len(markers)}, nil
}

// contrastColor picks black or white, whichever stands out against c
func contrastColor(c color.RGBA) color.RGBA {
	luma := 299*int(c.R) + 587*int(c.G) + 114*int(c.B)
	if luma > 128*1000 {
		return color.RGBA{0, 0, 0, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// drawLabel draws a simple text label at the given position
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	// Simple 3x5 pixel font for digits and comma
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
	}

	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setClipped(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
