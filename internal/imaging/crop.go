package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodedImage is a PNG rendered for transport
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropImage returns the part of img inside r. r must be non-empty and lie
// within img's bounds.
func CropImage(img image.Image, r Region) (image.Image, error) {
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid crop region (%d,%d)-(%d,%d): x1 must be < x2, y1 must be < y2", r.X1, r.Y1, r.X2, r.Y2)
	}
	if rect := r.Rect(); !rect.In(img.Bounds()) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, img.Bounds())
	}
	return imaging.Crop(img, r.Rect()), nil
}

// Crop extracts a rectangular region, optionally scales it, and encodes it
func Crop(img image.Image, x1, y1, x2, y2 int, scale float64) (*EncodedImage, error) {
	cropped, err := CropImage(img, Region{X1: x1, Y1: y1, X2: x2, Y2: y2})
	if err != nil {
		return nil, err
	}
	return EncodePNG(scaleImage(cropped, scale))
}

func scaleImage(img image.Image, scale float64) image.Image {
	if scale == 1.0 || scale <= 0 {
		return img
	}
	newWidth := int(float64(img.Bounds().Dx()) * scale)
	newHeight := int(float64(img.Bounds().Dy()) * scale)
	return imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
}

// Quadrant edges along one axis of length n.
const (
	edgeStart = iota
	edgeQuarter
	edgeMid
	edgeThreeQuarter
	edgeEnd
)

func edgeAt(e, n int) int {
	switch e {
	case edgeQuarter:
		return n / 4
	case edgeMid:
		return n / 2
	case edgeThreeQuarter:
		return n - n/4
	case edgeEnd:
		return n
	}
	return 0
}

// quadrants maps each named region to its x1, y1, x2, y2 edges.
var quadrants = map[string][4]int{
	"top-left":     {edgeStart, edgeStart, edgeMid, edgeMid},
	"top-right":    {edgeMid, edgeStart, edgeEnd, edgeMid},
	"bottom-left":  {edgeStart, edgeMid, edgeMid, edgeEnd},
	"bottom-right": {edgeMid, edgeMid, edgeEnd, edgeEnd},
	"top-half":     {edgeStart, edgeStart, edgeEnd, edgeMid},
	"bottom-half":  {edgeStart, edgeMid, edgeEnd, edgeEnd},
	"left-half":    {edgeStart, edgeStart, edgeMid, edgeEnd},
	"right-half":   {edgeMid, edgeStart, edgeEnd, edgeEnd},
	"center":       {edgeQuarter, edgeQuarter, edgeThreeQuarter, edgeThreeQuarter},
}

// QuadrantRegion resolves a named region (top-left, right-half, center, ...)
// of an image with the given bounds. Odd sizes round the midline down.
func QuadrantRegion(bounds image.Rectangle, name string) (Region, error) {
	e, ok := quadrants[name]
	if !ok {
		return Region{}, fmt.Errorf("unknown region: %s", name)
	}
	w, h := bounds.Dx(), bounds.Dy()
	return Region{
		X1: bounds.Min.X + edgeAt(e[0], w),
		Y1: bounds.Min.Y + edgeAt(e[1], h),
		X2: bounds.Min.X + edgeAt(e[2], w),
		Y2: bounds.Min.Y + edgeAt(e[3], h),
	}, nil
}

// CropQuadrant extracts a named region from an image and encodes it
func CropQuadrant(img image.Image, name string, scale float64) (*EncodedImage, error) {
	r, err := QuadrantRegion(img.Bounds(), name)
	if err != nil {
		return nil, err
	}
	return Crop(img, r.X1, r.Y1, r.X2, r.Y2, scale)
}

// FitForAnalysis shrinks img so neither side exceeds maxDim. Images that
// already fit, and maxDim <= 0, return img unchanged. Nearest-neighbor
// sampling keeps every output pixel a source color.
func FitForAnalysis(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.NearestNeighbor)
}
