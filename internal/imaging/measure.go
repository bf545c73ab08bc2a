package imaging

import (
	"image"
	"math"
)

// Point represents a 2D point
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistanceResult contains measurement information
type DistanceResult struct {
	DistancePixels        float64 `json:"distance_pixels"`
	DeltaX                int     `json:"delta_x"`
	DeltaY                int     `json:"delta_y"`
	AngleDegrees          float64 `json:"angle_degrees"`
	DistancePercentWidth  float64 `json:"distance_percent_width"`
	DistancePercentHeight float64 `json:"distance_percent_height"`
}

// MeasureDistance calculates the distance between two points on a frame of
// the given size. Percentages are 0 when the matching dimension is 0.
func MeasureDistance(frame image.Point, from, to Point) *DistanceResult {
	deltaX := to.X - from.X
	deltaY := to.Y - from.Y

	distance := math.Sqrt(float64(deltaX*deltaX + deltaY*deltaY))

	// Calculate angle in degrees (0 = horizontal right, 90 = down)
	angle := math.Atan2(float64(deltaY), float64(deltaX)) * 180 / math.Pi

	result := &DistanceResult{
		DistancePixels: math.Round(distance*100) / 100,
		DeltaX:         deltaX,
		DeltaY:         deltaY,
		AngleDegrees:   math.Round(angle*10) / 10,
	}
	if frame.X > 0 {
		result.DistancePercentWidth = math.Round(distance/float64(frame.X)*1000) / 10
	}
	if frame.Y > 0 {
		result.DistancePercentHeight = math.Round(distance/float64(frame.Y)*1000) / 10
	}
	return result
}
