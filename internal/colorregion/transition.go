package colorregion

import (
	"image"
	"math"

	"github.com/ironsheep/colormatch-mcp/internal/imaging"
)

// NormalizedPoint is a position as fractions of the image width and height.
type NormalizedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var center = NormalizedPoint{X: 0.5, Y: 0.5}

// TransitionPlan anchors a crossfade from image A to image B.
//
// When a shared color is found, Origin is that color's position in A and
// Target its position in B. Otherwise both are the frame center and Match
// is nil.
type TransitionPlan struct {
	Anchored bool            `json:"anchored"`
	Match    *ColorMatch     `json:"match,omitempty"`
	Origin   NormalizedPoint `json:"origin"`
	Target   NormalizedPoint `json:"target"`

	// Vector is the Origin to Target displacement measured on A's frame.
	Vector *imaging.DistanceResult `json:"vector"`
}

// PlanTransition matches the regions of a and b and derives the anchor
// points of the crossfade.
func PlanTransition(a, b *ImageColorMap, tolerance float64) *TransitionPlan {
	plan := &TransitionPlan{Origin: center, Target: center}

	if m := FindBestColorMatch(a.Regions, b.Regions, tolerance); m != nil {
		plan.Anchored = true
		plan.Match = m
		plan.Origin = normalize(m.RegionA.Coordinates, a.ImageDimensions)
		plan.Target = normalize(m.RegionB.Coordinates, b.ImageDimensions)
	}

	frame := image.Pt(a.ImageDimensions.Width, a.ImageDimensions.Height)
	plan.Vector = imaging.MeasureDistance(frame, onFrame(plan.Origin, frame), onFrame(plan.Target, frame))
	return plan
}

// PlanTransition uses the configured tolerance.
func (a *Analyzer) PlanTransition(x, y *ImageColorMap) *TransitionPlan {
	return PlanTransition(x, y, a.cfg.ColorTolerance)
}

func normalize(p Point, d Dimensions) NormalizedPoint {
	if d.Width <= 0 || d.Height <= 0 {
		return center
	}
	return NormalizedPoint{
		X: float64(p.X) / float64(d.Width),
		Y: float64(p.Y) / float64(d.Height),
	}
}

func onFrame(p NormalizedPoint, frame image.Point) imaging.Point {
	return imaging.Point{
		X: int(math.Round(p.X * float64(frame.X))),
		Y: int(math.Round(p.Y * float64(frame.Y))),
	}
}
