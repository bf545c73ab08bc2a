package colorregion

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// sizeWeight keeps the size term secondary to color distance.
const sizeWeight = 0.5

// MatchScore is the pairing cost of two regions: Delta E plus half the
// absolute size difference.
func MatchScore(a, b ColorRegion) float64 {
	return ColorDistance(a.Color, b.Color) + sizeWeight*math.Abs(a.Size-b.Size)
}

// FindBestColorMatch pairs every region of a with every region of b and
// returns the lowest-scoring pair, or nil when that score exceeds tolerance
// or either side is empty. On equal scores the pair seen first in
// row-major order wins.
func FindBestColorMatch(a, b []ColorRegion, tolerance float64) *ColorMatch {
	var best *ColorMatch
	bestScore := math.Inf(1)

	for i := range a {
		for j := range b {
			score := MatchScore(a[i], b[j])
			if score < bestScore {
				bestScore = score
				best = &ColorMatch{
					RegionA: a[i],
					RegionB: b[j],
					IndexA:  i,
					IndexB:  j,
					Score:   score,
				}
			}
		}
	}

	if best == nil || best.Score > tolerance {
		return nil
	}
	return best
}

// Match runs FindBestColorMatch with the configured tolerance.
func (a *Analyzer) Match(x, y []ColorRegion) *ColorMatch {
	return FindBestColorMatch(x, y, a.cfg.ColorTolerance)
}

// ScoreMatrix returns the len(a) x len(b) grid of MatchScore values, or nil
// when either side is empty.
func ScoreMatrix(a, b []ColorRegion) *mat.Dense {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	m := mat.NewDense(len(a), len(b), nil)
	for i := range a {
		for j := range b {
			m.Set(i, j, MatchScore(a[i], b[j]))
		}
	}
	return m
}

// ScoreRows flattens a score matrix into row slices for JSON output.
func ScoreRows(m *mat.Dense) [][]float64 {
	if m == nil {
		return [][]float64{}
	}
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows
}
