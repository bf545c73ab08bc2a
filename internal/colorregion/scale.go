package colorregion

import (
	"context"
	"image"

	"github.com/ironsheep/colormatch-mcp/internal/imaging"
)

// ScaleTo maps region coordinates onto an image of size d. It is used when
// the analyzed image was a nearest-neighbor copy of a d-sized original, and
// maps each coordinate to the original pixel the resampler read for it, so
// the reported pixel still has the region's color.
func (m *ImageColorMap) ScaleTo(d Dimensions) {
	src := m.ImageDimensions
	if src == d {
		return
	}
	if src.Width > 0 && src.Height > 0 {
		for i := range m.Regions {
			c := &m.Regions[i].Coordinates
			c.X = sourcePixel(c.X, src.Width, d.Width)
			c.Y = sourcePixel(c.Y, src.Height, d.Height)
		}
	}
	m.ImageDimensions = d
}

// sourcePixel maps pixel v of a size-wide nearest-neighbor copy to the
// pixel of the n-wide original the resampler read for it, the one under
// v's cell center.
func sourcePixel(v, size, n int) int {
	p := int((float64(v) + 0.5) * float64(n) / float64(size))
	return min(max(p, 0), max(n-1, 0))
}

// AnalyzeFit downsizes img so neither side exceeds maxDim, analyzes the
// copy under AnalyzeContext, and reports coordinates and dimensions of the
// original. Sampling, counts and SampledPixels describe the copy.
// maxDim <= 0 analyzes img as is.
func (a *Analyzer) AnalyzeFit(ctx context.Context, img image.Image, maxDim, maxRegions int) (*ImageColorMap, error) {
	if img == nil {
		return a.AnalyzeContext(ctx, img, maxRegions)
	}
	b := img.Bounds()
	m, err := a.AnalyzeContext(ctx, imaging.FitForAnalysis(img, maxDim), maxRegions)
	if err != nil {
		return nil, err
	}
	m.ScaleTo(Dimensions{Width: b.Dx(), Height: b.Dy()})
	return m, nil
}
