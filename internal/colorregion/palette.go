package colorregion

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"
)

// PaletteMethod selects how a palette is extracted.
type PaletteMethod string

const (
	// PaletteHistogram ranks quantized buckets, the same pass as Analyze.
	PaletteHistogram PaletteMethod = "histogram"

	// PaletteKMeans clusters subsampled pixels with k-means.
	PaletteKMeans PaletteMethod = "kmeans"

	// PaletteDominantColor uses the dominantcolor package.
	PaletteDominantColor PaletteMethod = "dominantcolor"
)

// kmeansMaxSamples caps the k-means data set.
const kmeansMaxSamples = 12000

// PaletteColor is one palette entry. Weight is the share of sampled pixels
// it represents, in [0,1].
type PaletteColor struct {
	Color  RGB     `json:"color"`
	Hex    string  `json:"hex"`
	Weight float64 `json:"weight"`
}

// Palette lists colors by descending weight.
type Palette struct {
	Method       PaletteMethod  `json:"method"`
	Colors       []PaletteColor `json:"colors"`
	WeightMean   float64        `json:"weight_mean"`
	WeightStdDev float64        `json:"weight_std_dev"`
}

// Palette extracts up to k colors from img with the given method.
// An empty method selects PaletteHistogram.
func (a *Analyzer) Palette(img image.Image, method PaletteMethod, k int) (*Palette, error) {
	if k <= 0 {
		k = a.cfg.MaxRegions
	}

	var colors []PaletteColor
	var err error
	switch method {
	case "", PaletteHistogram:
		method = PaletteHistogram
		colors, err = a.histogramPalette(img, k)
	case PaletteKMeans:
		colors, err = a.kmeansPalette(img, k)
	case PaletteDominantColor:
		colors, err = dominantPalette(img, k)
	default:
		return nil, fmt.Errorf("unknown palette method: %s", method)
	}
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(colors, func(x, y PaletteColor) int {
		switch {
		case x.Weight > y.Weight:
			return -1
		case x.Weight < y.Weight:
			return 1
		}
		return 0
	})

	p := &Palette{Method: method, Colors: colors}
	if len(colors) > 0 {
		weights := make([]float64, len(colors))
		for i, c := range colors {
			weights[i] = c.Weight
		}
		p.WeightMean = stat.Mean(weights, nil)
		if len(weights) > 1 {
			p.WeightStdDev = stat.StdDev(weights, nil)
		}
	}
	return p, nil
}

func (a *Analyzer) histogramPalette(img image.Image, k int) ([]PaletteColor, error) {
	m, err := a.Analyze(img, k)
	if err != nil {
		return nil, err
	}
	colors := make([]PaletteColor, 0, len(m.Regions))
	for _, r := range m.Regions {
		colors = append(colors, PaletteColor{
			Color:  r.Color,
			Hex:    r.Color.Hex(),
			Weight: float64(r.Count) / float64(m.SampledPixels),
		})
	}
	return colors, nil
}

func (a *Analyzer) kmeansPalette(img image.Image, k int) ([]PaletteColor, error) {
	surface, err := toSurface(img)
	if err != nil {
		return nil, err
	}
	b := surface.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return []PaletteColor{}, nil
	}

	step := 1
	if w*h > kmeansMaxSamples {
		step = int(math.Sqrt(float64(w*h)/float64(kmeansMaxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(w*h, kmeansMaxSamples))
	for y := 0; y < h; y += step {
		for x := 0; x < w; x += step {
			off := y*surface.Stride + x*4
			if surface.Pix[off+3] < a.cfg.AlphaThreshold {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(surface.Pix[off]) / 255.0,
				float64(surface.Pix[off+1]) / 255.0,
				float64(surface.Pix[off+2]) / 255.0,
			})
		}
	}
	if len(dataset) == 0 {
		return []PaletteColor{}, nil
	}

	cc, err := kmeans.New().Partition(dataset, min(k, len(dataset)))
	if err != nil {
		return nil, fmt.Errorf("kmeans partition failed: %w", err)
	}

	colors := make([]PaletteColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		rgb := RGB{R: unit8(c.Center[0]), G: unit8(c.Center[1]), B: unit8(c.Center[2])}
		colors = append(colors, PaletteColor{
			Color:  rgb,
			Hex:    rgb.Hex(),
			Weight: float64(len(c.Observations)) / float64(len(dataset)),
		})
	}
	return colors, nil
}

func dominantPalette(img image.Image, k int) ([]PaletteColor, error) {
	surface, err := toSurface(img)
	if err != nil {
		return nil, err
	}
	if surface.Bounds().Empty() {
		return []PaletteColor{}, nil
	}

	found := dominantcolor.FindWeight(surface, k)
	colors := make([]PaletteColor, 0, len(found))
	for _, c := range found {
		rgb := RGB{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B}
		colors = append(colors, PaletteColor{Color: rgb, Hex: rgb.Hex(), Weight: c.Weight})
	}
	return colors, nil
}

// unit8 maps [0,1] to [0,255] with clamping.
func unit8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
