package colorregion

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
)

// Analyzer runs color analyses with a fixed configuration.
type Analyzer struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithRand sets the random source used for region sizes. Tests pass a
// seeded source to get repeatable output.
func WithRand(r *rand.Rand) Option {
	return func(a *Analyzer) {
		a.rng = r
	}
}

// NewAnalyzer returns an Analyzer for cfg. Zero-valued fields of cfg are
// filled from DefaultConfig.
func NewAnalyzer(cfg Config, opts ...Option) *Analyzer {
	a := &Analyzer{cfg: withDefaults(cfg)}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return a
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.SampleStride == 0 {
		cfg.SampleStride = def.SampleStride
	}
	if cfg.QuantizeStep == 0 {
		cfg.QuantizeStep = def.QuantizeStep
	}
	if cfg.AlphaThreshold == 0 {
		cfg.AlphaThreshold = def.AlphaThreshold
	}
	if cfg.MaxRegions == 0 {
		cfg.MaxRegions = def.MaxRegions
	}
	return cfg
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

var defaultAnalyzer = NewAnalyzer(DefaultConfig())

// AnalyzeImageColors analyzes img with the default configuration.
// maxRegions <= 0 selects the configured default.
func AnalyzeImageColors(img image.Image, maxRegions int) (*ImageColorMap, error) {
	return defaultAnalyzer.Analyze(img, maxRegions)
}

// Analyze builds the color map of img.
//
// Parameters:
//   - img: Any decoded image. Bounds need not start at the origin;
//     coordinates in the result are relative to the top-left pixel.
//   - maxRegions: Number of regions to keep. Values <= 0 use
//     Config.MaxRegions.
//
// Returns:
//   - *ImageColorMap: Regions ranked by sample count. Empty for zero-sized
//     or fully transparent images.
//   - error: *ExtractionError when the image cannot be copied to a pixel
//     buffer.
func (a *Analyzer) Analyze(img image.Image, maxRegions int) (*ImageColorMap, error) {
	surface, err := toSurface(img)
	if err != nil {
		return nil, err
	}
	b := surface.Bounds()
	return a.analyzePixels(b.Dx(), b.Dy(), surface.Stride, surface.Pix, maxRegions), nil
}

// AnalyzeRGBA analyzes a tightly packed, non-premultiplied RGBA buffer of
// width*height pixels.
func (a *Analyzer) AnalyzeRGBA(width, height int, pix []byte, maxRegions int) (*ImageColorMap, error) {
	if width < 0 || height < 0 {
		return nil, &ExtractionError{Op: "buffer", Err: fmt.Errorf("negative dimensions %dx%d", width, height)}
	}
	if height != 0 && width > math.MaxInt/4/height {
		return nil, &ExtractionError{Op: "buffer", Err: fmt.Errorf("dimensions %dx%d overflow the buffer size", width, height)}
	}
	if need := width * height * 4; len(pix) < need {
		return nil, &ExtractionError{Op: "buffer", Err: fmt.Errorf("have %d bytes, need %d", len(pix), need)}
	}
	return a.analyzePixels(width, height, width*4, pix, maxRegions), nil
}

// AnalyzeContext runs Analyze but gives up when ctx is done or
// Config.MaxAnalysisTime elapses, whichever comes first. The abandoned
// analysis finishes in the background and its result is dropped.
func (a *Analyzer) AnalyzeContext(ctx context.Context, img image.Image, maxRegions int) (*ImageColorMap, error) {
	if a.cfg.MaxAnalysisTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.MaxAnalysisTime)
		defer cancel()
	}

	type result struct {
		m   *ImageColorMap
		err error
	}
	done := make(chan result, 1)
	go func() {
		m, err := a.Analyze(img, maxRegions)
		done <- result{m, err}
	}()

	select {
	case r := <-done:
		return r.m, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("color analysis abandoned: %w", ctx.Err())
	}
}

// toSurface copies img into a fresh NRGBA buffer anchored at the origin.
func toSurface(img image.Image) (surface *image.NRGBA, err error) {
	if img == nil {
		return nil, &ExtractionError{Op: "clone", Err: errors.New("no image")}
	}
	// A typed nil image panics on Bounds.
	defer func() {
		if r := recover(); r != nil {
			surface = nil
			err = &ExtractionError{Op: "clone", Err: fmt.Errorf("%v", r)}
		}
	}()
	return imaging.Clone(img), nil
}

type bucket struct {
	color  RGB
	sample RGB
	at     Point
	count  int
}

// analyzePixels is the histogram pass. rowStride is the byte distance
// between rows.
func (a *Analyzer) analyzePixels(width, height, rowStride int, pix []byte, maxRegions int) *ImageColorMap {
	if maxRegions <= 0 {
		maxRegions = a.cfg.MaxRegions
	}

	result := &ImageColorMap{
		Regions:         []ColorRegion{},
		DominantColors:  []RGB{},
		ImageDimensions: Dimensions{Width: width, Height: height},
	}
	if width == 0 || height == 0 {
		return result
	}

	buckets := make(map[RGB]*bucket)
	order := make([]*bucket, 0, 64)
	step := a.cfg.QuantizeStep

	total := width * height
	for p := 0; p < total; p += a.cfg.SampleStride {
		x, y := p%width, p/width
		off := y*rowStride + x*4
		if pix[off+3] < a.cfg.AlphaThreshold {
			continue
		}
		sample := RGB{R: pix[off], G: pix[off+1], B: pix[off+2]}
		key := RGB{
			R: quantize(sample.R, step),
			G: quantize(sample.G, step),
			B: quantize(sample.B, step),
		}
		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{color: key, sample: sample, at: Point{X: x, Y: y}}
			buckets[key] = bk
			order = append(order, bk)
		}
		bk.count++
		result.SampledPixels++
	}

	// Stable so equal counts keep first-seen order.
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].count > order[j].count
	})
	if len(order) > maxRegions {
		order = order[:maxRegions]
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for rank, bk := range order {
		result.Regions = append(result.Regions, ColorRegion{
			Color:          bk.color,
			Representative: bk.sample,
			Coordinates:    bk.at,
			Size:           0.1 + a.rng.Float64()*0.2,
			Confidence:     0.9 - 0.1*float64(rank),
			Count:          bk.count,
		})
		result.DominantColors = append(result.DominantColors, bk.color)
	}
	return result
}

// quantize rounds v to the nearest multiple of step, halves rounding up,
// and clamps to 255.
func quantize(v uint8, step int) uint8 {
	q := (int(v) + step/2) / step * step
	if q > 255 {
		q = 255
	}
	return uint8(q)
}
