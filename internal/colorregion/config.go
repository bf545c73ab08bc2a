package colorregion

import (
	"fmt"
	"time"
)

// Config holds the analyzer constants. It is fixed when the Analyzer is
// built and never modified afterwards.
type Config struct {
	// SampleStride is the pixel step of the sampling pass. 10 samples one
	// pixel out of every ten.
	SampleStride int `json:"sample_stride"`

	// QuantizeStep is the bucket width per channel.
	QuantizeStep int `json:"quantize_step"`

	// AlphaThreshold is the lowest alpha value that is still sampled.
	AlphaThreshold uint8 `json:"alpha_threshold"`

	// ColorTolerance is the highest match score (Delta E units) accepted by
	// Analyzer.Match.
	ColorTolerance float64 `json:"color_tolerance"`

	// MaxRegions is the default region count per analysis.
	MaxRegions int `json:"max_regions"`

	// MaxAnalysisTime bounds AnalyzeContext. Analyze itself ignores it.
	MaxAnalysisTime time.Duration `json:"max_analysis_time"`

	// MinRegionSize and MinProminence are reported to clients but not
	// applied by the analysis.
	MinRegionSize float64 `json:"min_region_size"`
	MinProminence float64 `json:"min_prominence"`
}

// DefaultConfig returns the stock analyzer settings.
func DefaultConfig() Config {
	return Config{
		SampleStride:    10,
		QuantizeStep:    10,
		AlphaThreshold:  128,
		ColorTolerance:  30,
		MaxRegions:      5,
		MaxAnalysisTime: 2 * time.Second,
		MinRegionSize:   0.05,
		MinProminence:   0.1,
	}
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch {
	case c.SampleStride < 1:
		return fmt.Errorf("sample stride must be >= 1, got %d", c.SampleStride)
	case c.QuantizeStep < 1 || c.QuantizeStep > 255:
		return fmt.Errorf("quantize step must be in [1,255], got %d", c.QuantizeStep)
	case c.ColorTolerance < 0:
		return fmt.Errorf("color tolerance must be >= 0, got %g", c.ColorTolerance)
	case c.MaxRegions < 1:
		return fmt.Errorf("max regions must be >= 1, got %d", c.MaxRegions)
	case c.MaxAnalysisTime < 0:
		return fmt.Errorf("max analysis time must be >= 0, got %s", c.MaxAnalysisTime)
	case c.MinRegionSize < 0 || c.MinRegionSize > 1:
		return fmt.Errorf("min region size must be in [0,1], got %g", c.MinRegionSize)
	case c.MinProminence < 0 || c.MinProminence > 1:
		return fmt.Errorf("min prominence must be in [0,1], got %g", c.MinProminence)
	}
	return nil
}
