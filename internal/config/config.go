// Package config reads process settings from the environment and the
// command line.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/colormatch-mcp/internal/colorregion"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "COLORMATCH_"

// Config represents the process configuration.
type Config struct {
	// LogLevel is one of panic, fatal, error, warn, info, debug, trace.
	LogLevel string

	// HTTPAddr switches the binary from the stdio MCP server to the HTTP
	// API when set (host:port).
	HTTPAddr string

	// MaxImageDimension downsizes larger images before analysis. Region
	// coordinates and dimensions still refer to the original image, but
	// sampling and counts apply to the downsized copy. 0 analyzes images at
	// their natural size.
	MaxImageDimension int

	// MaxUploadBytes caps multipart uploads of the HTTP API.
	MaxUploadBytes int64

	// MaxImagePixels rejects uploaded images and stream frames whose header
	// declares more pixels, before they are decoded. 0 disables the check.
	MaxImagePixels int64

	// MaxCachedImages bounds the MCP server's decoded image cache. 0 keeps
	// every image loaded for the life of the process.
	MaxCachedImages int

	Analyzer colorregion.Config
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:          "info",
		MaxImageDimension: 1024,
		MaxUploadBytes:    32 << 20,
		MaxImagePixels:    64 << 20,
		MaxCachedImages:   32,
		Analyzer:          colorregion.DefaultConfig(),
	}
}

// FromEnv returns Default overridden by COLORMATCH_* variables.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	r := envReader{lookup: lookup}

	r.str("LOG_LEVEL", &cfg.LogLevel)
	r.str("HTTP_ADDR", &cfg.HTTPAddr)
	r.integer("MAX_IMAGE_DIMENSION", &cfg.MaxImageDimension)
	r.int64("MAX_UPLOAD_BYTES", &cfg.MaxUploadBytes)
	r.int64("MAX_IMAGE_PIXELS", &cfg.MaxImagePixels)
	r.integer("MAX_CACHED_IMAGES", &cfg.MaxCachedImages)
	r.integer("SAMPLE_STRIDE", &cfg.Analyzer.SampleStride)
	r.integer("QUANTIZE_STEP", &cfg.Analyzer.QuantizeStep)
	r.float("COLOR_TOLERANCE", &cfg.Analyzer.ColorTolerance)
	r.integer("MAX_REGIONS", &cfg.Analyzer.MaxRegions)
	r.duration("MAX_ANALYSIS_TIME", &cfg.Analyzer.MaxAnalysisTime)
	r.float("MIN_REGION_SIZE", &cfg.Analyzer.MinRegionSize)
	r.float("MIN_PROMINENCE", &cfg.Analyzer.MinProminence)

	if r.err != nil {
		return Config{}, r.err
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return cfg, nil
}

// BindFlags registers command-line overrides for cfg on fs. Flag defaults
// are the current values of cfg, so call it after FromEnv.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "logging level, one of: "+strings.Join(logLevels, ", "))
	fs.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "serve the HTTP API on host:port instead of MCP over stdio")
	fs.IntVar(&c.MaxImageDimension, "max-image-dimension", c.MaxImageDimension, "downsize images larger than this before analysis (0 disables)")
	fs.Int64Var(&c.MaxImagePixels, "max-image-pixels", c.MaxImagePixels, "reject uploads declaring more pixels than this (0 disables)")
	fs.IntVar(&c.MaxCachedImages, "max-cached-images", c.MaxCachedImages, "decoded images kept in memory (0 keeps all)")
	fs.Float64Var(&c.Analyzer.ColorTolerance, "color-tolerance", c.Analyzer.ColorTolerance, "highest Delta E score accepted as a match")
	fs.IntVar(&c.Analyzer.MaxRegions, "max-regions", c.Analyzer.MaxRegions, "regions kept per analysis")
	fs.DurationVar(&c.Analyzer.MaxAnalysisTime, "max-analysis-time", c.Analyzer.MaxAnalysisTime, "abandon an analysis after this long (0 disables)")
}

var logLevels = []string{"panic", "fatal", "error", "warn", "info", "debug", "trace"}

// Validate checks every field and reports the first problem.
func (c Config) Validate() error {
	valid := false
	for _, l := range logLevels {
		if l == strings.ToLower(c.LogLevel) {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.MaxImageDimension < 0 {
		return fmt.Errorf("max image dimension must be >= 0, got %d", c.MaxImageDimension)
	}
	if c.MaxCachedImages < 0 {
		return fmt.Errorf("max cached images must be >= 0, got %d", c.MaxCachedImages)
	}
	if c.MaxImagePixels < 0 {
		return fmt.Errorf("max image pixels must be >= 0, got %d", c.MaxImagePixels)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be > 0, got %d", c.MaxUploadBytes)
	}
	if err := c.Analyzer.Validate(); err != nil {
		return fmt.Errorf("analyzer: %w", err)
	}
	return nil
}

// envReader collects the first parse error so FromEnv reads linearly.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) get(name string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok := r.lookup(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *envReader) fail(name, v string, err error) {
	r.err = fmt.Errorf("%s%s=%q: %w", EnvPrefix, name, v, err)
}

func (r *envReader) str(name string, dst *string) {
	if v, ok := r.get(name); ok {
		*dst = v
	}
}

func (r *envReader) integer(name string, dst *int) {
	if v, ok := r.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) int64(name string, dst *int64) {
	if v, ok := r.get(name); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) float(name string, dst *float64) {
	if v, ok := r.get(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = f
	}
}

// duration accepts Go durations ("1500ms") or bare milliseconds ("1500").
func (r *envReader) duration(name string, dst *time.Duration) {
	if v, ok := r.get(name); ok {
		if ms, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(ms) * time.Millisecond
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = d
	}
}
