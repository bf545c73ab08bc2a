package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/colormatch-mcp/internal/colorregion"
	"github.com/ironsheep/colormatch-mcp/internal/imaging"
)

// ToolCallParams is the params object of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall runs one tool. A successful result is marshaled into a
// single MCP text content block; a failed tool becomes a -32000 error.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	entry := s.log.WithFields(logrus.Fields{
		"tool":    params.Name,
		"elapsed": time.Since(start).Round(time.Microsecond),
	})
	if err != nil {
		entry.WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	entry.Debug("tool finished")

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": string(text)}},
		},
	}
}

func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	run, ok := toolHandlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return run(s, args)
}

// errorResponse builds a JSON-RPC error reply. An empty data string is
// left out of the encoded error.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}

// toolFunc runs a tool against its raw JSON arguments.
type toolFunc func(s *Server, args json.RawMessage) (interface{}, error)

// toolHandlers must hold an entry for every name in GetToolDefinitions.
var toolHandlers = map[string]toolFunc{
	"image_load":             withArgs((*Server).imageLoad),
	"image_dimensions":       withArgs((*Server).imageDimensions),
	"image_crop":             withImage((*Server).imageCrop),
	"image_crop_quadrant":    withImage((*Server).imageCropQuadrant),
	"image_sample_color":     withImage((*Server).imageSampleColor),
	"image_measure_distance": withImage((*Server).imageMeasureDistance),

	"colormap_analyze":         withImage((*Server).colormapAnalyze),
	"colormap_palette":         withImage((*Server).colormapPalette),
	"colormap_distance":        withArgs((*Server).colormapDistance),
	"colormap_config":          withArgs((*Server).colormapConfig),
	"colormap_match":           withArgs((*Server).colormapMatch),
	"colormap_transition":      withArgs((*Server).colormapTransition),
	"colormap_preview":         withImage((*Server).colormapPreview),
	"colormap_crossfade_frame": withArgs((*Server).colormapCrossfadeFrame),
}

// withArgs decodes the arguments into A before calling fn. Absent
// arguments leave A at its zero value.
func withArgs[A any](fn func(*Server, A) (interface{}, error)) toolFunc {
	return func(s *Server, raw json.RawMessage) (interface{}, error) {
		var a A
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &a); err != nil {
				return nil, fmt.Errorf("decode arguments: %w", err)
			}
		}
		return fn(s, a)
	}
}

// pathArgs is implemented by argument structs that name one image.
type pathArgs interface {
	imagePath() string
}

// withImage is withArgs plus a cache load of the named image.
func withImage[A pathArgs](fn func(*Server, image.Image, A) (interface{}, error)) toolFunc {
	return withArgs(func(s *Server, a A) (interface{}, error) {
		img, err := s.cache.Load(a.imagePath())
		if err != nil {
			return nil, err
		}
		return fn(s, img, a)
	})
}

type pathArg struct {
	Path string `json:"path"`
}

func (p pathArg) imagePath() string { return p.Path }

// scaleArg is an output scale factor where 0 (omitted) means 1.
type scaleArg float64

func (f scaleArg) factor() float64 {
	if f == 0 {
		return 1
	}
	return float64(f)
}

// --- image inspection ---

func (s *Server) imageLoad(a pathArg) (interface{}, error) {
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) imageDimensions(a pathArg) (interface{}, error) {
	return imaging.GetDimensions(s.cache, a.Path)
}

type cropArgs struct {
	pathArg
	imaging.Region
	Scale scaleArg `json:"scale"`
}

func (s *Server) imageCrop(img image.Image, a cropArgs) (interface{}, error) {
	r := a.Region
	return imaging.Crop(img, r.X1, r.Y1, r.X2, r.Y2, a.Scale.factor())
}

type quadrantArgs struct {
	pathArg
	Region string   `json:"region"`
	Scale  scaleArg `json:"scale"`
}

func (s *Server) imageCropQuadrant(img image.Image, a quadrantArgs) (interface{}, error) {
	return imaging.CropQuadrant(img, a.Region, a.Scale.factor())
}

type sampleArgs struct {
	pathArg
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) imageSampleColor(img image.Image, a sampleArgs) (interface{}, error) {
	return imaging.SampleColor(img, a.X, a.Y)
}

type measureArgs struct {
	pathArg
	imaging.Region
}

// imageMeasureDistance reads Region as two endpoints rather than a
// rectangle, so both ends must lie on the image.
func (s *Server) imageMeasureDistance(img image.Image, a measureArgs) (interface{}, error) {
	b := img.Bounds()
	from := imaging.Point{X: a.X1, Y: a.Y1}
	to := imaging.Point{X: a.X2, Y: a.Y2}
	frame := image.Rect(0, 0, b.Dx(), b.Dy())
	for _, p := range []imaging.Point{from, to} {
		if !image.Pt(p.X, p.Y).In(frame) {
			return nil, fmt.Errorf("point (%d, %d) outside image bounds (%dx%d)", p.X, p.Y, b.Dx(), b.Dy())
		}
	}
	return imaging.MeasureDistance(b.Size(), from, to), nil
}

// --- color maps ---

type analyzeArgs struct {
	pathArg
	Region       *imaging.Region `json:"region,omitempty"`
	Quadrant     string          `json:"quadrant,omitempty"`
	MaxRegions   int             `json:"max_regions"`
	MaxDimension *int            `json:"max_dimension,omitempty"`
}

// analyzeResult echoes the analyzed sub-rectangle when the analysis was
// restricted. Region coordinates in the map are relative to it.
type analyzeResult struct {
	*colorregion.ImageColorMap
	Region *imaging.Region `json:"region,omitempty"`
}

func (s *Server) colormapAnalyze(img image.Image, a analyzeArgs) (interface{}, error) {
	region := a.Region
	if a.Quadrant != "" {
		if region != nil {
			return nil, fmt.Errorf("region and quadrant are mutually exclusive")
		}
		q, err := imaging.QuadrantRegion(img.Bounds(), a.Quadrant)
		if err != nil {
			return nil, err
		}
		region = &q
	}
	if region != nil {
		var err error
		if img, err = imaging.CropImage(img, *region); err != nil {
			return nil, err
		}
	}

	m, err := s.analyze(img, a.MaxRegions, a.MaxDimension)
	if err != nil {
		return nil, err
	}
	return &analyzeResult{ImageColorMap: m, Region: region}, nil
}

type paletteArgs struct {
	pathArg
	Method       string `json:"method"`
	Count        int    `json:"count"`
	MaxDimension *int   `json:"max_dimension,omitempty"`
}

func (s *Server) colormapPalette(img image.Image, a paletteArgs) (interface{}, error) {
	small := imaging.FitForAnalysis(img, s.maxDimension(a.MaxDimension))
	return s.analyzer.Palette(small, colorregion.PaletteMethod(a.Method), a.Count)
}

type distanceArgs struct {
	ColorA    string   `json:"color_a"`
	ColorB    string   `json:"color_b"`
	Tolerance *float64 `json:"tolerance,omitempty"`
}

type distanceResult struct {
	ColorA    string  `json:"color_a"`
	ColorB    string  `json:"color_b"`
	DeltaE    float64 `json:"delta_e"`
	Tolerance float64 `json:"tolerance"`
	Match     bool    `json:"match"`
}

func (s *Server) colormapDistance(a distanceArgs) (interface{}, error) {
	ca, err := colorregion.ParseHex(a.ColorA)
	if err != nil {
		return nil, fmt.Errorf("color_a: %w", err)
	}
	cb, err := colorregion.ParseHex(a.ColorB)
	if err != nil {
		return nil, fmt.Errorf("color_b: %w", err)
	}

	res := &distanceResult{
		ColorA:    ca.Hex(),
		ColorB:    cb.Hex(),
		DeltaE:    colorregion.ColorDistance(ca, cb),
		Tolerance: s.tolerance(a.Tolerance),
	}
	res.Match = res.DeltaE <= res.Tolerance
	return res, nil
}

type configResult struct {
	Analyzer          colorregion.Config `json:"analyzer"`
	MaxImageDimension int                `json:"max_image_dimension"`
}

func (s *Server) colormapConfig(struct{}) (interface{}, error) {
	return &configResult{
		Analyzer:          s.analyzer.Config(),
		MaxImageDimension: s.cfg.MaxImageDimension,
	}, nil
}

// --- two-image tools ---

type pairArgs struct {
	PathA        string   `json:"path_a"`
	PathB        string   `json:"path_b"`
	MaxRegions   int      `json:"max_regions"`
	MaxDimension *int     `json:"max_dimension,omitempty"`
	Tolerance    *float64 `json:"tolerance,omitempty"`
}

type matchResult struct {
	Matched   bool                      `json:"matched"`
	Match     *colorregion.ColorMatch   `json:"match"`
	Tolerance float64                   `json:"tolerance"`
	RegionsA  []colorregion.ColorRegion `json:"regions_a"`
	RegionsB  []colorregion.ColorRegion `json:"regions_b"`

	// Scores[i][j] is the match score of RegionsA[i] against RegionsB[j].
	Scores [][]float64 `json:"scores"`
}

func (s *Server) colormapMatch(a pairArgs) (interface{}, error) {
	ma, mb, err := s.analyzePair(a)
	if err != nil {
		return nil, err
	}

	tol := s.tolerance(a.Tolerance)
	best := colorregion.FindBestColorMatch(ma.Regions, mb.Regions, tol)
	scores := colorregion.ScoreRows(colorregion.ScoreMatrix(ma.Regions, mb.Regions))
	if scores == nil {
		scores = [][]float64{}
	}
	return &matchResult{
		Matched:   best != nil,
		Match:     best,
		Tolerance: tol,
		RegionsA:  ma.Regions,
		RegionsB:  mb.Regions,
		Scores:    scores,
	}, nil
}

type transitionResult struct {
	*colorregion.TransitionPlan
	Tolerance float64                    `json:"tolerance"`
	MapA      *colorregion.ImageColorMap `json:"map_a"`
	MapB      *colorregion.ImageColorMap `json:"map_b"`
}

func (s *Server) colormapTransition(a pairArgs) (interface{}, error) {
	ma, mb, err := s.analyzePair(a)
	if err != nil {
		return nil, err
	}

	tol := s.tolerance(a.Tolerance)
	return &transitionResult{
		TransitionPlan: colorregion.PlanTransition(ma, mb, tol),
		Tolerance:      tol,
		MapA:           ma,
		MapB:           mb,
	}, nil
}

type previewArgs struct {
	pathArg
	MaxRegions   int  `json:"max_regions"`
	MaxDimension *int `json:"max_dimension,omitempty"`
}

func (s *Server) colormapPreview(img image.Image, a previewArgs) (interface{}, error) {
	m, err := s.analyze(img, a.MaxRegions, a.MaxDimension)
	if err != nil {
		return nil, err
	}
	return imaging.MarkerOverlay(img, regionMarkers(m.Regions))
}

// regionMarkers labels each region with its 1-based rank.
func regionMarkers(regions []colorregion.ColorRegion) []imaging.Marker {
	markers := make([]imaging.Marker, len(regions))
	for i, r := range regions {
		markers[i] = imaging.Marker{
			X:     r.Coordinates.X,
			Y:     r.Coordinates.Y,
			Fill:  color.RGBA{R: r.Color.R, G: r.Color.G, B: r.Color.B, A: 255},
			Label: strconv.Itoa(i + 1),
		}
	}
	return markers
}

type crossfadeArgs struct {
	PathA    string  `json:"path_a"`
	PathB    string  `json:"path_b"`
	Progress float64 `json:"progress"`
}

type crossfadeResult struct {
	*imaging.EncodedImage
	Progress float64 `json:"progress"`
}

func (s *Server) colormapCrossfadeFrame(a crossfadeArgs) (interface{}, error) {
	imgA, err := s.cache.Load(a.PathA)
	if err != nil {
		return nil, err
	}
	imgB, err := s.cache.Load(a.PathB)
	if err != nil {
		return nil, err
	}

	frame, err := imaging.CrossfadeFrame(imgA, imgB, a.Progress)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(frame)
	if err != nil {
		return nil, err
	}
	return &crossfadeResult{EncodedImage: enc, Progress: a.Progress}, nil
}

// --- helpers ---

// analyze runs the analyzer on img, downsized to the effective limit.
func (s *Server) analyze(img image.Image, maxRegions int, maxDim *int) (*colorregion.ImageColorMap, error) {
	m, err := s.analyzer.AnalyzeFit(context.Background(), img, s.maxDimension(maxDim), maxRegions)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"width":   m.ImageDimensions.Width,
		"height":  m.ImageDimensions.Height,
		"sampled": m.SampledPixels,
		"regions": len(m.Regions),
	}).Debug("analyzed image")
	return m, nil
}

func (s *Server) analyzePair(a pairArgs) (*colorregion.ImageColorMap, *colorregion.ImageColorMap, error) {
	imgA, err := s.cache.Load(a.PathA)
	if err != nil {
		return nil, nil, err
	}
	imgB, err := s.cache.Load(a.PathB)
	if err != nil {
		return nil, nil, err
	}
	ma, err := s.analyze(imgA, a.MaxRegions, a.MaxDimension)
	if err != nil {
		return nil, nil, fmt.Errorf("image a: %w", err)
	}
	mb, err := s.analyze(imgB, a.MaxRegions, a.MaxDimension)
	if err != nil {
		return nil, nil, fmt.Errorf("image b: %w", err)
	}
	return ma, mb, nil
}

func (s *Server) maxDimension(override *int) int {
	if override != nil {
		return *override
	}
	return s.cfg.MaxImageDimension
}

func (s *Server) tolerance(override *float64) float64 {
	if override != nil {
		return *override
	}
	return s.analyzer.Config().ColorTolerance
}
