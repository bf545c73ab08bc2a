package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// schema helpers keep the definitions below readable

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func propDefault(typ, description string, def interface{}) map[string]interface{} {
	p := prop(typ, description)
	p["default"] = def
	return p
}

func pathProp() map[string]interface{} {
	return prop("string", "Absolute path to the image file")
}

var quadrantNames = []string{"top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"}

func regionProp(description string) map[string]interface{} {
	p := objectSchema(map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer"},
		"y1": map[string]interface{}{"type": "integer"},
		"x2": map[string]interface{}{"type": "integer"},
		"y2": map[string]interface{}{"type": "integer"},
	}, "x1", "y1", "x2", "y2")
	p["description"] = description
	return p
}

func pairProps() map[string]interface{} {
	return map[string]interface{}{
		"path_a":        prop("string", "Absolute path to the outgoing image (A)"),
		"path_b":        prop("string", "Absolute path to the incoming image (B)"),
		"max_regions":   propDefault("integer", "Regions kept per image (default from configuration, 5)", 5),
		"max_dimension": prop("integer", "Downsize images larger than this before analysis; coordinates stay on the original, counts describe the copy. 0 disables (default from configuration)"),
		"tolerance":     prop("number", "Highest Delta E score accepted as a match (default from configuration, 30)"),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent operations.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProp(),
			}, "path"),
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProp(),
			}, "path"),
		},

		// Region Operations
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG. Use this to inspect a region reported by colormap_analyze.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":  pathProp(),
				"x1":    prop("integer", "Left edge X coordinate (0-based)"),
				"y1":    prop("integer", "Top edge Y coordinate (0-based)"),
				"x2":    prop("integer", "Right edge X coordinate (exclusive)"),
				"y2":    prop("integer", "Bottom edge Y coordinate (exclusive)"),
				"scale": propDefault("number", "Optional scale factor (e.g., 2.0 to double size). Default 1.0", 1.0),
			}, "path", "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "image_crop_quadrant",
			Description: "Crop a named region of the image (top-left, top-right, bottom-left, bottom-right, top-half, bottom-half, left-half, right-half, center).",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProp(),
				"region": map[string]interface{}{
					"type":        "string",
					"enum":        quadrantNames,
					"description": "Named region to extract",
				},
				"scale": propDefault("number", "Optional scale factor. Default 1.0", 1.0),
			}, "path", "region"),
		},

		// Pixel Inspection
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a specific pixel coordinate, with HSL and CIE Lab values.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProp(),
				"x":    prop("integer", "X coordinate (0-based, from left)"),
				"y":    prop("integer", "Y coordinate (0-based, from top)"),
			}, "path", "x", "y"),
		},
		{
			Name:        "image_measure_distance",
			Description: "Measure the distance in pixels between two points, with angle and percentage of image size.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProp(),
				"x1":   prop("integer", "First point X"),
				"y1":   prop("integer", "First point Y"),
				"x2":   prop("integer", "Second point X"),
				"y2":   prop("integer", "Second point Y"),
			}, "path", "x1", "y1", "x2", "y2"),
		},

		// Color Map Analysis
		{
			Name:        "colormap_analyze",
			Description: "Build the color map of an image: the most frequent quantized colors, ranked, each with the coordinate where it was first seen.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":   pathProp(),
				"region": regionProp("Optional rectangle to analyze. Coordinates in the result are relative to it."),
				"quadrant": map[string]interface{}{
					"type":        "string",
					"enum":        quadrantNames,
					"description": "Optional named region to analyze instead of a rectangle",
				},
				"max_regions":   propDefault("integer", "Number of regions to return (default from configuration, 5)", 5),
				"max_dimension": prop("integer", "Downsize images larger than this before analysis; coordinates stay on the original, counts describe the copy. 0 disables (default from configuration)"),
			}, "path"),
		},
		{
			Name:        "colormap_palette",
			Description: "Extract a weighted color palette using a histogram, k-means clustering or the dominantcolor algorithm.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProp(),
				"method": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"histogram", "kmeans", "dominantcolor"},
					"description": "Extraction method (default histogram)",
					"default":     "histogram",
				},
				"count":         propDefault("integer", "Number of colors (default from configuration, 5)", 5),
				"max_dimension": prop("integer", "Downsize images larger than this before extraction; 0 disables"),
			}, "path"),
		},
		{
			Name:        "colormap_distance",
			Description: "Perceptual distance (CIE76 Delta E) between two hex colors, and whether it is within the match tolerance.",
			InputSchema: objectSchema(map[string]interface{}{
				"color_a":   prop("string", "First color as #RRGGBB"),
				"color_b":   prop("string", "Second color as #RRGGBB"),
				"tolerance": prop("number", "Highest Delta E accepted as a match (default from configuration, 30)"),
			}, "color_a", "color_b"),
		},
		{
			Name:        "colormap_config",
			Description: "Return the analyzer configuration in effect.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Cross-Image Matching
		{
			Name:        "colormap_match",
			Description: "Analyze two images and find the pair of regions with the most similar color, with the full score matrix.",
			InputSchema: objectSchema(pairProps(), "path_a", "path_b"),
		},
		{
			Name:        "colormap_transition",
			Description: "Plan a crossfade from image A to image B: normalized origin and target anchored on a shared color, or the center when none matches.",
			InputSchema: objectSchema(pairProps(), "path_a", "path_b"),
		},
		{
			Name:        "colormap_preview",
			Description: "Return the image with a numbered marker at the coordinate of each color region, as base64-encoded PNG.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":          pathProp(),
				"max_regions":   propDefault("integer", "Number of regions to mark (default from configuration, 5)", 5),
				"max_dimension": prop("integer", "Downsize images larger than this before analysis; 0 disables"),
			}, "path"),
		},
		{
			Name:        "colormap_crossfade_frame",
			Description: "Render one frame of the crossfade from image A to image B as base64-encoded PNG. B is resized to A's dimensions.",
			InputSchema: objectSchema(map[string]interface{}{
				"path_a":   prop("string", "Absolute path to the outgoing image (A)"),
				"path_b":   prop("string", "Absolute path to the incoming image (B)"),
				"progress": prop("number", "Blend progress from 0 (only A) to 1 (only B)"),
			}, "path_a", "path_b", "progress"),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
