// Package server implements the MCP (Model Context Protocol) server for color
// region analysis.
//
// The server exposes the color map analyzer and its supporting image tools
// through JSON-RPC 2.0, so an MCP client can find the dominant colors of an
// image, match them against a second image, and plan where a crossfade
// between the two should be anchored.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr, through logrus
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Region Operations:
//   - image_crop: Extract rectangular region
//   - image_crop_quadrant: Extract named region (top-left, center, etc.)
//
// Pixel Inspection:
//   - image_sample_color: Get color at pixel, with HSL and Lab
//   - image_measure_distance: Measure between points
//
// Color Map Analysis:
//   - colormap_analyze: Ranked color regions with coordinates
//   - colormap_palette: Weighted palette (histogram, kmeans, dominantcolor)
//   - colormap_distance: Delta E between two hex colors
//   - colormap_config: Analyzer configuration in effect
//
// Cross-Image Matching:
//   - colormap_match: Best matching region pair and score matrix
//   - colormap_transition: Crossfade anchor points
//   - colormap_preview: Image with numbered region markers
//   - colormap_crossfade_frame: One rendered crossfade frame
//
// # Downsizing
//
// Images larger than Config.MaxImageDimension (or a tool's max_dimension
// argument) are analyzed on a nearest-neighbor copy. Reported coordinates
// and dimensions refer to the original image and land on a pixel of the
// region's color; sample counts describe the copy.
//
// # Image Caching
//
// Decoded images are cached by path and reused across tool calls. The cache
// holds at most Config.MaxCachedImages entries and drops the oldest first.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	cfg, _ := config.FromEnv()
//	logger, _ := config.NewLogger(cfg.LogLevel, os.Stderr)
//	srv := server.NewWithConfig(cfg, logger)
//	if err := srv.Serve(os.Stdin, os.Stdout); err != nil {
//	    logger.Fatal(err)
//	}
package server
