package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/colormatch-mcp/internal/colorregion"
	"github.com/ironsheep/colormatch-mcp/internal/config"
	"github.com/ironsheep/colormatch-mcp/internal/imaging"
)

// Version is reported in the initialize response. The build overrides it
// through the main package.
var Version = "0.1.0"

// Server answers MCP requests for the image and color map tools. It owns
// the decoded image cache and one analyzer shared by every call.
type Server struct {
	cache    *imaging.ImageCache
	analyzer *colorregion.Analyzer
	cfg      config.Config
	log      *logrus.Logger
}

// MCPRequest is one JSON-RPC 2.0 request line. ID is absent for
// notifications and otherwise echoed back verbatim.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse carries either Result or Error, never both.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError is the JSON-RPC error object.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server with the default configuration, logging to stderr.
func New() *Server {
	return NewWithConfig(config.Default(), logrus.StandardLogger())
}

// NewWithConfig creates a server with an explicit configuration and logger.
func NewWithConfig(cfg config.Config, logger *logrus.Logger) *Server {
	return &Server{
		cache:    imaging.NewBoundedImageCache(cfg.MaxCachedImages),
		analyzer: colorregion.NewAnalyzer(cfg.Analyzer),
		cfg:      cfg,
		log:      logger,
	}
}

// maxRequestBytes bounds a single request line.
const maxRequestBytes = 1 << 20

// Serve reads newline-delimited requests from r and writes responses to w
// until r is exhausted. Lines that are not valid JSON are logged and skipped.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
	out := json.NewEncoder(w)

	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			continue
		}
		resp := s.handleRequest(&req)
		if resp == nil {
			continue
		}
		if err := out.Encode(resp); err != nil {
			s.log.WithError(err).Error("failed to encode response")
		}
	}
	if err := in.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}
	return nil
}

// handleRequest returns nil for notifications, which get no reply.
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.log.WithField("method", req.Method).Debug("request")

	switch req.Method {
	case "initialize":
		return s.result(req.ID, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
			"serverInfo":      map[string]interface{}{"name": "colormatch-mcp", "version": Version},
		})
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return s.result(req.ID, map[string]interface{}{})
	}
	return s.errorResponse(req.ID, -32601, fmt.Sprintf("Method not found: %s", req.Method), "")
}

const protocolVersion = "2024-11-05"

func (s *Server) result(id, v interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Result: v}
}
