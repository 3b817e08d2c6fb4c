package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/owlvision/owlvision-mcp/internal/conf"
	"github.com/owlvision/owlvision-mcp/internal/imaging"
	"github.com/owlvision/owlvision-mcp/internal/model"
	"github.com/owlvision/owlvision-mcp/internal/query"
	"github.com/owlvision/owlvision-mcp/internal/translate"
)

// Server handles MCP protocol communication and owns the long-lived state:
// the image cache, the lazily-initialized model handle, and the query
// formatter. Requests run synchronously, one at a time; the model handle
// serializes backend access on its own.
type Server struct {
	settings  *conf.Settings
	cache     *imaging.ImageCache
	handle    *model.Handle
	formatter *query.Formatter
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server instance from settings.
func New(settings *conf.Settings) *Server {
	translator := &translate.Translator{
		UseAPI: settings.Translation.AllowAPI,
		APIURL: settings.Translation.APIURL,
	}
	if settings.Translation.Timeout > 0 {
		translator.Client = &http.Client{Timeout: settings.Translation.Timeout}
	}

	return &Server{
		settings:  settings,
		cache:     imaging.NewImageCache(),
		handle:    model.NewHandle(settings.Backend.URL, settings.Backend.Model, settings.Detection.MaxImageEdge),
		formatter: &query.Formatter{Translator: translator},
	}
}

// Run starts the MCP server, reading requests from stdin and writing
// responses to stdout. Logging goes to stderr; stdout carries only protocol
// frames.
func (s *Server) Run() error {
	return s.serve(os.Stdin, os.Stdout)
}

func (s *Server) serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "owlvision-mcp",
				"version": "0.1.0",
			},
		},
	}
}

// requestTimeout bounds one tool call end to end, inference included.
const requestTimeout = 5 * time.Minute
