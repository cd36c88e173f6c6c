package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/dice-tools-mcp/internal/imaging"
	"github.com/ironsheep/dice-tools-mcp/internal/logging"
	"github.com/ironsheep/dice-tools-mcp/internal/pipeline"
	"github.com/ironsheep/dice-tools-mcp/internal/stabilizer"
	"github.com/ironsheep/dice-tools-mcp/internal/tuning"
)

// Name and Version are reported in the initialize handshake.
var (
	Name    = "dice-tools-mcp"
	Version = "0.1.0"
)

// JSON-RPC error codes.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeToolFailed     = -32000
)

// Server handles MCP protocol communication
type Server struct {
	cache      *imaging.FrameCache
	store      *tuning.Store
	recognizer *pipeline.Recognizer
	logger     *zap.Logger
	configPath string

	// mu guards observer and last.
	mu       sync.Mutex
	observer *stabilizer.ValueStabilizer
	last     *recognition
}

// recognition is the most recent dice_recognize outcome. frame is the
// decoded image it was computed from; a reload of the path yields a
// different image and invalidates the recognition.
type recognition struct {
	path   string
	frame  image.Image
	result pipeline.FrameResult
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

// Option configures a Server.
type Option func(*Server)

// WithStore shares a tuning store with the server. The recognizer created by
// New reads its config from this store.
func WithStore(store *tuning.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithRecognizer replaces the server's recognizer.
func WithRecognizer(rec *pipeline.Recognizer) Option {
	return func(s *Server) { s.recognizer = rec }
}

// WithLogger sets the logger. Logs go wherever the logger writes; stdout is
// reserved for the protocol.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithConfigPath names the YAML file dice_config_set writes when asked to
// save. Without it, saving is an error.
func WithConfigPath(path string) Option {
	return func(s *Server) { s.configPath = path }
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cache:    imaging.NewFrameCache(),
		observer: stabilizer.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	if s.store == nil {
		s.store = tuning.NewDefaultStore()
	}
	if s.recognizer == nil {
		s.recognizer = pipeline.New(s.store, pipeline.WithLogger(s.logger))
	}
	return s
}

// Run serves stdin and stdout until stdin is closed.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", zap.Error(err))
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", zap.Error(err))
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
	s.logger.Debug("request", zap.String("method", req.Method), zap.Any("id", req.ID))

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
		return s.errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
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
				"name":    Name,
				"version": Version,
			},
		},
	}
}
