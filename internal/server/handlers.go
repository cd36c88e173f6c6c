package server

import (
	"encoding/json"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/dice-tools-mcp/internal/detection"
	"github.com/ironsheep/dice-tools-mcp/internal/imaging"
	"github.com/ironsheep/dice-tools-mcp/internal/pipeline"
	"github.com/ironsheep/dice-tools-mcp/internal/stabilizer"
	"github.com/ironsheep/dice-tools-mcp/internal/tuning"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "dice_recognize", "frame_info").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, CodeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Recognition
	case "dice_recognize":
		return s.handleRecognize(args)
	case "dice_segment":
		return s.handleSegment(args)
	case "dice_count_pips":
		return s.handleCountPips(args)
	case "dice_observe":
		return s.handleObserve(args)

	// Configuration
	case "dice_config_get":
		return s.handleConfigGet()
	case "dice_config_set":
		return s.handleConfigSet(args)
	case "dice_reset":
		return s.handleReset()

	// Rendering
	case "dice_annotate":
		return s.handleAnnotate(args)
	case "dice_crop_region":
		return s.handleCropRegion(args)
	case "dice_settings_panel":
		return s.handleSettingsPanel()
	case "frame_info":
		return s.handleFrameInfo(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

// === Recognition Handlers ===

func (s *Server) handleRecognize(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.recognize(a.Path)
}

// recognize feeds one frame to the server's recognizer and remembers it.
func (s *Server) recognize(path string) (pipeline.FrameResult, error) {
	frame, err := s.cache.Load(path)
	if err != nil {
		return pipeline.FrameResult{}, err
	}
	return s.recognizeFrame(path, frame), nil
}

func (s *Server) recognizeFrame(path string, frame image.Image) pipeline.FrameResult {
	result := s.recognizer.Process(frame)

	s.mu.Lock()
	s.last = &recognition{path: path, frame: frame, result: result}
	s.mu.Unlock()
	return result
}

type segmentArgs struct {
	Path           string   `json:"path"`
	Threshold      *int     `json:"threshold"`
	AspectRatioMin *float64 `json:"aspect_ratio_min"`
	AspectRatioMax *float64 `json:"aspect_ratio_max"`
}

type segmentResult struct {
	Boxes     []detection.BoundingBox     `json:"boxes"`
	Threshold detection.ThresholdInfo     `json:"threshold"`
	Contours  int                         `json:"contours"`
	Config    detection.RecognitionConfig `json:"config"`
}

func (s *Server) handleSegment(args json.RawMessage) (interface{}, error) {
	var a segmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	cfg := s.store.Snapshot()
	applyOverrides(&cfg, a.Threshold, a.AspectRatioMin, a.AspectRatioMax)
	cfg = cfg.Quantized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	seg := detection.SegmentDetailed(frame, cfg)
	boxes := make([]detection.BoundingBox, len(seg.Regions))
	for i, r := range seg.Regions {
		boxes[i] = r.Box
	}
	return segmentResult{Boxes: boxes, Threshold: seg.Threshold, Contours: seg.Contours, Config: cfg}, nil
}

func applyOverrides(cfg *detection.RecognitionConfig, threshold *int, aspectMin, aspectMax *float64) {
	if threshold != nil {
		cfg.BinarizationThreshold = *threshold
	}
	if aspectMin != nil {
		cfg.AspectRatioMin = *aspectMin
	}
	if aspectMax != nil {
		cfg.AspectRatioMax = *aspectMax
	}
}

type countPipsArgs struct {
	Path   string `json:"path"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleCountPips(args json.RawMessage) (interface{}, error) {
	var a countPipsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	region, err := detection.RegionAt(frame, detection.BoundingBox{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height})
	if err != nil {
		return nil, err
	}
	return detection.CountPipsDetailed(region), nil
}

type observeArgs struct {
	Raw   *int `json:"raw"`
	Reset bool `json:"reset"`
}

type observeResult struct {
	Result stabilizer.Result `json:"result"`
	State  string            `json:"state"`
	Window []int             `json:"window"`
}

func (s *Server) handleObserve(args json.RawMessage) (interface{}, error) {
	var a observeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Raw == nil {
		return nil, fmt.Errorf("raw is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Reset {
		s.observer.Reset()
	}
	res := s.observer.Observe(*a.Raw)
	return observeResult{Result: res, State: s.observer.State().String(), Window: s.observer.Window()}, nil
}

// === Configuration Handlers ===

type configResult struct {
	Config  detection.RecognitionConfig `json:"config"`
	Version uint64                      `json:"version"`
	Saved   string                      `json:"saved,omitempty"`
}

func (s *Server) handleConfigGet() (interface{}, error) {
	return configResult{Config: s.store.Snapshot(), Version: s.store.Version()}, nil
}

type configSetArgs struct {
	Threshold      *int     `json:"threshold"`
	AspectRatioMin *float64 `json:"aspect_ratio_min"`
	AspectRatioMax *float64 `json:"aspect_ratio_max"`
	Save           bool     `json:"save"`
}

func (s *Server) handleConfigSet(args json.RawMessage) (interface{}, error) {
	var a configSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Save && s.configPath == "" {
		return nil, fmt.Errorf("cannot save: server started without a config file")
	}
	err := s.store.Apply(func(cfg *detection.RecognitionConfig) {
		applyOverrides(cfg, a.Threshold, a.AspectRatioMin, a.AspectRatioMax)
	})
	if err != nil {
		return nil, err
	}
	cfg := s.store.Snapshot()
	s.logger.Info("config updated",
		zap.Int("threshold", cfg.BinarizationThreshold),
		zap.Float64("aspect_ratio_min", cfg.AspectRatioMin),
		zap.Float64("aspect_ratio_max", cfg.AspectRatioMax))

	res := configResult{Config: cfg, Version: s.store.Version()}
	if a.Save {
		if err := tuning.SaveFile(s.configPath, cfg); err != nil {
			return nil, err
		}
		s.logger.Info("config saved", zap.String("path", s.configPath))
		res.Saved = s.configPath
	}
	return res, nil
}

func (s *Server) handleReset() (interface{}, error) {
	s.recognizer.Reset()

	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
	return s.recognizer.Stats(), nil
}

// === Rendering Handlers ===

type annotateArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
}

type annotateResult struct {
	Total       int    `json:"total"`
	Regions     int    `json:"regions"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Saved       string `json:"saved,omitempty"`
}

func (s *Server) handleAnnotate(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	var result pipeline.FrameResult
	if last != nil && last.path == a.Path && last.frame == frame {
		result = last.result
	} else {
		result = s.recognizeFrame(a.Path, frame)
	}

	boxes := make([]detection.BoundingBox, len(result.Regions))
	for i, r := range result.Regions {
		boxes[i] = r.Box
	}
	out, err := imaging.Annotate(frame, boxes, result.Total, imaging.DefaultStyle())
	if err != nil {
		return nil, err
	}

	encoded, err := imaging.EncodePNGBase64(out)
	if err != nil {
		return nil, err
	}
	res := annotateResult{
		Total:       result.Total,
		Regions:     len(boxes),
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}
	if a.Output != "" {
		if err := imaging.SaveFrame(a.Output, out); err != nil {
			return nil, err
		}
		res.Saved = a.Output
	}
	return res, nil
}

type cropRegionArgs struct {
	Path  string  `json:"path"`
	Index int     `json:"index"`
	Scale float64 `json:"scale"`
	Color bool    `json:"color"`
}

func (s *Server) handleCropRegion(args json.RawMessage) (interface{}, error) {
	var a cropRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	regions := detection.Segment(frame, s.store.Snapshot())
	if a.Index < 0 || a.Index >= len(regions) {
		return nil, fmt.Errorf("region index %d out of range (%d regions)", a.Index, len(regions))
	}
	region := regions[a.Index]
	if a.Color {
		return imaging.CropBox(frame, region.Box, a.Scale)
	}
	return imaging.CropRegion(region, a.Scale)
}

type panelResult struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleSettingsPanel() (interface{}, error) {
	panel, err := imaging.SettingsPanel(s.store.Snapshot(), imaging.DefaultStyle())
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNGBase64(panel)
	if err != nil {
		return nil, err
	}
	return panelResult{ImageBase64: encoded, MimeType: "image/png"}, nil
}

func (s *Server) handleFrameInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}
