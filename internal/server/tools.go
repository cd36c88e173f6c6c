package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// schema builds an object input schema.
func schema(props map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func pathProp() map[string]interface{} {
	return prop("string", "Absolute path to the frame image (PNG, JPEG or GIF)")
}

// configProps are the tunable recognition parameters, all optional.
func configProps() map[string]interface{} {
	return map[string]interface{}{
		"threshold":        prop("integer", "Binarization threshold, 0 = automatic (Otsu). Recorded only; Otsu decides the split"),
		"aspect_ratio_min": prop("number", "Smallest accepted width/height ratio of a region, in steps of 0.1"),
		"aspect_ratio_max": prop("number", "Largest accepted width/height ratio of a region, in steps of 0.1"),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	segmentProps := configProps()
	segmentProps["path"] = pathProp()
	setProps := configProps()
	setProps["save"] = prop("boolean", "Also write the resulting configuration to the server's --config file")

	return []Tool{
		// Recognition
		{
			Name:        "dice_recognize",
			Description: "Recognize the dice in a frame and return each region's raw pip count and stabilized value plus the displayed total. Each call is one frame of the server's running recognizer, so repeated calls on a steady scene converge.",
			InputSchema: schema(map[string]interface{}{
				"path": pathProp(),
			}, "path"),
		},
		{
			Name:        "dice_segment",
			Description: "Find die-shaped regions in a frame without counting pips. Optional parameters override the live configuration for this call only.",
			InputSchema: schema(segmentProps, "path"),
		},
		{
			Name:        "dice_count_pips",
			Description: "Count pips in a rectangle of a frame. Returns the raw, zero-indexed count and the circularity of every blob found.",
			InputSchema: schema(map[string]interface{}{
				"path":   pathProp(),
				"x":      prop("integer", "Left edge X coordinate (0-based)"),
				"y":      prop("integer", "Top edge Y coordinate (0-based)"),
				"width":  prop("integer", "Region width in pixels"),
				"height": prop("integer", "Region height in pixels"),
			}, "path", "x", "y", "width", "height"),
		},
		{
			Name:        "dice_observe",
			Description: "Feed a raw pip count to a standalone stabilizer and return its current vote. Useful for exploring the voting window.",
			InputSchema: schema(map[string]interface{}{
				"raw":   prop("integer", "Raw zero-indexed pip count"),
				"reset": prop("boolean", "Clear the standalone stabilizer before observing"),
			}, "raw"),
		},

		// Configuration
		{
			Name:        "dice_config_get",
			Description: "Return the live recognition configuration and its version.",
			InputSchema: schema(map[string]interface{}{}),
		},
		{
			Name:        "dice_config_set",
			Description: "Update the live recognition configuration. Omitted parameters keep their value. Aspect ratios are rounded to one decimal.",
			InputSchema: schema(setProps),
		},
		{
			Name:        "dice_reset",
			Description: "Clear the recognizer's voting windows, tracks and held total.",
			InputSchema: schema(map[string]interface{}{}),
		},

		// Rendering
		{
			Name:        "dice_annotate",
			Description: "Draw region markers and the total on a frame and return it as base64-encoded PNG. Uses the last recognition of the same path, or recognizes the frame first.",
			InputSchema: schema(map[string]interface{}{
				"path":   pathProp(),
				"output": prop("string", "Optional path to also save the annotated frame (.png or .jpg)"),
			}, "path"),
		},
		{
			Name:        "dice_crop_region",
			Description: "Return one detected region of a frame as base64-encoded PNG, either the grayscale region seen by the pip counter or the same box cut from the original frame.",
			InputSchema: schema(map[string]interface{}{
				"path":  pathProp(),
				"index": prop("integer", "Region index in top-to-bottom, left-to-right order"),
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
					"default":     1.0,
				},
				"color": prop("boolean", "Crop the box from the original frame instead of returning the grayscale region"),
			}, "path", "index"),
		},
		{
			Name:        "dice_settings_panel",
			Description: "Render the current configuration as a small image panel (base64-encoded PNG).",
			InputSchema: schema(map[string]interface{}{}),
		},
		{
			Name:        "frame_info",
			Description: "Get the dimensions, format and color model of a frame image.",
			InputSchema: schema(map[string]interface{}{
				"path": pathProp(),
			}, "path"),
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
