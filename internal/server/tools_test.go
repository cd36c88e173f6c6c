package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"dice_recognize",
		"dice_segment",
		"dice_count_pips",
		"dice_observe",
		"dice_config_get",
		"dice_config_set",
		"dice_reset",
		"dice_annotate",
		"dice_crop_region",
		"dice_settings_panel",
		"frame_info",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required parameter %q has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsRequiringPath := map[string]bool{
		"dice_recognize":   true,
		"dice_segment":     true,
		"dice_count_pips":  true,
		"dice_annotate":    true,
		"dice_crop_region": true,
		"frame_info":       true,
	}

	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			hasPath := false
			for _, r := range tool.InputSchema["required"].([]string) {
				if r == "path" {
					hasPath = true
				}
			}
			if hasPath != toolsRequiringPath[tool.Name] {
				t.Errorf("requires path: got %v, want %v", hasPath, toolsRequiringPath[tool.Name])
			}
		})
	}
}

func TestToolDefinitions_CropRegionDefaultScale(t *testing.T) {
	var crop Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "dice_crop_region" {
			crop = tool
		}
	}

	props := crop.InputSchema["properties"].(map[string]interface{})
	scale, ok := props["scale"].(map[string]interface{})
	if !ok {
		t.Fatal("scale property missing")
	}
	if scale["default"] != 1.0 {
		t.Errorf("scale default: got %v, want 1.0", scale["default"])
	}
}

func TestToolDefinitions_OptionalFlags(t *testing.T) {
	// Boolean flags belong to exactly one tool each.
	want := map[string]string{"save": "dice_config_set", "color": "dice_crop_region"}

	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		for flag, owner := range want {
			_, has := props[flag]
			if has != (tool.Name == owner) {
				t.Errorf("%s: has %q = %v", tool.Name, flag, has)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New()
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
