// Package server implements the MCP (Model Context Protocol) server for the
// dice recognizer.
//
// The server exposes segmentation, pip counting, value stabilization and the
// live recognition configuration as MCP tools, so an MCP client can inspect
// frames and tune the recognizer without a camera or a window.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Recognition:
//   - dice_recognize: One frame through the running recognizer
//   - dice_segment: Die-shaped regions only
//   - dice_count_pips: Raw pip count of a rectangle
//   - dice_observe: Standalone stabilizer vote
//
// Configuration:
//   - dice_config_get, dice_config_set: Live tuning values
//   - dice_reset: Clear recognizer state
//
// Rendering:
//   - dice_annotate: Frame with region markers and the total
//   - dice_crop_region: One detected region as PNG
//   - dice_settings_panel: Current tuning values as PNG
//   - frame_info: Frame dimensions and format
//
// # State
//
// Frames are cached by path for the lifetime of the process. dice_recognize
// drives a single Recognizer, so successive calls behave like successive
// camera frames. The tuning store may be shared with a file watcher; changes
// apply from the next frame.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.WithStore(store), server.WithLogger(logger))
//	if err := srv.Run(); err != nil {
//	    logger.Fatal("server error", zap.Error(err))
//	}
package server
