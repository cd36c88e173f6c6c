// Package imaging loads, crops, annotates and saves frames for the dice
// recognizer.
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner of the
// frame, X increasing rightward and Y downward. Boxes are the
// detection.BoundingBox values produced by segmentation.
//
// # Frames
//
// LoadFrame decodes a PNG, JPEG or GIF file; the format is detected from the
// contents. FrameCache keeps decoded frames by path and is safe for
// concurrent use; an entry is decoded again when the file's size or
// modification time changes. Long-running processes should Evict or Clear
// frames they no longer need.
//
// # Rendering
//
// Annotate draws a circle around each region and the label
// "Total Dice Value: N" on a copy of the frame. SettingsPanel renders the
// current tuning values on a small black panel. Both use a Style whose color
// is a hex string ("#00FFFF" by default).
//
// # Output
//
// Crops and panels are returned as base64-encoded PNG for the MCP server.
// SaveFrame writes PNG, or JPEG when the path ends in .jpg or .jpeg.
package imaging
