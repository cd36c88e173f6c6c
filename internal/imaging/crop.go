package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/dice-tools-mcp/internal/detection"
)

// CropResult contains a PNG-encoded crop.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropBox extracts box from frame, optionally scaled with a Lanczos filter.
//
// Parameters:
//   - frame: The source frame, in its original color model.
//   - box: The region in frame coordinates, relative to the frame's top-left
//     corner (as produced by detection.Segment).
//   - scale: Resize factor. 0 or 1 keeps the original size.
//
// Returns:
//   - *CropResult: The crop as base64-encoded PNG with its final size.
//   - error: Non-nil if the box is empty or not fully inside the frame.
func CropBox(frame image.Image, box detection.BoundingBox, scale float64) (*CropResult, error) {
	bounds := frame.Bounds()
	r := box.Rect().Add(bounds.Min)

	if box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("invalid crop box %dx%d", box.Width, box.Height)
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop box (%d,%d)-(%d,%d) outside frame %dx%d",
			box.X, box.Y, box.X+box.Width, box.Y+box.Height, bounds.Dx(), bounds.Dy())
	}

	return encodeCrop(scaled(imaging.Crop(frame, r), scale))
}

// CropRegion encodes the grayscale image of a detected region.
func CropRegion(region detection.DiceRegion, scale float64) (*CropResult, error) {
	if region.Image == nil {
		return nil, fmt.Errorf("region has no image")
	}
	return encodeCrop(scaled(region.Image, scale))
}

func scaled(img image.Image, scale float64) image.Image {
	if scale <= 0 || scale == 1.0 {
		return img
	}
	w := max(int(float64(img.Bounds().Dx())*scale), 1)
	h := max(int(float64(img.Bounds().Dy())*scale), 1)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

func encodeCrop(img image.Image) (*CropResult, error) {
	encoded, err := EncodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	return &CropResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNGBase64 encodes img as a base64 PNG string.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
