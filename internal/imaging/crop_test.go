package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/dice-tools-mcp/internal/detection"
)

// decodeResult decodes the PNG carried by a CropResult.
func decodeResult(t *testing.T, r *CropResult) image.Image {
	t.Helper()

	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func TestCropBox(t *testing.T) {
	frame := newFrame(100, 80, color.RGBA{0, 0, 0, 255})
	for y := 20; y < 40; y++ {
		for x := 10; x < 30; x++ {
			frame.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}

	result, err := CropBox(frame, detection.BoundingBox{X: 10, Y: 20, Width: 20, Height: 20}, 1)
	if err != nil {
		t.Fatalf("CropBox: %v", err)
	}
	if result.Width != 20 || result.Height != 20 || result.MimeType != "image/png" {
		t.Errorf("got %dx%d %s, want 20x20 image/png", result.Width, result.Height, result.MimeType)
	}

	img := decodeResult(t, result)
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("crop origin: got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestCropBox_Scale(t *testing.T) {
	frame := newFrame(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name  string
		scale float64
		want  int
	}{
		{"unscaled", 1, 40},
		{"zero means unscaled", 0, 40},
		{"double", 2, 80},
		{"half", 0.5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CropBox(frame, detection.BoundingBox{X: 5, Y: 5, Width: 40, Height: 40}, tt.scale)
			if err != nil {
				t.Fatalf("CropBox: %v", err)
			}
			if result.Width != tt.want || result.Height != tt.want {
				t.Errorf("got %dx%d, want %dx%d", result.Width, result.Height, tt.want, tt.want)
			}
		})
	}
}

func TestCropBox_Invalid(t *testing.T) {
	frame := newFrame(50, 50, color.White)

	tests := []struct {
		name string
		box  detection.BoundingBox
	}{
		{"outside", detection.BoundingBox{X: 40, Y: 40, Width: 20, Height: 20}},
		{"negative origin", detection.BoundingBox{X: -1, Y: 0, Width: 10, Height: 10}},
		{"empty", detection.BoundingBox{X: 5, Y: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropBox(frame, tt.box, 1); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCropBox_OffsetFrame(t *testing.T) {
	base := newFrame(60, 60, color.Black)
	base.Set(20, 20, color.White)
	sub := base.SubImage(image.Rect(10, 10, 60, 60))

	// Box coordinates are relative to the frame's top-left corner.
	result, err := CropBox(sub, detection.BoundingBox{X: 10, Y: 10, Width: 5, Height: 5}, 1)
	if err != nil {
		t.Fatalf("CropBox: %v", err)
	}
	r, _, _, _ := decodeResult(t, result).At(0, 0).RGBA()
	if r>>8 != 255 {
		t.Errorf("got red %d at crop origin, want 255", r>>8)
	}
}

func TestCropRegion(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 30, 20))
	region := detection.DiceRegion{Image: gray, Box: detection.BoundingBox{Width: 30, Height: 20}}

	result, err := CropRegion(region, 3)
	if err != nil {
		t.Fatalf("CropRegion: %v", err)
	}
	if result.Width != 90 || result.Height != 60 {
		t.Errorf("got %dx%d, want 90x60", result.Width, result.Height)
	}

	if _, err := CropRegion(detection.DiceRegion{}, 1); err == nil {
		t.Error("expected error for region without image")
	}
}

func TestEncodePNGBase64(t *testing.T) {
	encoded, err := EncodePNGBase64(newFrame(3, 2, color.White))
	if err != nil {
		t.Fatalf("EncodePNGBase64: %v", err)
	}
	img := decodeResult(t, &CropResult{ImageBase64: encoded})
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds: got %v", img.Bounds())
	}
}
