package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ironsheep/dice-tools-mcp/internal/detection"
)

// DefaultOverlayColor is cyan.
const DefaultOverlayColor = "#00FFFF"

// TotalTextOrigin is the baseline origin of the total label.
var TotalTextOrigin = image.Pt(10, 30)

// TextPointSize is the label font size at scale 1.
const TextPointSize = 12.0

var labelFont *truetype.Font

func init() {
	var err error
	labelFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Style controls how Annotate draws.
type Style struct {
	// Color is a hex color such as "#00FFFF".
	Color string `json:"color"`

	// Thickness is the circle stroke width in pixels.
	Thickness int `json:"thickness"`

	// TextScale multiplies TextPointSize.
	TextScale int `json:"text_scale"`
}

// DefaultStyle returns a cyan 2-pixel stroke with double-size text.
func DefaultStyle() Style {
	return Style{Color: DefaultOverlayColor, Thickness: 2, TextScale: 2}
}

// ParseColor parses a hex color ("#RGB" or "#RRGGBB").
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(normalizeHex(hex))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func normalizeHex(hex string) string {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	return hex
}

// Annotate returns a copy of frame with a circle around each box and the
// label "Total Dice Value: N" in the top-left corner.
//
// Parameters:
//   - frame: the source frame; it is never modified
//   - boxes: region boxes in frame coordinates
//   - total: the value printed in the label
//   - style: stroke color, thickness and text scale
//
// Returns an RGBA copy anchored at (0, 0), or an error if the style color
// cannot be parsed.
func Annotate(frame image.Image, boxes []detection.BoundingBox, total int, style Style) (*image.RGBA, error) {
	c, err := ParseColor(style.Color)
	if err != nil {
		return nil, err
	}

	b := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), frame, b.Min, draw.Src)

	dc := gg.NewContextForRGBA(out)
	for _, box := range boxes {
		DrawCircle(dc, box.Center(), box.Radius(), style.Thickness, c)
	}
	DrawText(dc, TotalTextOrigin, fmt.Sprintf("Total Dice Value: %d", total), style.TextScale, c)
	return out, nil
}

// SettingsPanel renders the current tuning values on a 400×150 black panel,
// one line per value at y = 30, 60 and 90.
func SettingsPanel(cfg detection.RecognitionConfig, style Style) (*image.RGBA, error) {
	c, err := ParseColor(style.Color)
	if err != nil {
		return nil, err
	}

	panel := image.NewRGBA(image.Rect(0, 0, 400, 150))
	dc := gg.NewContextForRGBA(panel)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	lines := []string{
		fmt.Sprintf("Threshold: %d", cfg.BinarizationThreshold),
		fmt.Sprintf("Aspect Ratio Min: %.1f", cfg.AspectRatioMin),
		fmt.Sprintf("Aspect Ratio Max: %.1f", cfg.AspectRatioMax),
	}
	for i, line := range lines {
		DrawText(dc, image.Pt(10, 30*(i+1)), line, 1, c)
	}
	return panel, nil
}

// DrawCircle strokes a circle of the given radius and thickness centered on
// the pixel at center. A radius of 0 or less draws nothing.
func DrawCircle(dc *gg.Context, center image.Point, radius, thickness int, c color.Color) {
	if radius <= 0 {
		return
	}
	dc.SetColor(c)
	dc.SetLineWidth(float64(max(thickness, 1)))
	dc.DrawCircle(float64(center.X)+0.5, float64(center.Y)+0.5, float64(radius))
	dc.Stroke()
}

// DrawText draws text with its baseline starting at origin. The Go Regular
// font is sized TextPointSize times scale.
func DrawText(dc *gg.Context, origin image.Point, text string, scale int, c color.Color) {
	if text == "" {
		return
	}
	dc.SetFontFace(truetype.NewFace(labelFont, &truetype.Options{Size: TextPointSize * float64(max(scale, 1))}))
	dc.SetColor(c)
	dc.DrawString(text, float64(origin.X), float64(origin.Y))
}

// SaveFrame writes img to path. The encoder follows the extension: JPEG for
// .jpg and .jpeg, PNG otherwise.
func SaveFrame(path string, img image.Image) error {
	encoder := imgio.PNGEncoder()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		encoder = imgio.JPEGEncoder(95)
	}
	if err := imgio.Save(path, img, encoder); err != nil {
		return fmt.Errorf("failed to save frame: %w", err)
	}
	return nil
}
