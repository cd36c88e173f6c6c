package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/fogleman/gg"

	"github.com/ironsheep/dice-tools-mcp/internal/detection"
)

var cyan = color.NRGBA{R: 0, G: 255, B: 255, A: 255}

// inked reports whether a pixel on a black background carries at least
// half of a cyan stroke. Strokes are antialiased.
func inked(c color.Color) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R < 64 && n.G >= 128 && n.B >= 128
}

func countInked(img image.Image, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if inked(img.At(x, y)) {
				n++
			}
		}
	}
	return n
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#00FFFF", cyan, false},
		{"00ffff", cyan, false},
		{"#f00", color.NRGBA{R: 255, A: 255}, false},
		{"#GGGGGG", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 200, 120))
	box := detection.BoundingBox{X: 109, Y: 29, Width: 62, Height: 62}

	out, err := Annotate(frame, []detection.BoundingBox{box}, 8, DefaultStyle())
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if out.Bounds() != frame.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), frame.Bounds())
	}

	center := box.Center()
	for _, p := range []image.Point{
		{center.X + box.Radius(), center.Y},
		{center.X - box.Radius(), center.Y},
		{center.X, center.Y + box.Radius()},
	} {
		if got := out.At(p.X, p.Y); !inked(got) {
			t.Errorf("circle edge %v: got %v, want cyan", p, got)
		}
	}
	if got := out.At(center.X, center.Y); inked(got) {
		t.Error("circle center should not be drawn")
	}

	// Label sits above the baseline at (10, 30).
	if n := countInked(out, image.Rect(10, 0, 200, 31)); n == 0 {
		t.Error("no label pixels drawn")
	}

	for _, v := range frame.Pix {
		if v != 0 {
			t.Fatal("Annotate modified the input frame")
		}
	}
}

func TestAnnotate_BadColor(t *testing.T) {
	style := DefaultStyle()
	style.Color = "teal-ish"
	if _, err := Annotate(image.NewGray(image.Rect(0, 0, 10, 10)), nil, 0, style); err == nil {
		t.Error("expected error for invalid color")
	}
}

func TestDrawCircle_ClipsToBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	dc := gg.NewContextForRGBA(img)
	DrawCircle(dc, image.Pt(0, 0), 15, 2, cyan)

	if n := countInked(img, img.Bounds()); n == 0 {
		t.Error("no pixels drawn")
	}

	blank := image.NewRGBA(image.Rect(0, 0, 20, 20))
	DrawCircle(gg.NewContextForRGBA(blank), image.Pt(10, 10), 0, 2, cyan)
	for _, v := range blank.Pix {
		if v != 0 {
			t.Fatal("zero radius drew pixels")
		}
	}
}

func TestDrawText_Scale(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 200, 60))
	large := image.NewRGBA(image.Rect(0, 0, 200, 60))

	DrawText(gg.NewContextForRGBA(small), image.Pt(5, 40), "42", 1, cyan)
	DrawText(gg.NewContextForRGBA(large), image.Pt(5, 40), "42", 2, cyan)

	ns := countInked(small, small.Bounds())
	nl := countInked(large, large.Bounds())
	if ns == 0 || nl <= 2*ns {
		t.Errorf("scaled text pixels: got %d, want well over 2×%d", nl, ns)
	}
}

func TestSettingsPanel(t *testing.T) {
	panel, err := SettingsPanel(detection.DefaultConfig(), DefaultStyle())
	if err != nil {
		t.Fatalf("SettingsPanel: %v", err)
	}
	if panel.Bounds() != image.Rect(0, 0, 400, 150) {
		t.Errorf("bounds: got %v", panel.Bounds())
	}
	for i, row := range []int{30, 60, 90} {
		if n := countInked(panel, image.Rect(10, row-11, 400, row+2)); n == 0 {
			t.Errorf("line %d: no text pixels", i)
		}
	}
}

func TestSaveFrame(t *testing.T) {
	dir := t.TempDir()
	frame := newFrame(12, 8, color.RGBA{10, 200, 30, 255})

	for _, name := range []string{"out.png", "out.jpg"} {
		path := filepath.Join(dir, name)
		if err := SaveFrame(path, frame); err != nil {
			t.Fatalf("SaveFrame(%s): %v", name, err)
		}
		img, err := LoadFrame(path)
		if err != nil {
			t.Fatalf("LoadFrame(%s): %v", name, err)
		}
		if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 8 {
			t.Errorf("%s bounds: got %v", name, img.Bounds())
		}
	}

	if err := SaveFrame(filepath.Join(dir, "missing", "out.png"), frame); err == nil {
		t.Error("expected error for missing directory")
	}
}
