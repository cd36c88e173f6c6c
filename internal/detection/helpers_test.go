package detection

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// Gray levels used by the synthetic scenes.
const (
	tableLevel = 30
	faceLevel  = 230
	pipLevel   = 20
	pipRadius  = 5
	dieSize    = 60
)

// pipLayouts maps a face value to pip centers relative to the die's top-left.
var pipLayouts = map[int][]image.Point{
	1: {{30, 30}},
	2: {{15, 15}, {45, 45}},
	3: {{15, 15}, {30, 30}, {45, 45}},
	4: {{15, 15}, {45, 15}, {15, 45}, {45, 45}},
	5: {{15, 15}, {45, 15}, {30, 30}, {15, 45}, {45, 45}},
	6: {{15, 15}, {45, 15}, {15, 30}, {45, 30}, {15, 45}, {45, 45}},
}

// newGray creates a uniform grayscale image.
func newGray(width, height int, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

// fillRect paints r with level.
func fillRect(img *image.Gray, r image.Rectangle, level uint8) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
}

// fillDisc paints every pixel within radius of center.
func fillDisc(img *image.Gray, center image.Point, radius int, level uint8) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				p := center.Add(image.Pt(dx, dy))
				if p.In(img.Bounds()) {
					img.SetGray(p.X, p.Y, color.Gray{Y: level})
				}
			}
		}
	}
}

// drawDie paints a white die face with black pips at origin.
func drawDie(t *testing.T, img *image.Gray, origin image.Point, value int) {
	t.Helper()

	pips, ok := pipLayouts[value]
	if !ok {
		t.Fatalf("no pip layout for value %d", value)
	}
	fillRect(img, image.Rect(origin.X, origin.Y, origin.X+dieSize, origin.Y+dieSize), faceLevel)
	for _, p := range pips {
		fillDisc(img, origin.Add(p), pipRadius, pipLevel)
	}
}

// newTableScene draws dice on a dark table. Frames are 200×120 so the table
// itself never passes the aspect ratio filter.
func newTableScene(t *testing.T, dice map[image.Point]int) *image.Gray {
	t.Helper()

	img := newGray(200, 120, tableLevel)
	for origin, value := range dice {
		drawDie(t, img, origin, value)
	}
	return img
}

// newFaceRegion draws a single die face as the segmenter would crop it.
func newFaceRegion(t *testing.T, value int) DiceRegion {
	t.Helper()

	img := newGray(dieSize+2, dieSize+2, tableLevel)
	drawDie(t, img, image.Pt(1, 1), value)
	return DiceRegion{Image: img, Box: BoundingBox{Width: dieSize + 2, Height: dieSize + 2}}
}

// newMask creates a binary mask with the given rectangles set to Foreground.
func newMask(width, height int, rects ...image.Rectangle) *image.Gray {
	mask := newGray(width, height, Background)
	for _, r := range rects {
		fillRect(mask, r, Foreground)
	}
	return mask
}

// polygonCircle approximates a circle with n vertices.
func polygonCircle(center image.Point, radius float64, n int) Contour {
	c := make(Contour, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		c[i] = image.Point{
			X: center.X + int(math.Round(radius*math.Cos(angle))),
			Y: center.Y + int(math.Round(radius*math.Sin(angle))),
		}
	}
	return c
}
