package detection

import (
	"fmt"
	"image"
	"image/draw"
	"sort"
)

// BoundingBox is an upright rectangle in frame pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`      // Left edge (inclusive)
	Y      int `json:"y"`      // Top edge (inclusive)
	Width  int `json:"width"`  // Horizontal extent in pixels
	Height int `json:"height"` // Vertical extent in pixels
}

// Rect converts the box to an image.Rectangle (max corner exclusive).
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// AspectRatio returns width/height, or 0 for a box without height.
func (b BoundingBox) AspectRatio() float64 {
	if b.Height == 0 {
		return 0
	}
	return float64(b.Width) / float64(b.Height)
}

// Center returns the marker center used when drawing the region.
func (b BoundingBox) Center() image.Point {
	return image.Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Radius returns the marker radius used when drawing the region.
func (b BoundingBox) Radius() int {
	return min(b.Width, b.Height) / 2
}

// DiceRegion is a grayscale crop of a frame around one die-like shape.
//
// Image bounds start at (0, 0) and the region never aliases the frame.
type DiceRegion struct {
	Image *image.Gray
	Box   BoundingBox
}

// SegmentResult is the detailed output of a segmentation pass.
type SegmentResult struct {
	Regions   []DiceRegion
	Threshold ThresholdInfo

	// Contours is the number of borders found before filtering.
	Contours int
}

// Segment finds the die-like regions of a frame.
//
// The frame is converted to grayscale, blurred with a 5×5 Gaussian and
// binarized so that pixels darker than the Otsu cutoff become foreground.
// Every border of the mask (outer and hole borders) whose enclosed area
// exceeds MinRegionArea and whose bounding box aspect ratio lies within the
// configured bounds becomes a region, cropped from the unblurred grayscale
// frame. Regions are ordered by their top-left corner, top to bottom then
// left to right. A frame without candidates yields an empty slice.
//
// Parameters:
//   - frame: Any image; color frames are converted with ToGray.
//   - cfg: The aspect ratio bounds to accept. BinarizationThreshold is not
//     used for the split.
//
// Returns:
//   - []DiceRegion: The accepted regions, each with its own grayscale copy.
func Segment(frame image.Image, cfg RecognitionConfig) []DiceRegion {
	return SegmentDetailed(frame, cfg).Regions
}

// SegmentDetailed is Segment with the binarization and contour statistics.
func SegmentDetailed(frame image.Image, cfg RecognitionConfig) SegmentResult {
	gray := ToGray(frame)
	mask, info := binarizeFrame(GaussianBlur5(gray), cfg)
	contours := FindContours(mask, RetrieveTree)

	regions := make([]DiceRegion, 0)
	for _, c := range contours {
		box, ok := acceptContour(c, cfg)
		if !ok {
			continue
		}
		regions = append(regions, DiceRegion{
			Image: cropGray(gray, box.Rect()),
			Box:   box,
		})
	}

	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i].Box, regions[j].Box
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	return SegmentResult{
		Regions:   regions,
		Threshold: info,
		Contours:  len(contours),
	}
}

// RegionAt crops box out of frame as a region, without any filtering. It
// fails when the box is empty or not fully inside the frame.
func RegionAt(frame image.Image, box BoundingBox) (DiceRegion, error) {
	if box.Width <= 0 || box.Height <= 0 {
		return DiceRegion{}, fmt.Errorf("invalid region %dx%d", box.Width, box.Height)
	}
	gray := ToGray(frame)
	if !box.Rect().In(gray.Bounds()) {
		return DiceRegion{}, fmt.Errorf("region (%d,%d) %dx%d outside frame %dx%d",
			box.X, box.Y, box.Width, box.Height, gray.Bounds().Dx(), gray.Bounds().Dy())
	}
	return DiceRegion{Image: cropGray(gray, box.Rect()), Box: box}, nil
}

// acceptContour applies the area and aspect ratio filters.
func acceptContour(c Contour, cfg RecognitionConfig) (BoundingBox, bool) {
	if ContourArea(c) <= MinRegionArea {
		return BoundingBox{}, false
	}
	box := BoundingRect(c)
	if box.Height == 0 || !cfg.AcceptsAspect(box.AspectRatio()) {
		return BoundingBox{}, false
	}
	return box, true
}

// cropGray copies r out of gray into a new image anchored at (0, 0).
func cropGray(gray *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(gray.Bounds())
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), gray, r.Min, draw.Src)
	return out
}
