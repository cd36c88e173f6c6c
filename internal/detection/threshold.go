package detection

import (
	"image"
	"math"
)

// Foreground and Background are the two levels of a binary mask.
const (
	Background uint8 = 0
	Foreground uint8 = 255
)

// otsuEpsilon mirrors single-precision epsilon: classes holding less than this
// share of the pixels are not considered.
const otsuEpsilon = 1.1920929e-07

// Histogram counts the pixels at each of the 256 gray levels.
func Histogram(img *image.Gray) [256]int {
	var hist [256]int
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		off := img.PixOffset(bounds.Min.X, y)
		for _, v := range img.Pix[off : off+bounds.Dx()] {
			hist[v]++
		}
	}
	return hist
}

// OtsuThreshold returns the cutoff that maximizes the between-class variance
// (equivalently, minimizes the within-class variance) of a two-class split
// of the image histogram. Pixels at or below the cutoff form the dark class.
//
// Ties keep the lowest cutoff. A uniform image yields 0.
func OtsuThreshold(img *image.Gray) uint8 {
	hist := Histogram(img)
	total := 0
	for _, n := range hist {
		total += n
	}
	if total == 0 {
		return 0
	}

	scale := 1.0 / float64(total)
	mu := 0.0
	for i, n := range hist {
		mu += float64(i) * float64(n)
	}
	mu *= scale

	var mu1, q1, maxSigma float64
	maxVal := 0
	for i, n := range hist {
		p := float64(n) * scale
		mu1 *= q1
		q1 += p
		q2 := 1.0 - q1

		if math.Min(q1, q2) < otsuEpsilon || math.Max(q1, q2) > 1.0-otsuEpsilon {
			continue
		}

		mu1 = (mu1 + float64(i)*p) / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			maxVal = i
		}
	}
	return uint8(maxVal)
}

// BinarizeInverted marks pixels at or below cutoff as Foreground and the rest
// as Background, so dark features become the shapes to trace.
func BinarizeInverted(img *image.Gray, cutoff uint8) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	mask := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		src := img.Pix[img.PixOffset(bounds.Min.X, bounds.Min.Y+y):][:width]
		dst := mask.Pix[y*mask.Stride:][:width]
		for x, v := range src {
			if v > cutoff {
				dst[x] = Background
			} else {
				dst[x] = Foreground
			}
		}
	}
	return mask
}

// ThresholdInfo describes how a frame was binarized.
type ThresholdInfo struct {
	// Cutoff is the level that split the frame (pixels <= Cutoff are foreground).
	Cutoff uint8 `json:"cutoff"`

	// Requested is the configured manual threshold (0 = automatic).
	Requested int `json:"requested"`

	// Auto is true when no manual threshold was configured.
	Auto bool `json:"auto"`
}

// binarizeFrame applies the frame-level binarization policy: the Otsu cutoff
// always decides the split, a manual threshold is only recorded.
func binarizeFrame(blurred *image.Gray, cfg RecognitionConfig) (*image.Gray, ThresholdInfo) {
	cutoff := OtsuThreshold(blurred)
	info := ThresholdInfo{
		Cutoff:    cutoff,
		Requested: cfg.BinarizationThreshold,
		Auto:      cfg.AutoThreshold(),
	}
	return BinarizeInverted(blurred, cutoff), info
}
