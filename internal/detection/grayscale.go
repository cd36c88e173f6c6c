package detection

import (
	"image"
	"image/draw"
)

// gaussianTaps is the 5-tap kernel used when the blur sigma is derived from
// the kernel size (1 4 6 4 1, normalized by 16 per pass).
var gaussianTaps = [5]int{1, 4, 6, 4, 1}

// ToGray converts an image to 8-bit grayscale using ITU-R BT.601 luminance
// weights (0.299*R + 0.587*G + 0.114*B) in 14-bit fixed point, the same
// integer form OpenCV's cvtColor uses, so gray levels match a camera loop
// built on OpenCV.
//
// The result always has bounds starting at (0, 0); frame coordinates used by
// the rest of the package are relative to the source's top-left corner.
// A *image.Gray input is copied, never aliased.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	gray := image.NewGray(image.Rect(0, 0, width, height))

	if src, ok := img.(*image.Gray); ok {
		draw.Draw(gray, gray.Bounds(), src, bounds.Min, draw.Src)
		return gray
	}

	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x := 0; x < width; x++ {
			row[x] = grayValue(img, x+bounds.Min.X, y+bounds.Min.Y)
		}
	}
	return gray
}

// BT.601 weights scaled by 1<<14; they sum to exactly 1<<14.
const (
	grayShift = 14
	grayR     = 4899
	grayG     = 9617
	grayB     = 1868
)

func grayValue(img image.Image, x, y int) uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	lum := (grayR*(r>>8) + grayG*(g>>8) + grayB*(b>>8) + 1<<(grayShift-1)) >> grayShift
	return uint8(lum)
}

// GaussianBlur5 applies a separable 5×5 Gaussian blur.
//
// Borders are reflected without repeating the edge pixel (…cb|abcd|cb…), and
// results are rounded to the nearest level. The input is not modified.
func GaussianBlur5(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return dst
	}

	// Horizontal pass keeps the x16 scale to stay in integers.
	horiz := make([]int, width*height)
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+width]
		for x := 0; x < width; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += int(row[reflect101(x+k, width)]) * gaussianTaps[k+2]
			}
			horiz[y*width+x] = sum
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += horiz[reflect101(y+k, height)*width+x] * gaussianTaps[k+2]
			}
			dst.Pix[y*dst.Stride+x] = uint8((sum + 128) >> 8)
		}
	}
	return dst
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring around
// the edge pixel.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}
