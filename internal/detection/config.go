package detection

import (
	"errors"
	"fmt"
	"math"
)

// MinRegionArea is the contour area (in square pixels) a candidate region must
// exceed. Smaller blobs are sensor noise, not dice.
const MinRegionArea = 700.0

// Default tuning values.
const (
	DefaultBinarizationThreshold = 0
	DefaultAspectRatioMin        = 0.9
	DefaultAspectRatioMax        = 1.2

	// MaxAspectRatio is the upper end of the tunable aspect ratio range.
	MaxAspectRatio = 2.0
)

// ErrInvalidConfig is returned (wrapped) when a RecognitionConfig is out of range.
var ErrInvalidConfig = errors.New("invalid recognition config")

// RecognitionConfig holds the live-tunable segmentation parameters.
//
// A value of 0 for BinarizationThreshold means Otsu's method chooses the
// cutoff. The config is read once per frame as an immutable snapshot.
type RecognitionConfig struct {
	// BinarizationThreshold is 0 (automatic) or a manual cutoff in [1, 255].
	BinarizationThreshold int `json:"threshold" yaml:"threshold"`

	// AspectRatioMin is the smallest accepted width/height ratio.
	AspectRatioMin float64 `json:"aspect_ratio_min" yaml:"aspect_ratio_min"`

	// AspectRatioMax is the largest accepted width/height ratio.
	AspectRatioMax float64 `json:"aspect_ratio_max" yaml:"aspect_ratio_max"`
}

// DefaultConfig returns the startup configuration.
func DefaultConfig() RecognitionConfig {
	return RecognitionConfig{
		BinarizationThreshold: DefaultBinarizationThreshold,
		AspectRatioMin:        DefaultAspectRatioMin,
		AspectRatioMax:        DefaultAspectRatioMax,
	}
}

// AutoThreshold reports whether the cutoff is chosen by Otsu's method alone.
func (c RecognitionConfig) AutoThreshold() bool {
	return c.BinarizationThreshold == 0
}

// Validate checks every field against its tunable range.
func (c RecognitionConfig) Validate() error {
	if c.BinarizationThreshold < 0 || c.BinarizationThreshold > 255 {
		return fmt.Errorf("%w: threshold %d not in [0,255]", ErrInvalidConfig, c.BinarizationThreshold)
	}
	if math.IsNaN(c.AspectRatioMin) || c.AspectRatioMin < 0 || c.AspectRatioMin > MaxAspectRatio {
		return fmt.Errorf("%w: aspect_ratio_min %.2f not in [0,%.1f]", ErrInvalidConfig, c.AspectRatioMin, MaxAspectRatio)
	}
	if math.IsNaN(c.AspectRatioMax) || c.AspectRatioMax < 0 || c.AspectRatioMax > MaxAspectRatio {
		return fmt.Errorf("%w: aspect_ratio_max %.2f not in [0,%.1f]", ErrInvalidConfig, c.AspectRatioMax, MaxAspectRatio)
	}
	if c.AspectRatioMin > c.AspectRatioMax {
		return fmt.Errorf("%w: aspect_ratio_min %.2f > aspect_ratio_max %.2f", ErrInvalidConfig, c.AspectRatioMin, c.AspectRatioMax)
	}
	return nil
}

// Quantized returns a copy with the aspect bounds snapped to the 0.1 slider step.
func (c RecognitionConfig) Quantized() RecognitionConfig {
	c.AspectRatioMin = math.Round(c.AspectRatioMin*10) / 10
	c.AspectRatioMax = math.Round(c.AspectRatioMax*10) / 10
	return c
}

// AcceptsAspect reports whether ratio lies within [AspectRatioMin, AspectRatioMax].
func (c RecognitionConfig) AcceptsAspect(ratio float64) bool {
	return c.AspectRatioMin <= ratio && ratio <= c.AspectRatioMax
}
