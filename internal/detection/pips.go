package detection

import "math"

// CircularityThreshold is the circularity a blob must exceed to count as a pip.
const CircularityThreshold = 0.6

// PipCount is the detailed output of a pip counting pass.
type PipCount struct {
	// Raw is the zero-indexed pip count (circular blobs minus one, floored at 0).
	Raw int `json:"raw"`

	// CircularBlobs is the number of outer contours above the threshold.
	CircularBlobs int `json:"circular_blobs"`

	// Cutoff is the per-region Otsu level used for binarization.
	Cutoff uint8 `json:"cutoff"`

	// Circularities lists the score of every non-degenerate outer contour.
	Circularities []float64 `json:"circularities"`
}

// Circularity returns 4π·area/perimeter² for a closed contour. A perfect
// circle scores 1; a square scores π/4. The second result is false when the
// perimeter is zero and the score is undefined.
func Circularity(c Contour) (float64, bool) {
	perimeter := ArcLength(c, true)
	if perimeter <= 0 {
		return 0, false
	}
	return 4 * math.Pi * ContourArea(c) / (perimeter * perimeter), true
}

// CountPips returns the raw, zero-indexed pip count of a region.
//
// The region is binarized with its own inverted Otsu cutoff and only outer
// borders are considered. One circular blob is taken to be the outline of the
// face itself, so the result is the number of circular blobs minus one,
// never below zero.
//
// Touching pips merge into one blob, and a face whose outline is not found
// comes out one short; neither case is corrected here.
//
// Parameters:
//   - region: A region from Segment or RegionAt. A region without an image
//     counts as zero.
//
// Returns:
//   - int: The raw count; add one for the face value.
func CountPips(region DiceRegion) int {
	return CountPipsDetailed(region).Raw
}

// CountPipsDetailed is CountPips with the per-contour scores.
func CountPipsDetailed(region DiceRegion) PipCount {
	result := PipCount{Circularities: make([]float64, 0)}
	if region.Image == nil {
		return result
	}

	result.Cutoff = OtsuThreshold(region.Image)
	mask := BinarizeInverted(region.Image, result.Cutoff)

	for _, c := range FindContours(mask, RetrieveExternal) {
		score, ok := Circularity(c)
		if !ok {
			continue
		}
		result.Circularities = append(result.Circularities, score)
		if score > CircularityThreshold {
			result.CircularBlobs++
		}
	}

	result.Raw = max(result.CircularBlobs-1, 0)
	return result
}
