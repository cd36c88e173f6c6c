// Package detection finds dice in camera frames and counts their pips.
//
// The package implements the two image stages of the recognition pipeline:
//
//   - Segment: frame → grayscale → 5×5 Gaussian blur → inverted Otsu
//     binarization → border tracing with full nesting → area and aspect
//     ratio filters → grayscale crops (DiceRegion).
//   - CountPips: region → inverted Otsu binarization → outer borders only →
//     circularity filter → zero-indexed pip count.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at the top-left corner of the frame
//   - X increases rightward, Y increases downward
//   - BoundingBox holds the top-left corner plus width and height in pixels
//
// # Contours
//
// Borders are traced through pixel centers with 8-connectivity, so a filled
// n×n square has area (n-1)² and perimeter 4(n-1). Pixels on the outermost
// row and column of a mask are treated as background.
//
// # Errors
//
// Nothing in this package fails on valid images. Shapes that are too small,
// out of proportion or degenerate are silently excluded; a frame without dice
// yields no regions and a region without pips yields 0.
//
// Functions are stateless and safe for concurrent use.
package detection
