// Package capture provides the frame sources that feed the recognizer.
//
// Sources are pull-based: each Next call blocks until one frame is
// available and returns io.EOF once the stream has ended. A camera is only
// available in binaries built with the gocv tag.
package capture

import (
	"context"
	"errors"
	"image"
)

// ErrCameraUnavailable is returned by OpenCamera in builds without OpenCV.
var ErrCameraUnavailable = errors.New("camera capture requires a build with the gocv tag")

// Source produces frames one at a time.
type Source interface {
	// Next returns the next frame, or io.EOF when the stream has ended.
	Next(ctx context.Context) (image.Image, error)

	// Close releases the underlying device or files.
	Close() error
}
