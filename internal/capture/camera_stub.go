//go:build !gocv
// +build !gocv

package capture

// OpenCamera reports ErrCameraUnavailable: this build has no OpenCV support.
func OpenCamera(int) (Source, error) {
	return nil, ErrCameraUnavailable
}
