//go:build gocv
// +build gocv

package capture

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// CameraSource reads frames from a video device through OpenCV.
type CameraSource struct {
	mu     sync.Mutex
	device *gocv.VideoCapture
	mat    gocv.Mat
	closed bool
}

// OpenCamera opens the video device with the given index.
func OpenCamera(deviceID int) (Source, error) {
	device, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", deviceID, err)
	}
	if !device.IsOpened() {
		device.Close()
		return nil, fmt.Errorf("camera %d did not open", deviceID)
	}
	return &CameraSource{device: device, mat: gocv.NewMat()}, nil
}

// Next grabs one frame. A failed read ends the stream.
func (c *CameraSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, io.EOF
	}
	if ok := c.device.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, io.EOF
	}

	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

// Close releases the device.
func (c *CameraSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.mat.Close()
	return c.device.Close()
}
