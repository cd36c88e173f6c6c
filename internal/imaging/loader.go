package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
	"time"
)

// FrameCache provides thread-safe caching of decoded frames keyed by path.
//
// The MCP tools address frames by file path and usually touch the same frame
// several times (recognize, annotate, crop a region), so each file is decoded
// once per version. An entry is reused only while the file's size and
// modification time are unchanged; a client overwriting the same path with a
// new camera frame gets the new frame. Cached frames stay in memory until
// Evict or Clear.
//
// # Example Usage
//
//	cache := imaging.NewFrameCache()
//	frame, err := cache.Load("/captures/frame-0001.png")
//	if err != nil {
//	    return err
//	}
//	regions := detection.Segment(frame, cfg)
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]cachedFrame
}

type cachedFrame struct {
	img     image.Image
	format  string
	size    int64
	modTime time.Time
}

// NewFrameCache creates an empty frame cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]cachedFrame),
	}
}

// Load returns the decoded frame at path, reading it from disk on first use.
//
// Parameters:
//   - path: Absolute or relative path to a PNG, JPEG or GIF frame.
//
// Returns:
//   - image.Image: The decoded frame. The concrete type follows the file's
//     color model (e.g., *image.Gray, *image.NRGBA, *image.YCbCr).
//   - error: Non-nil if the file cannot be stat'd, opened or decoded.
//
// The path string is the cache key, so a relative and an absolute path to
// the same file are cached separately. The file is stat'd on every call and
// decoded again when its size or modification time has changed.
func (c *FrameCache) Load(path string) (image.Image, error) {
	f, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return f.img, nil
}

func (c *FrameCache) load(path string) (cachedFrame, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return cachedFrame{}, fmt.Errorf("failed to stat frame: %w", err)
	}

	c.mu.RLock()
	f, ok := c.frames[path]
	c.mu.RUnlock()
	if ok && f.size == stat.Size() && f.modTime.Equal(stat.ModTime()) {
		return f, nil
	}

	img, format, err := decodeFile(path)
	if err != nil {
		return cachedFrame{}, err
	}
	f = cachedFrame{img: img, format: format, size: stat.Size(), modTime: stat.ModTime()}

	c.mu.Lock()
	c.frames[path] = f
	c.mu.Unlock()

	return f, nil
}

// Evict removes one frame from the cache. Unknown paths are ignored.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Clear removes every cached frame.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]cachedFrame)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// LoadFrame reads and decodes one frame without caching it.
func LoadFrame(path string) (image.Image, error) {
	img, _, err := decodeFile(path)
	return img, err
}

func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode frame %s: %w", path, err)
	}
	return img, format, nil
}

// FrameInfo contains metadata about a frame file.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// Format is the decoder that read the file: "png", "jpeg" or "gif".
	// It is detected from the file contents, not the extension.
	Format string `json:"format"`

	// ColorModel is "gray", "gray16", "rgba", "rgba64", "ycbcr", "paletted"
	// or "other".
	ColorModel string `json:"color_model"`

	// Grayscale is true when the frame carries a single channel.
	Grayscale bool `json:"grayscale"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads a frame through cache and describes it.
//
// Parameters:
//   - cache: The frame cache to load through. Must not be nil.
//   - path: Path to the frame file.
//
// Returns:
//   - *FrameInfo: Dimensions, format, color model and file size.
//   - error: Non-nil if the frame cannot be loaded.
func LoadFrameInfo(cache *FrameCache, path string) (*FrameInfo, error) {
	f, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	model := "other"
	gray := false
	switch f.img.(type) {
	case *image.Gray:
		model, gray = "gray", true
	case *image.Gray16:
		model, gray = "gray16", true
	case *image.RGBA, *image.NRGBA:
		model = "rgba"
	case *image.RGBA64, *image.NRGBA64:
		model = "rgba64"
	case *image.YCbCr:
		model = "ycbcr"
	case *image.Paletted:
		model = "paletted"
	}

	bounds := f.img.Bounds()
	return &FrameInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        f.format,
		ColorModel:    model,
		Grayscale:     gray,
		FileSizeBytes: f.size,
	}, nil
}
