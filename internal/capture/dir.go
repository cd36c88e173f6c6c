package capture

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ironsheep/dice-tools-mcp/internal/imaging"
)

// frameExtensions lists the file types DirSource reads.
var frameExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// DirSource replays the image files of a directory in lexical order.
type DirSource struct {
	mu    sync.Mutex
	paths []string
	next  int
}

// NewDirSource lists the frames in dir. Subdirectories and files with other
// extensions are skipped.
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !frameExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	return &DirSource{paths: paths}, nil
}

// Len returns the number of frames in the directory.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// Path returns the file of the frame most recently returned by Next.
func (s *DirSource) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next == 0 {
		return ""
	}
	return s.paths[s.next-1]
}

// Next decodes the next file. A file that fails to decode ends the stream
// with an error.
func (s *DirSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.next >= len(s.paths) {
		s.mu.Unlock()
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++
	s.mu.Unlock()

	return imaging.LoadFrame(path)
}

// Close implements Source.
func (s *DirSource) Close() error {
	return nil
}
