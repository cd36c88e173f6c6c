package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// writePNG writes a width×1 gray frame so tests can tell frames apart.
func writePNG(t *testing.T, dir, name string, width int) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, 1))
	img.SetGray(0, 0, color.Gray{Y: 200})
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
}

func TestDirSource_LexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "frame-002.png", 2)
	writePNG(t, dir, "frame-001.png", 1)
	writePNG(t, dir, "frame-003.PNG", 3)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}
	defer src.Close()

	if src.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", src.Len())
	}

	ctx := context.Background()
	for want := 1; want <= 3; want++ {
		img, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("frame %d: %v", want, err)
		}
		if got := img.Bounds().Dx(); got != want {
			t.Errorf("frame %d: width %d", want, got)
		}
		if filepath.Base(src.Path()) == "" {
			t.Error("Path is empty after Next")
		}
	}

	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("after last frame: got %v, want io.EOF", err)
	}
}

func TestDirSource_Empty(t *testing.T) {
	src, err := NewDirSource(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}
	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("got %v, want io.EOF", err)
	}
	if src.Path() != "" {
		t.Errorf("Path before Next: got %q", src.Path())
	}
}

func TestDirSource_MissingDir(t *testing.T) {
	if _, err := NewDirSource(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestDirSource_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 1)

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestDirSource_CorruptFrame(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.png"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Next(context.Background()); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("got %v, want a decode error", err)
	}
}
