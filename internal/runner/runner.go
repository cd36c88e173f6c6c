// Package runner drives the frame loop: pull a frame, recognize it, report
// the total, repeat until the source ends or the context is cancelled.
package runner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/dice-tools-mcp/internal/capture"
	"github.com/ironsheep/dice-tools-mcp/internal/detection"
	"github.com/ironsheep/dice-tools-mcp/internal/imaging"
	"github.com/ironsheep/dice-tools-mcp/internal/logging"
	"github.com/ironsheep/dice-tools-mcp/internal/pipeline"
)

// Recognizer processes one frame at a time.
type Recognizer interface {
	Process(frame image.Image) pipeline.FrameResult
}

// Options configures Run.
type Options struct {
	// OutDir receives an annotated PNG per frame when set.
	OutDir string

	// MaxFrames stops the loop after that many frames (0 = no limit).
	MaxFrames int

	// Style is used for annotated frames.
	Style imaging.Style

	Logger *zap.Logger

	// OnFrame is called after each frame.
	OnFrame func(pipeline.FrameResult)
}

// Summary describes a finished run.
type Summary struct {
	Frames    int           `json:"frames"`
	Saved     int           `json:"saved"`
	LastTotal int           `json:"last_total"`
	MaxTotal  int           `json:"max_total"`
	Duration  time.Duration `json:"duration"`
}

// Run processes frames from src until it returns io.EOF, ctx is cancelled
// or MaxFrames is reached.
//
// Parameters:
//   - ctx: Passed to src.Next; cancellation is a normal stop.
//   - src: The frame source. Run does not close it.
//   - rec: The recognizer fed every frame, in order.
//   - opts: Frame limit, output directory, logger and per-frame callback.
//
// Returns:
//   - Summary: Counts and totals for the frames processed, also on error.
//   - error: The wrapped source error that ended the run, or a failure to
//     create OutDir; nil on a normal stop. Failed saves are only logged.
func Run(ctx context.Context, src capture.Source, rec Recognizer, opts Options) (Summary, error) {
	logger := logging.OrNop(opts.Logger)
	if opts.Style.Color == "" {
		opts.Style = imaging.DefaultStyle()
	}
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var sum Summary
	start := time.Now()

	for opts.MaxFrames <= 0 || sum.Frames < opts.MaxFrames {
		frame, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				break
			}
			sum.Duration = time.Since(start)
			return sum, fmt.Errorf("frame %d: %w", sum.Frames+1, err)
		}

		result := rec.Process(frame)
		sum.Frames++
		sum.LastTotal = result.Total
		sum.MaxTotal = max(sum.MaxTotal, result.Total)

		logger.Info("frame",
			zap.Int("frame", result.Index),
			zap.Int("regions", len(result.Regions)),
			zap.Int("total", result.Total),
			zap.Bool("held", result.Held))

		if opts.OutDir != "" {
			if err := saveAnnotated(opts, frame, result); err != nil {
				logger.Warn("failed to save annotated frame", zap.Int("frame", result.Index), zap.Error(err))
			} else {
				sum.Saved++
			}
		}
		if opts.OnFrame != nil {
			opts.OnFrame(result)
		}
	}

	sum.Duration = time.Since(start)
	logger.Info("run finished",
		zap.Int("frames", sum.Frames),
		zap.Int("last_total", sum.LastTotal),
		zap.Duration("duration", sum.Duration))
	return sum, nil
}

func saveAnnotated(opts Options, frame image.Image, result pipeline.FrameResult) error {
	boxes := make([]detection.BoundingBox, len(result.Regions))
	for i, r := range result.Regions {
		boxes[i] = r.Box
	}
	out, err := imaging.Annotate(frame, boxes, result.Total, opts.Style)
	if err != nil {
		return err
	}
	return imaging.SaveFrame(filepath.Join(opts.OutDir, fmt.Sprintf("frame-%05d.png", result.Index)), out)
}
