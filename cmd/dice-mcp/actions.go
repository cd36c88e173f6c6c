package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/dice-tools-mcp/internal/capture"
	"github.com/ironsheep/dice-tools-mcp/internal/detection"
	"github.com/ironsheep/dice-tools-mcp/internal/logging"
	"github.com/ironsheep/dice-tools-mcp/internal/pipeline"
	"github.com/ironsheep/dice-tools-mcp/internal/runner"
	"github.com/ironsheep/dice-tools-mcp/internal/server"
	"github.com/ironsheep/dice-tools-mcp/internal/tuning"
)

func newLogger(c *cli.Context) (*zap.Logger, error) {
	return logging.New(logging.LevelFromEnv(c.String(flagLogLevel)), c.Bool(flagLogJSON))
}

// loadConfig reads the config file (if any) and applies flag overrides.
func loadConfig(c *cli.Context) (detection.RecognitionConfig, error) {
	cfg := detection.DefaultConfig()
	if path := c.String(flagConfig); path != "" {
		loaded, err := tuning.LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if c.IsSet(flagThreshold) {
		cfg.BinarizationThreshold = c.Int(flagThreshold)
	}
	if c.IsSet(flagAspectMin) {
		cfg.AspectRatioMin = c.Float64(flagAspectMin)
	}
	if c.IsSet(flagAspectMax) {
		cfg.AspectRatioMax = c.Float64(flagAspectMax)
	}
	return cfg, nil
}

// setup builds the tuning store and recognizer shared by both commands and
// starts the change logger, plus the config watcher when requested. The
// returned stop function ends both.
func setup(ctx context.Context, c *cli.Context, logger *zap.Logger) (*tuning.Store, *pipeline.Recognizer, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := tuning.NewStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	mode, err := pipeline.ParseMode(c.String(flagMode))
	if err != nil {
		return nil, nil, nil, err
	}
	rec := pipeline.New(store, pipeline.WithMode(mode), pipeline.WithLogger(logger))

	stop := logChanges(ctx, store, logger)
	if c.Bool(flagWatch) {
		path := c.String(flagConfig)
		if path == "" {
			stop()
			return nil, nil, nil, errors.New("--watch requires --config")
		}
		w, err := tuning.NewWatcher(path, store, logger)
		if err != nil {
			stop()
			return nil, nil, nil, err
		}
		wctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := w.Run(wctx); err != nil {
				logger.Error("config watcher stopped", zap.Error(err))
			}
		}()
		stopLog := stop
		stop = func() {
			cancel()
			<-done
			stopLog()
		}
		logger.Info("watching config", zap.String("path", path))
	}

	snap := store.Snapshot()
	logger.Info("recognizer ready",
		zap.Stringer("mode", mode),
		zap.Int("threshold", snap.BinarizationThreshold),
		zap.Float64("aspect_ratio_min", snap.AspectRatioMin),
		zap.Float64("aspect_ratio_max", snap.AspectRatioMax))
	return store, rec, stop, nil
}

// logChanges logs every config the store accepts, whichever writer made
// the change, until ctx ends or the returned stop function is called.
func logChanges(ctx context.Context, store *tuning.Store, logger *zap.Logger) func() {
	updates, unsubscribe := store.Subscribe()
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case cfg := <-updates:
				logger.Info("config changed",
					zap.Uint64("version", store.Version()),
					zap.Int("threshold", cfg.BinarizationThreshold),
					zap.Float64("aspect_ratio_min", cfg.AspectRatioMin),
					zap.Float64("aspect_ratio_max", cfg.AspectRatioMax))
			}
		}
	}()
	return func() {
		cancel()
		<-done
		unsubscribe()
	}
}

func serveAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, rec, stop, err := setup(ctx, c, logger)
	if err != nil {
		return err
	}
	defer stop()

	logger.Debug("starting MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit))

	server.Version = Version
	srv := server.New(
		server.WithStore(store),
		server.WithRecognizer(rec),
		server.WithLogger(logger),
		server.WithConfigPath(c.String(flagConfig)),
	)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func openSource(c *cli.Context) (capture.Source, error) {
	dir := c.String(flagFrames)
	camera := c.Int(flagCamera)
	switch {
	case dir != "" && camera >= 0:
		return nil, errors.New("use either --frames or --camera, not both")
	case dir != "":
		return capture.NewDirSource(dir)
	case camera >= 0:
		return capture.OpenCamera(camera)
	default:
		return nil, errors.New("one of --frames or --camera is required")
	}
}

func runAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, err := openSource(c)
	if err != nil {
		return err
	}
	defer src.Close()

	_, rec, stop, err := setup(ctx, c, logger)
	if err != nil {
		return err
	}
	defer stop()

	sum, err := runner.Run(ctx, src, rec, runner.Options{
		OutDir:    c.String(flagOut),
		MaxFrames: c.Int(flagMaxFrames),
		Logger:    logger,
		OnFrame: func(r pipeline.FrameResult) {
			fmt.Fprintf(c.App.Writer, "frame %d: Total Dice Value: %d\n", r.Index, r.Total)
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d frames, last total %d, max total %d\n", sum.Frames, sum.LastTotal, sum.MaxTotal)
	return nil
}
