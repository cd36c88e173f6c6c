package tuning

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ironsheep/dice-tools-mcp/internal/logging"
)

// Watcher reloads a config file into a Store whenever the file changes.
//
// The parent directory is watched so that editors replacing the file by
// rename are picked up. Files that fail to parse or validate are logged and
// ignored; the store keeps its previous config.
type Watcher struct {
	path    string
	store   *Store
	logger  *zap.Logger
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching path.
func NewWatcher(path string, store *Store, logger *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:    abs,
		store:   store,
		logger:  logging.OrNop(logger),
		watcher: fw,
	}, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.Reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

// Reload reads the file once and applies it to the store.
func (w *Watcher) Reload() bool {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("ignoring config file", zap.String("path", w.path), zap.Error(err))
		return false
	}
	if err := w.store.Update(cfg); err != nil {
		w.logger.Warn("rejected config file", zap.String("path", w.path), zap.Error(err))
		return false
	}
	w.logger.Info("config reloaded",
		zap.String("path", w.path),
		zap.Int("threshold", cfg.BinarizationThreshold),
		zap.Float64("aspect_ratio_min", cfg.AspectRatioMin),
		zap.Float64("aspect_ratio_max", cfg.AspectRatioMax))
	return true
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
