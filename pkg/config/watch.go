package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads filename whenever it changes and passes each successfully
// loaded value to onChange. newTarget returns the value to decode into,
// usually a fresh default config. Invalid files are logged and skipped.
// Watch blocks until ctx is cancelled.
//
// The parent directory is watched so that editors which replace the file
// by rename are handled.
func Watch[T any](ctx context.Context, filename string, newTarget func() *T, onChange func(*T), logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(filename)
	if err != nil {
		return fmt.Errorf("resolve config path %s: %w", filename, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}
	logger.Info("config watcher: started", slog.String("path", abs))

	var (
		timer    *time.Timer
		reloadCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-reloadCh:
			target := newTarget()
			if err := Load(abs, target); err != nil {
				logger.Warn("config watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("config watcher: reloaded", slog.String("path", abs))
			onChange(target)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				reloadCh = timer.C
			} else {
				timer.Reset(reloadDebounce)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
