package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the write+rename event pairs most editors emit
// for a single logical save into one reload.
const debounceWindow = 250 * time.Millisecond

// Watch watches the config file for changes and reloads the Store on
// each edit, debounced, until ctx is cancelled (spec's "fsnotify watch
// with debounced reload" addition to the Config Store). logger defaults
// to slog.Default() when nil.
func (s *Store) Watch(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	var pending *time.Timer
	reload := func() {
		if err := s.reload(); err != nil {
			logger.Warn("config reload failed, keeping previous config", "path", s.path, "error", err)
		} else {
			logger.Info("config reloaded", "path", s.path)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounceWindow, reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
