package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration when the file changes and passes it to
// onChange. Invalid files are logged and ignored. Watch blocks until ctx
// is cancelled.
func Watch(ctx context.Context, logger *slog.Logger, path string, onChange func(Configuration)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fail to create the configuration watcher: %w", err)
	}
	defer watcher.Close()

	// editors often save by renaming a new file over the old one, the
	// directory is watched to survive it
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("fail to watch %s: %w", path, err)
	}
	logger.Info(fmt.Sprintf("watching configuration file %s", path))
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			config, err := Load(path)
			if err != nil {
				logger.Warn(fmt.Sprintf("fail to reload configuration, keeping the previous one: %s", err.Error()))
				continue
			}
			logger.Info("configuration reloaded")
			onChange(config)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error(fmt.Sprintf("configuration watcher error: %s", err.Error()))
		}
	}
}
