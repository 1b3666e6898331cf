package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it is written or replaced and hands the result to fn. A reload
// that fails to parse or validate is passed as an error; the caller keeps its previous config.
// The parent directory is watched so editors that save by rename are picked up. Watch blocks
// until ctx is done.
//
// Parameters:
//   - ctx: cancels the watch
//   - path: the config file
//   - fn: receives each reloaded config or the reload error
//
// Returns:
//   - error: error if the watcher cannot be created
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config: failed to watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != abs {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fn(Load(abs))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(nil, err)
		}
	}
}
