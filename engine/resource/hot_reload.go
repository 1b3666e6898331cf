package resource

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/logging"
	"github.com/Carmen-Shannon/obsidian/engine/shader"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events an editor produces for a single save.
const reloadDebounce = 100 * time.Millisecond

type reloadState struct {
	mu      sync.Mutex
	pending shader.Library
}

func (m *manager) queue(lib shader.Library) {
	m.reload.mu.Lock()
	defer m.reload.mu.Unlock()
	m.reload.pending = lib
}

func (m *manager) WatchShaders(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("resource: failed to create shader watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("resource: failed to watch %s: %w", dir, err)
	}
	logging.Info("watching shaders", "dir", dir)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(e.Name), ".wgsl") {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			lib, err := shader.LoadDir(dir)
			if err != nil {
				logging.Warn("shader reload failed, keeping current pipelines", "dir", dir, "err", err)
				continue
			}
			m.queue(lib)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("shader watcher error", "err", err)
		}
	}
}

func (m *manager) ApplyPending() (bool, error) {
	m.reload.mu.Lock()
	lib := m.reload.pending
	m.reload.pending = nil
	m.reload.mu.Unlock()
	if lib == nil {
		return false, nil
	}

	built, err := m.buildPipelines(lib)
	if err != nil {
		logging.Error("shader reload rejected, keeping current pipelines", "err", err)
		return false, err
	}

	m.mu.Lock()
	old := m.pipelines
	m.pipelines = built
	m.library = lib
	m.mu.Unlock()

	releasePipelines(old)
	logging.Info("shaders reloaded", "pipelines", len(built))
	return true, nil
}

func releasePipelines(pipelines map[string]gpu.RenderPipeline) {
	for _, p := range pipelines {
		p.Release()
	}
}
