// Package watch re-runs a callback when a file changes on disk. Room
// snapshots get edited by hand and rewritten whole by tools, so events are
// debounced and the watch survives delete/rename save cycles.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileWatcher reports debounced changes to a single file.
type FileWatcher struct {
	logger   *zap.Logger
	path     string
	watcher  *fsnotify.Watcher
	onChange func()
	mu       sync.Mutex

	ctx     context.Context
	cancel  context.CancelFunc
	running bool

	debounce time.Duration
	timer    *time.Timer
}

// NewFileWatcher creates a watcher for path. A non-positive debounce means
// one second, long enough to swallow editor write bursts.
func NewFileWatcher(logger *zap.Logger, path string, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &FileWatcher{
		logger:   logger.Named("watch"),
		path:     path,
		watcher:  watcher,
		ctx:      ctx,
		cancel:   cancel,
		debounce: debounce,
	}, nil
}

// Start begins watching and calls onChange after each settled change.
func (w *FileWatcher) Start(onChange func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	w.onChange = onChange

	if err := w.watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", w.path, err)
	}

	// Tools save through a temp file and a rename, which only the
	// directory watch sees.
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("Failed to watch directory",
			zap.String("dir", dir),
			zap.Error(err),
		)
	}

	w.running = true
	go w.handleEvents()

	w.logger.Info("File watcher started", zap.String("path", w.path))
	return nil
}

// Stop ends the watch and releases the notifier.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.cancel()
	w.watcher.Close()
	w.running = false

	if w.timer != nil {
		w.timer.Stop()
	}

	w.logger.Info("File watcher stopped")
}

// IsRunning reports whether the watch loop is active.
func (w *FileWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *FileWatcher) handleEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				if filepath.Dir(event.Name) != filepath.Dir(w.path) {
					continue
				}
			}

			switch {
			case event.Op&fsnotify.Write == fsnotify.Write:
				w.logger.Debug("Watched file modified", zap.String("path", event.Name))
				w.scheduleFire()

			case event.Op&fsnotify.Create == fsnotify.Create:
				if filepath.Clean(event.Name) == filepath.Clean(w.path) {
					w.logger.Debug("Watched file recreated", zap.String("path", event.Name))
					w.watcher.Add(w.path)
					w.scheduleFire()
				}

			case event.Op&fsnotify.Remove == fsnotify.Remove:
				if filepath.Clean(event.Name) == filepath.Clean(w.path) {
					w.logger.Warn("Watched file removed", zap.String("path", event.Name))
				}

			case event.Op&fsnotify.Rename == fsnotify.Rename:
				if filepath.Clean(event.Name) == filepath.Clean(w.path) {
					w.logger.Debug("Watched file renamed", zap.String("path", event.Name))
					go func() {
						time.Sleep(100 * time.Millisecond)
						w.watcher.Add(w.path)
					}()
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.ctx.Done():
			return
		}
	}
}

// scheduleFire arms the debounce timer, restarting it while events keep
// arriving.
func (w *FileWatcher) scheduleFire() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		onChange := w.onChange
		w.mu.Unlock()

		w.logger.Debug("Watched file settled", zap.String("path", w.path))
		if onChange != nil {
			onChange()
		}
	})
}
