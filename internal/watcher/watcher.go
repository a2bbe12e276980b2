// Package watcher monitors a drop folder of mesh files and triggers
// re-analysis when files appear or change.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/printforge/meshengine/internal/logger"
)

// FolderWatcher watches a directory for STL file changes and calls back
// with the changed path. Rapid successive writes (uploads in progress)
// are debounced per file.
type FolderWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	callback func(string)
	debounce time.Duration
	timers   map[string]*time.Timer
	done     chan struct{}
}

// NewFolderWatcher creates a watcher with the given debounce interval
func NewFolderWatcher(debounce time.Duration) (*FolderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FolderWatcher{
		watcher:  watcher,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Watch registers the directory and the callback invoked per changed
// STL file
func (fw *FolderWatcher) Watch(dir string, callback func(string)) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}
	if err := fw.watcher.Add(absDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absDir, err)
	}

	fw.mu.Lock()
	fw.callback = callback
	fw.mu.Unlock()
	return nil
}

// Start begins dispatching change events until Close is called
func (fw *FolderWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !strings.EqualFold(filepath.Ext(event.Name), ".stl") {
					continue
				}
				fw.handleChange(event.Name)

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Warn("watcher error", zap.Error(err))

			case <-fw.done:
				return
			}
		}
	}()
}

// handleChange schedules the callback after the debounce window,
// resetting the timer on every new event for the same file
func (fw *FolderWatcher) handleChange(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.callback == nil {
		return
	}
	if timer, exists := fw.timers[path]; exists {
		timer.Stop()
	}

	callback := fw.callback
	fw.timers[path] = time.AfterFunc(fw.debounce, func() {
		callback(path)
	})
}

// Close stops the watcher and its dispatch loop
func (fw *FolderWatcher) Close() error {
	close(fw.done)
	return fw.watcher.Close()
}
