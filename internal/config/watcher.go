package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher wraps fsnotify to watch files and emit debounced change
// notifications. Parent directories are watched so that editors which
// replace files by rename are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	paths    map[string]bool
	events   chan struct{}
	errors   chan error
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	watching bool
	done     chan struct{}
}

// NewWatcher creates a new file watcher for the specified paths
func NewWatcher(ctx context.Context, paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	watcherCtx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		watcher: fsw,
		paths:   make(map[string]bool, len(paths)),
		events:  make(chan struct{}, 1),
		errors:  make(chan error, 1),
		ctx:     watcherCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		w.paths[abs] = true
	}
	return w, nil
}

// Start begins watching with the given debounce interval.
func (w *Watcher) Start(debounce time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching {
		return fmt.Errorf("watcher already started")
	}

	dirs := make(map[string]bool)
	for p := range w.paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.watching = true
	go w.processEvents(debounce)
	return nil
}

// processEvents coalesces bursts of writes into one notification per quiet
// period.
func (w *Watcher) processEvents(debounce time.Duration) {
	defer close(w.done)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isWatchedFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case <-timer.C:
			select {
			case w.events <- struct{}{}:
			default:
				// a notification is already pending
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) isWatchedFile(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return w.paths[abs]
}

// Events returns the channel for receiving debounced file change notifications
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Errors returns the channel for receiving watcher errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		w.cancel()
		return w.watcher.Close()
	}
	w.watching = false
	w.mu.Unlock()

	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}
