package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// errWatchRunning is returned when Watch is called while another Watch is active.
var errWatchRunning = errors.New("model watcher already running")

// evictingOps are the file events that invalidate a cached model.
const evictingOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

func (l *loader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create model watcher: %w", err)
	}

	if err := l.startWatch(w); err != nil {
		w.Close()
		return err
	}
	defer l.stopWatch(w)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&evictingOps != 0 {
				l.evictSource(ev.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("model watcher error", "err", err)
		}
	}
}

// startWatch publishes w and subscribes it to the directory of every file-backed entry.
func (l *loader) startWatch(w *fsnotify.Watcher) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		return errWatchRunning
	}

	dirs := make(map[string]bool)
	for abs := range l.sources {
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	l.watcher = w
	l.logger.Debug("model watcher started", "dirs", len(dirs))
	return nil
}

// stopWatch closes w unless Close already did.
func (l *loader) stopWatch(w *fsnotify.Watcher) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher == w {
		w.Close()
		l.watcher = nil
	}
}

// evictSource drops the entry loaded from path, if any.
func (l *loader) evictSource(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if key, ok := l.sources[abs]; ok {
		l.evictLocked(key)
	}
}
