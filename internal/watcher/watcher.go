// Package watcher feeds file-system events into the incremental updater.
// Events are debounced per path and delivered from a single loop, so the
// core never sees interleaved mutations.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"blastradius/internal/logging"
)

// Kind is the collapsed event type handed to the handler
type Kind int

const (
	// Changed covers creates and writes; the updater treats both as a
	// re-index of the path
	Changed Kind = iota
	// Removed covers deletes and the disappearing side of renames
	Removed
)

// Event is one debounced file event
type Event struct {
	Kind Kind
	Path string
}

// Handler consumes a batch of debounced events
type Handler func(events []Event)

// Watcher watches a directory tree for source changes
type Watcher struct {
	root       string
	extensions []string
	debounce   time.Duration
	logger     *logging.Logger
	handler    Handler
}

// New creates a watcher over root for the given extensions
func New(root string, extensions []string, debounce time.Duration, logger *logging.Logger, handler Handler) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		root:       root,
		extensions: extensions,
		debounce:   debounce,
		logger:     logger,
		handler:    handler,
	}
}

// Run watches until ctx is cancelled. Events are collected and flushed
// after a quiet period; the handler runs on this loop, never concurrently.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.root); err != nil {
		return err
	}

	pending := make(map[string]Kind)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			// fsnotify is not recursive: register directories as they
			// appear so files created under them keep surfacing.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if w.watchableDir(ev.Name) {
						if err := w.addTree(fsw, ev.Name); err != nil {
							w.logger.Warn("cannot watch new directory", map[string]interface{}{
								"path": ev.Name, "error": err.Error(),
							})
						}
					}
					continue
				}
			}
			if !w.watchable(ev.Name) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				pending[ev.Name] = Removed
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = Changed
			default:
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", map[string]interface{}{"error": err.Error()})
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			events := make([]Event, 0, len(pending))
			for path, kind := range pending {
				events = append(events, Event{Kind: kind, Path: path})
				delete(pending, path)
			}
			w.handler(events)
		}
	}
}

// addTree registers root and every watchable directory beneath it
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && !w.watchableDir(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", map[string]interface{}{
				"path": path, "error": err.Error(),
			})
		}
		return nil
	})
}

// watchableDir rejects hidden and dependency directories
func (w *Watcher) watchableDir(path string) bool {
	name := filepath.Base(path)
	return !strings.HasPrefix(name, ".") && name != "node_modules"
}

func (w *Watcher) watchable(path string) bool {
	if strings.Contains(path, "node_modules") || strings.Contains(filepath.ToSlash(path), "/.") {
		return false
	}
	for _, ext := range w.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
