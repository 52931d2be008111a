// Package watcher reports changes made to a workspace's item tree from
// outside hangar, such as directories moved by hand or edited config files.
//
// It is used by `hangar watch`.
package watcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanlsb/hangar/internal/paths"
)

// Watcher monitors a workspace directory and reports batches of changed paths.
type Watcher struct {
	root string

	debounceDelay time.Duration
	logger        *slog.Logger

	fsWatcher *fsnotify.Watcher
	pending   map[string]struct{}
	lastEvent time.Time
	mu        sync.Mutex

	onChange func(paths []string)
}

// Config holds configuration options for the Watcher.
type Config struct {
	Root          string
	DebounceDelay time.Duration // Default: 100ms
	Logger        *slog.Logger
	// OnChange receives the changed paths, sorted, once no event has
	// arrived for DebounceDelay.
	OnChange func(paths []string)
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("workspace root is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("change callback is required")
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Watcher{
		root:          cfg.Root,
		debounceDelay: debounce,
		logger:        logger,
		pending:       make(map[string]struct{}),
		onChange:      cfg.OnChange,
	}, nil
}

// Start begins watching the workspace. It blocks until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.root); err != nil {
		return fmt.Errorf("failed to watch workspace: %w", err)
	}
	w.logger.Debug("watching workspace", "root", w.root)

	ticker := time.NewTicker(max(w.debounceDelay/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("watcher error", "error", err)

		case now := <-ticker.C:
			if ready := w.takeReady(now); len(ready) > 0 {
				w.onChange(ready)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.shouldIgnore(path) || event.Op == fsnotify.Chmod {
		return
	}
	w.logger.Debug("fs event", "op", event.Op.String(), "path", path)

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.addWatchRecursive(path)
		}
	}
	w.schedule(path, time.Now())
}

func (w *Watcher) schedule(path string, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = struct{}{}
	w.lastEvent = at
}

// takeReady returns the pending paths once the workspace has been quiet for
// the debounce delay, and clears them.
func (w *Watcher) takeReady(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 || now.Sub(w.lastEvent) < w.debounceDelay {
		return nil
	}
	ready := make([]string, 0, len(w.pending))
	for p := range w.pending {
		ready = append(ready, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(ready)
	return ready
}

func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.root && w.shouldIgnore(path) {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logger.Debug("failed to watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
}

// shouldIgnore reports whether path lies in the state directory or a
// version-control directory.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == paths.StateDir || part == ".git" {
			return true
		}
	}
	return false
}
