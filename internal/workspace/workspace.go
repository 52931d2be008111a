// Package workspace ties items to their directories on disk.
//
// A workspace is a directory holding hangar.yaml, a .hangar state directory
// and an items directory. Every item is a directory containing config.yaml;
// items of a container kind keep their children in their own items
// subdirectory. An item's name is the name of its directory and is never
// written to config.yaml.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aidanlsb/hangar/internal/audit"
	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/journal"
	"github.com/aidanlsb/hangar/internal/paths"
)

var (
	// ErrNotWorkspace is returned when no hangar.yaml can be found.
	ErrNotWorkspace = errors.New("not a hangar workspace")
	// ErrItemNotFound is returned when a full name does not resolve.
	ErrItemNotFound = errors.New("item not found")
	// ErrNotContainer is returned when creating an item under a non-container.
	ErrNotContainer = errors.New("item cannot contain other items")
)

// Options configures Open.
type Options struct {
	// Logger receives workspace and rename logs. Nil discards them.
	Logger *slog.Logger

	// Rename holds the global rename settings. Values in hangar.yaml take
	// precedence, and RenameOverrides take precedence over both.
	Rename          config.RenameConfig
	RenameOverrides config.RenameConfig

	// Mover replaces the directory move used by renames.
	Mover func(oldDir, newDir string) error
}

// Workspace is an opened workspace.
type Workspace struct {
	root   string
	cfg    *config.WorkspaceConfig
	items  *item.Folder
	logger *slog.Logger

	controller *item.Controller
	listeners  *item.Listeners
	audit      *audit.Logger
	journal    *journal.Journal

	// createMu serializes Create so that directory creation and registration
	// happen together.
	createMu sync.Mutex
}

// Init prepares root as a workspace. It reports whether a new hangar.yaml was
// written; an existing workspace is left untouched.
func Init(root string) (bool, error) {
	for _, dir := range []string{
		root,
		filepath.Join(root, paths.ItemsDir),
		filepath.Join(root, paths.StateDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return config.CreateDefaultWorkspaceConfig(root)
}

// Find walks up from start to the nearest directory holding hangar.yaml.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, paths.WorkspaceConfigFile)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s in %s or any parent", ErrNotWorkspace, paths.WorkspaceConfigFile, start)
		}
		dir = parent
	}
}

// Open loads the workspace at root, including every item on disk.
func Open(root string, opts Options) (*Workspace, error) {
	if _, err := os.Stat(filepath.Join(root, paths.WorkspaceConfigFile)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotWorkspace, root)
	}
	cfg, err := config.LoadWorkspaceConfig(root)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w := &Workspace{
		root:      root,
		cfg:       cfg,
		items:     item.NewRootFolder(),
		logger:    logger,
		listeners: item.NewListeners(logger),
		audit:     audit.New(root, cfg.IsAuditEnabled()),
	}
	w.controller = &item.Controller{
		Resolver:  w,
		Saver:     w,
		Listeners: w.listeners,
		Policy:    opts.Rename.Merge(cfg.RenameOverrides()).Merge(opts.RenameOverrides).Policy(),
		Logger:    logger,
		NameCheck: w.checkReserved,
		Mover:     opts.Mover,
	}

	if err := w.load(); err != nil {
		return nil, err
	}

	if w.audit.Enabled() {
		w.listeners.Register("audit", w.audit)
	}
	if cfg.IsJournalEnabled() {
		j, err := journal.Open(root, logger)
		if err != nil {
			return nil, err
		}
		w.journal = j
		w.listeners.Register("journal", j)
	}

	logger.Debug("workspace opened", "root", root, "items", w.items.Len(), "policy", w.controller.Policy)
	return w, nil
}

// Close releases the journal.
func (w *Workspace) Close() error {
	if w.journal != nil {
		return w.journal.Close()
	}
	return nil
}

// Root returns the workspace directory.
func (w *Workspace) Root() string { return w.root }

// Config returns the parsed hangar.yaml.
func (w *Workspace) Config() *config.WorkspaceConfig { return w.cfg }

// Items returns the top-level items.
func (w *Workspace) Items() *item.Folder { return w.items }

// Journal returns the rename journal, or nil if journaling is disabled.
func (w *Workspace) Journal() *journal.Journal { return w.journal }

// Audit returns the audit logger.
func (w *Workspace) Audit() *audit.Logger { return w.audit }

// Policy returns the effective rename retry policy.
func (w *Workspace) Policy() item.RetryPolicy { return w.controller.Policy }

// AddListener registers an extra rename listener.
func (w *Workspace) AddListener(name string, l item.Listener) {
	w.listeners.Register(name, l)
}

// SetObserver installs an observer of every rename call. It must be called
// before the first rename.
func (w *Workspace) SetObserver(o item.Observer) {
	w.controller.Observer = o
}

// RootDirOf returns the directory an item called name has under parent.
func (w *Workspace) RootDirOf(parent item.Container, name string) string {
	return paths.ItemDir(w.containerDir(parent), name)
}

// DirOf returns the directory of it.
func (w *Workspace) DirOf(it *item.Item) string {
	return w.RootDirOf(it.Parent(), it.Name())
}

func (w *Workspace) containerDir(c item.Container) string {
	if c == nil || c.Owner() == nil {
		return w.root
	}
	owner := c.Owner()
	return w.RootDirOf(owner.Parent(), owner.Name())
}
