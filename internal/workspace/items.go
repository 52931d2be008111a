package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/paths"
)

// Lookup returns the item with the given full name.
func (w *Workspace) Lookup(fullName string) (*item.Item, error) {
	segs := paths.SplitFullName(fullName)
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: empty name", ErrItemNotFound)
	}

	folder := w.items
	var it *item.Item
	for i, seg := range segs {
		if folder == nil {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, fullName)
		}
		child, ok := folder.Child(seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, strings.Join(segs[:i+1], "/"))
		}
		it = child
		folder = child.Children()
	}
	return it, nil
}

// containerFor returns the folder an item created under parentFullName goes
// into. The empty name is the workspace root.
func (w *Workspace) containerFor(parentFullName string) (*item.Folder, error) {
	if paths.NormalizeFullName(parentFullName) == "" {
		return w.items, nil
	}
	parent, err := w.Lookup(parentFullName)
	if err != nil {
		return nil, err
	}
	if parent.Children() == nil {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotContainer, parent.FullName(), parent.Kind().Name)
	}
	return parent.Children(), nil
}

// CheckName reports whether name may be used for an item in this workspace.
// Errors wrap item.ErrInvalidName.
func (w *Workspace) CheckName(name string) error {
	if err := item.CheckName(name); err != nil {
		return fmt.Errorf("%w: %v", item.ErrInvalidName, err)
	}
	if err := w.checkReserved(name); err != nil {
		return fmt.Errorf("%w: %v", item.ErrInvalidName, err)
	}
	return nil
}

func (w *Workspace) checkReserved(name string) error {
	if w.cfg.IsReserved(name) {
		return fmt.Errorf("“%s” is reserved in this workspace", name)
	}
	return nil
}

// CreateOptions describes a new item.
type CreateOptions struct {
	Kind        item.Kind
	DisplayName string
	Description string
}

// Create makes a new item called name under parentFullName, creating its
// directory and config.yaml.
func (w *Workspace) Create(parentFullName, name string, opts CreateOptions) (*item.Item, error) {
	if err := w.CheckName(name); err != nil {
		return nil, err
	}
	if opts.Kind.Name == "" {
		opts.Kind = item.KindProject
	}

	w.createMu.Lock()
	defer w.createMu.Unlock()

	folder, err := w.containerFor(parentFullName)
	if err != nil {
		return nil, err
	}
	release := item.HoldAncestors(folder)
	defer release()
	if folder.HasChildNamed(name) {
		return nil, fmt.Errorf("%w: %s", item.ErrNameCollision, item.FullNameOf(folder, name))
	}

	dir := w.RootDirOf(folder, name)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create item directory: %w", err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: directory %s already exists", item.ErrNameCollision, dir)
		}
		return nil, fmt.Errorf("failed to create item directory: %w", err)
	}

	it, err := item.New(opts.Kind, folder, name)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	_ = it.SetDisplayName(opts.DisplayName)
	_ = it.SetDescription(opts.Description)
	it.SetSaver(w)

	if err := w.Save(it); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if err := folder.Add(it); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %v", item.ErrNameCollision, err)
	}

	if err := w.audit.LogCreate(it); err != nil {
		w.logger.Warn("audit log failed", "item", it.FullName(), "err", err)
	}
	w.logger.Info("item created", "item", it.FullName(), "kind", it.Kind().Name)
	return it, nil
}

// Rename renames the item with the given full name. The returned item is the
// one looked up, whatever the outcome.
func (w *Workspace) Rename(fullName, newName string) (*item.Item, item.Outcome, error) {
	it, err := w.Lookup(fullName)
	if err != nil {
		return nil, item.Outcome{}, err
	}
	out, err := w.controller.Rename(it, newName)
	return it, out, err
}

// SetDisplayName changes the display name of an item and returns the
// previous explicit value.
func (w *Workspace) SetDisplayName(fullName, displayName string) (*item.Item, string, error) {
	it, err := w.Lookup(fullName)
	if err != nil {
		return nil, "", err
	}
	release := it.Hold()
	defer release()
	old := it.DisplayNameOrEmpty()
	if err := it.SetDisplayName(displayName); err != nil {
		return it, old, err
	}
	if err := w.audit.LogUpdate(it, "display_name", old, it.DisplayNameOrEmpty()); err != nil {
		w.logger.Warn("audit log failed", "item", it.FullName(), "err", err)
	}
	return it, old, nil
}
