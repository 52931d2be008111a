// Package item models named, directory-backed items and the protocol for
// renaming them.
//
// An item's name doubles as the name of its backing directory. The name can
// only change through Controller.Rename, which moves the directory first and
// updates the in-memory name only once the move has succeeded.
package item

import (
	"errors"
	"strings"
	"sync"
)

// Container is the parent of a set of items, indexed by name.
type Container interface {
	// Owner returns the item that owns this container, or nil for a
	// workspace root.
	Owner() *Item

	// Child returns the item registered under name.
	Child(name string) (*Item, bool)

	// OnChildRenamed moves it from oldName to newName in the container's index.
	OnChildRenamed(oldName, newName string, it *Item)
}

// Saver persists an item's configuration.
type Saver interface {
	Save(it *Item) error
}

// Item is a named entity persisted in its own directory.
type Item struct {
	// renameMu is held exclusively while this item is renamed and shared
	// while any descendant is, so a directory never moves under a rename
	// in progress below it.
	renameMu sync.RWMutex

	mu          sync.RWMutex
	name        string
	displayName string
	description string

	kind     Kind
	parent   Container
	children *Folder
	saver    Saver
}

// New constructs an item of the given kind under parent. The item is not
// registered with parent; callers add it with Folder.Add once it is ready.
func New(kind Kind, parent Container, name string) (*Item, error) {
	it := &Item{kind: kind, parent: parent}
	if err := it.forceSetName(name); err != nil {
		return nil, err
	}
	if kind.Container {
		it.children = newFolder(it)
	}
	return it, nil
}

// forceSetName sets the name without any editability check or filesystem
// work. It is only valid before a backing directory exists, or after
// Controller.Rename has already moved it.
func (it *Item) forceSetName(name string) error {
	if name == "" {
		return errors.New("item name must not be empty")
	}
	it.mu.Lock()
	it.name = name
	it.mu.Unlock()
	return nil
}

// Name returns the item's name.
func (it *Item) Name() string {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.name
}

// SearchName returns the name used when matching the item by text.
func (it *Item) SearchName() string {
	return it.Name()
}

// Kind returns the item's kind.
func (it *Item) Kind() Kind {
	return it.kind
}

// Parent returns the container holding the item (nil for detached items).
func (it *Item) Parent() Container {
	return it.parent
}

// Children returns the item's child folder, or nil if its kind is not a container.
func (it *Item) Children() *Folder {
	return it.children
}

// SetSaver attaches the persistence callback used by setters and renames.
func (it *Item) SetSaver(s Saver) {
	it.mu.Lock()
	it.saver = s
	it.mu.Unlock()
}

func (it *Item) save() error {
	it.mu.RLock()
	s := it.saver
	it.mu.RUnlock()
	if s == nil {
		return nil
	}
	return s.Save(it)
}

// DisplayName returns the display name, falling back to the name.
func (it *Item) DisplayName() string {
	it.mu.RLock()
	defer it.mu.RUnlock()
	if it.displayName != "" {
		return it.displayName
	}
	return it.name
}

// DisplayNameOrEmpty returns the explicitly set display name, or "".
func (it *Item) DisplayNameOrEmpty() string {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.displayName
}

// SetDisplayName sets the display name and persists the item. An empty or
// whitespace-only value clears it.
func (it *Item) SetDisplayName(displayName string) error {
	it.mu.Lock()
	it.displayName = strings.TrimSpace(displayName)
	it.mu.Unlock()
	return it.save()
}

// Description returns the item's markdown description.
func (it *Item) Description() string {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.description
}

// SetDescription sets the description and persists the item.
func (it *Item) SetDescription(description string) error {
	it.mu.Lock()
	it.description = description
	it.mu.Unlock()
	return it.save()
}

// FullName returns the slash-separated names from the workspace root down to
// this item, e.g. "team/backend/api".
func (it *Item) FullName() string {
	return FullNameOf(it.Parent(), it.Name())
}

// FullDisplayName joins the display names of the chain with " » ".
func (it *Item) FullDisplayName() string {
	parts := []string{it.DisplayName()}
	for owner := ownerOf(it.Parent()); owner != nil; owner = ownerOf(owner.Parent()) {
		parts = append(parts, owner.DisplayName())
	}
	reverse(parts)
	return strings.Join(parts, " » ")
}

// FullNameOf returns the full name an item called name would have under parent.
func FullNameOf(parent Container, name string) string {
	parts := []string{name}
	for owner := ownerOf(parent); owner != nil; owner = ownerOf(owner.Parent()) {
		parts = append(parts, owner.Name())
	}
	reverse(parts)
	return strings.Join(parts, "/")
}

func ownerOf(c Container) *Item {
	if c == nil {
		return nil
	}
	return c.Owner()
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// HoldAncestors takes the shared rename lock of every item owning c, root
// first, and returns the function that releases them. While held, none of
// those items can be renamed, so directories below c stay where they are.
func HoldAncestors(c Container) (release func()) {
	var chain []*Item
	for owner := ownerOf(c); owner != nil; owner = ownerOf(owner.Parent()) {
		chain = append(chain, owner)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].renameMu.RLock()
	}
	return func() {
		for _, owner := range chain {
			owner.renameMu.RUnlock()
		}
	}
}

// Hold takes the shared rename lock of it and of its ancestors. Until release
// is called neither it nor any directory above it can move.
func (it *Item) Hold() (release func()) {
	releaseAncestors := HoldAncestors(it.Parent())
	it.renameMu.RLock()
	return func() {
		it.renameMu.RUnlock()
		releaseAncestors()
	}
}
