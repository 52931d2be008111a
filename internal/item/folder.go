package item

import (
	"fmt"
	"sort"
	"sync"
)

// Folder indexes child items by name. It is the Container used by the
// workspace root and by items of a container kind.
type Folder struct {
	owner *Item

	mu    sync.RWMutex
	items map[string]*Item
	// reserved holds names claimed by in-flight renames.
	reserved map[string]*Item
}

// NewRootFolder returns an empty folder with no owning item.
func NewRootFolder() *Folder {
	return newFolder(nil)
}

func newFolder(owner *Item) *Folder {
	return &Folder{
		owner:    owner,
		items:    make(map[string]*Item),
		reserved: make(map[string]*Item),
	}
}

// Owner returns the item owning the folder, or nil for the root.
func (f *Folder) Owner() *Item {
	return f.owner
}

// Child returns the item registered under name.
func (f *Folder) Child(name string) (*Item, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	it, ok := f.items[name]
	return it, ok
}

// HasChildNamed reports whether an item is registered under name.
func (f *Folder) HasChildNamed(name string) bool {
	_, ok := f.Child(name)
	return ok
}

// Len returns the number of registered items.
func (f *Folder) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

// Items returns the registered items sorted by name.
func (f *Folder) Items() []*Item {
	f.mu.RLock()
	out := make([]*Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	f.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Add registers it under its current name. The item must have been created
// with this folder as its parent.
func (f *Folder) Add(it *Item) error {
	if it.Parent() != Container(f) {
		return fmt.Errorf("item %q belongs to a different container", it.Name())
	}
	name := it.Name()

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[name]; ok {
		return fmt.Errorf("an item named %q already exists", name)
	}
	if _, ok := f.reserved[name]; ok {
		return fmt.Errorf("an item named %q already exists", name)
	}
	f.items[name] = it
	return nil
}

// Remove unregisters it if it is registered under its current name.
func (f *Folder) Remove(it *Item) {
	name := it.Name()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items[name] == it {
		delete(f.items, name)
	}
}

// OnChildRenamed re-keys it from oldName to newName.
func (f *Folder) OnChildRenamed(oldName, newName string, it *Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items[oldName] == it {
		delete(f.items, oldName)
	}
	f.items[newName] = it
	if f.reserved[newName] == it {
		delete(f.reserved, newName)
	}
}

// reserve claims name for it until the returned release func is called. It
// fails if another item holds or has reserved the name.
func (f *Folder) reserve(name string, it *Item) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if other, ok := f.items[name]; ok && other != it {
		return nil, false
	}
	if other, ok := f.reserved[name]; ok && other != it {
		return nil, false
	}
	f.reserved[name] = it
	return func() {
		f.mu.Lock()
		if f.reserved[name] == it {
			delete(f.reserved, name)
		}
		f.mu.Unlock()
	}, true
}
