package item

import (
	"fmt"
	"log/slog"
	"sync"
)

// Listener is told about committed renames.
type Listener interface {
	OnRenamed(it *Item, oldName, newName string) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(it *Item, oldName, newName string) error

func (f ListenerFunc) OnRenamed(it *Item, oldName, newName string) error {
	return f(it, oldName, newName)
}

// Listeners is a registry of rename listeners. Notification is best-effort:
// a failing or panicking listener is logged and the remaining ones still run.
type Listeners struct {
	mu      sync.RWMutex
	entries []namedListener
	logger  *slog.Logger
}

type namedListener struct {
	name string
	l    Listener
}

// NewListeners returns an empty registry. A nil logger discards output.
func NewListeners(logger *slog.Logger) *Listeners {
	if logger == nil {
		logger = discardLogger()
	}
	return &Listeners{logger: logger}
}

// Register adds l under name. Listeners run in registration order.
func (r *Listeners) Register(name string, l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, namedListener{name: name, l: l})
}

// Len returns the number of registered listeners.
func (r *Listeners) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// NotifyRenamed calls every listener and returns the errors they reported.
func (r *Listeners) NotifyRenamed(it *Item, oldName, newName string) []error {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	entries := make([]namedListener, len(r.entries))
	copy(entries, r.entries)
	r.mu.RUnlock()

	var errs []error
	for _, e := range entries {
		if err := callListener(e, it, oldName, newName); err != nil {
			r.logger.Warn("rename listener failed",
				"listener", e.name, "item", it.FullName(), "old", oldName, "new", newName, "err", err)
			errs = append(errs, err)
		}
	}
	return errs
}

func callListener(e namedListener, it *Item, oldName, newName string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("listener %s panicked: %v", e.name, p)
		}
	}()
	if err := e.l.OnRenamed(it, oldName, newName); err != nil {
		return fmt.Errorf("listener %s: %w", e.name, err)
	}
	return nil
}
