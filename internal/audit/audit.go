// Package audit provides an append-only JSONL log of workspace changes.
package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/paths"
)

// Operations recorded in the log.
const (
	OpCreate = "create"
	OpRename = "rename"
	OpUpdate = "update"
)

// LogFile is the audit log location relative to the workspace root.
var LogFile = filepath.Join(paths.StateDir, "audit.log")

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp time.Time      `json:"ts"`
	Operation string         `json:"op"`
	Item      string         `json:"item"` // full name after the operation
	Kind      string         `json:"kind,omitempty"`
	Changes   map[string]any `json:"changes,omitempty"` // {field: {old: x, new: y}}
	Extra     map[string]any `json:"extra,omitempty"`
}

// Logger appends entries to the audit log. A disabled Logger is a no-op.
type Logger struct {
	path    string
	enabled bool
	mu      sync.Mutex
	now     func() time.Time
}

// New creates an audit logger for the workspace at root.
// If enabled is false, the logger will be a no-op.
func New(root string, enabled bool) *Logger {
	if !enabled {
		return &Logger{}
	}
	return &Logger{
		path:    filepath.Join(root, LogFile),
		enabled: true,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Enabled returns true if the audit logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Log writes an entry to the audit log.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// LogCreate logs the creation of an item.
func (l *Logger) LogCreate(it *item.Item) error {
	return l.Log(Entry{
		Operation: OpCreate,
		Item:      it.FullName(),
		Kind:      it.Kind().Name,
	})
}

// LogUpdate logs a change of a single item field.
func (l *Logger) LogUpdate(it *item.Item, field string, oldValue, newValue any) error {
	return l.Log(Entry{
		Operation: OpUpdate,
		Item:      it.FullName(),
		Kind:      it.Kind().Name,
		Changes:   map[string]any{field: map[string]any{"old": oldValue, "new": newValue}},
	})
}

// OnRenamed logs a committed rename. It makes Logger an item.Listener.
func (l *Logger) OnRenamed(it *item.Item, oldName, newName string) error {
	return l.Log(Entry{
		Operation: OpRename,
		Item:      it.FullName(),
		Kind:      it.Kind().Name,
		Changes:   map[string]any{"name": map[string]any{"old": oldName, "new": newName}},
		Extra:     map[string]any{"previous": item.FullNameOf(it.Parent(), oldName)},
	})
}

// Read reads all entries from the audit log. Malformed lines are skipped.
func (l *Logger) Read() ([]Entry, error) {
	if !l.enabled {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return entries, nil
}

// ReadForItem reads entries whose item is fullName.
func (l *Logger) ReadForItem(fullName string) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, entry := range all {
		if entry.Item == fullName {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
