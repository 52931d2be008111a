// Package testutil provides reusable test utilities for hangar integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/hangar/internal/paths"
)

// TestWorkspace represents a temporary workspace for testing.
type TestWorkspace struct {
	Path       string
	t          *testing.T
	hangarYAML string
	items      []testItem
	files      map[string]string
}

type testItem struct {
	fullName string
	config   string
}

// NewTestWorkspace creates a new test workspace builder.
// Call Build() to create the actual workspace directory.
func NewTestWorkspace(t *testing.T) *TestWorkspace {
	t.Helper()
	return &TestWorkspace{
		t:          t,
		hangarYAML: "audit: true\njournal: true\n",
		files:      make(map[string]string),
	}
}

// WithHangarYAML sets the hangar.yaml content for the workspace.
func (w *TestWorkspace) WithHangarYAML(yaml string) *TestWorkspace {
	w.hangarYAML = yaml
	return w
}

// WithItem adds an item of the given kind. fullName is slash-separated, and
// parents must be added first as folders.
func (w *TestWorkspace) WithItem(fullName, kind string) *TestWorkspace {
	w.items = append(w.items, testItem{fullName: fullName, config: "kind: " + kind + "\n"})
	return w
}

// WithItemConfig adds an item with a raw config.yaml.
func (w *TestWorkspace) WithItemConfig(fullName, configYAML string) *TestWorkspace {
	w.items = append(w.items, testItem{fullName: fullName, config: configYAML})
	return w
}

// WithFile adds a file to the workspace.
// The path is relative to the workspace root.
func (w *TestWorkspace) WithFile(path, content string) *TestWorkspace {
	w.files[path] = content
	return w
}

// Build creates the workspace directory and all configured items and files.
// Returns the TestWorkspace for method chaining.
func (w *TestWorkspace) Build() *TestWorkspace {
	w.t.Helper()

	w.Path = w.t.TempDir()
	for _, dir := range []string{"items", ".hangar"} {
		if err := os.MkdirAll(filepath.Join(w.Path, dir), 0755); err != nil {
			w.t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	w.writeFile("hangar.yaml", w.hangarYAML)

	for _, it := range w.items {
		w.writeFile(filepath.Join(w.ItemPath(it.fullName), "config.yaml"), it.config)
	}
	for path, content := range w.files {
		w.writeFile(path, content)
	}

	return w
}

// ItemPath returns the directory of the item with the given full name,
// relative to the workspace root.
func (w *TestWorkspace) ItemPath(fullName string) string {
	return paths.ContainerDir("", fullName)
}

// writeFile writes a file to the workspace, creating directories as needed.
func (w *TestWorkspace) writeFile(relPath, content string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		w.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		w.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the workspace.
// Returns the content as a string.
func (w *TestWorkspace) ReadFile(relPath string) string {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		w.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the workspace.
func (w *TestWorkspace) FileExists(relPath string) bool {
	w.t.Helper()
	_, err := os.Stat(filepath.Join(w.Path, relPath))
	return err == nil
}
