package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertFileExists fails the test if the file does not exist.
func (w *TestWorkspace) AssertFileExists(relPath string) {
	w.t.Helper()
	if _, err := os.Stat(filepath.Join(w.Path, relPath)); os.IsNotExist(err) {
		w.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (w *TestWorkspace) AssertFileContains(relPath, substr string) {
	w.t.Helper()
	content := w.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		w.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertItemDirExists fails the test if the item's directory is missing.
func (w *TestWorkspace) AssertItemDirExists(fullName string) {
	w.t.Helper()
	rel := w.ItemPath(fullName)
	info, err := os.Stat(filepath.Join(w.Path, rel))
	if os.IsNotExist(err) {
		w.t.Errorf("expected item directory to exist: %s", rel)
		return
	}
	if err == nil && !info.IsDir() {
		w.t.Errorf("expected %s to be a directory, but it's a file", rel)
	}
}

// AssertItemDirNotExists fails the test if the item's directory exists.
func (w *TestWorkspace) AssertItemDirNotExists(fullName string) {
	w.t.Helper()
	rel := w.ItemPath(fullName)
	if _, err := os.Stat(filepath.Join(w.Path, rel)); err == nil {
		w.t.Errorf("expected item directory to not exist: %s", rel)
	}
}

// AssertItemExists uses the show command to check that an item resolves.
func (w *TestWorkspace) AssertItemExists(fullName string) {
	w.t.Helper()
	result := w.RunCLI("show", fullName)
	if !result.OK {
		w.t.Errorf("expected item to exist: %s, got error: %v", fullName, result.Error)
	}
}

// AssertItemNotExists uses the show command to check that an item does not
// resolve.
func (w *TestWorkspace) AssertItemNotExists(fullName string) {
	w.t.Helper()
	result := w.RunCLI("show", fullName)
	if result.OK {
		w.t.Errorf("expected item to not exist: %s, but it does", fullName)
	}
}

// AssertHasWarning checks that the result contains a warning with the given code.
func (r *CLIResult) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("expected warning with code %s, got warnings: %+v", code, r.Warnings)
}

// AssertNoWarnings checks that the result has no warnings.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got: %+v", r.Warnings)
	}
}

// AssertResultCount checks that a list result has the expected count.
func (r *CLIResult) AssertResultCount(t *testing.T, key string, expected int) {
	t.Helper()
	results := r.DataList(key)
	if len(results) != expected {
		t.Errorf("expected %d %s, got %d\nRaw: %s", expected, key, len(results), r.RawJSON)
	}
}
