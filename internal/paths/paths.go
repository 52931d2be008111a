// Package paths converts between item full names ("team/backend/api") and the
// directories backing them.
//
// Every container keeps its children under an "items" subdirectory, so the
// item "team/backend/api" lives in <root>/items/team/items/backend/items/api.
package paths

import (
	"path/filepath"
	"strings"
)

const (
	// ItemsDir is the subdirectory of a container holding its children.
	ItemsDir = "items"
	// ItemConfigFile is the name of an item's configuration file.
	ItemConfigFile = "config.yaml"
	// WorkspaceConfigFile marks a workspace root.
	WorkspaceConfigFile = "hangar.yaml"
	// StateDir holds workspace-local state such as the journal.
	StateDir = ".hangar"
)

// NormalizeFullName normalizes a user-supplied full name:
// - converts OS separators to '/'
// - trims leading "./" and surrounding '/'
// - collapses repeated '/'
func NormalizeFullName(name string) string {
	name = filepath.ToSlash(name)
	name = strings.TrimPrefix(name, "./")
	for strings.Contains(name, "//") {
		name = strings.ReplaceAll(name, "//", "/")
	}
	return strings.Trim(name, "/")
}

// SplitFullName returns the segments of a full name. The empty full name (the
// workspace root) has no segments.
func SplitFullName(name string) []string {
	name = NormalizeFullName(name)
	if name == "" {
		return nil
	}
	return strings.Split(name, "/")
}

// JoinFullName joins a parent full name and a child name.
func JoinFullName(parent, name string) string {
	parent = NormalizeFullName(parent)
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// ContainerDir returns the directory of the container with the given full
// name; the empty name is the workspace root.
func ContainerDir(root, fullName string) string {
	dir := root
	for _, seg := range SplitFullName(fullName) {
		dir = filepath.Join(dir, ItemsDir, seg)
	}
	return dir
}

// ChildrenDir returns the directory holding the children of containerDir.
func ChildrenDir(containerDir string) string {
	return filepath.Join(containerDir, ItemsDir)
}

// ItemDir returns the backing directory of name inside containerDir.
func ItemDir(containerDir, name string) string {
	return filepath.Join(containerDir, ItemsDir, name)
}

// ItemConfigPath returns the config file inside an item directory.
func ItemConfigPath(itemDir string) string {
	return filepath.Join(itemDir, ItemConfigFile)
}
