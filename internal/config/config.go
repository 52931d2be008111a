// Package config handles global hangar configuration and the per-workspace
// hangar.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// ErrWorkspaceNotFound is returned when a workspace name cannot be resolved.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// Config represents the global hangar configuration.
type Config struct {
	// DefaultWorkspace is the name of the default workspace (from Workspaces).
	DefaultWorkspace string `toml:"default_workspace"`

	// Workspaces maps workspace names to paths.
	Workspaces map[string]string `toml:"workspaces"`

	// Rename holds the retry settings for directory moves. Workspaces can
	// override individual values in hangar.yaml.
	Rename RenameConfig `toml:"rename"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered descriptions.
	CodeTheme string `toml:"code_theme"`
}

// WorkspacePath returns the path for a named workspace.
// If name is empty, returns the default workspace path.
func (c *Config) WorkspacePath(name string) (string, error) {
	if name == "" {
		name = c.DefaultWorkspace
	}
	if name == "" {
		return "", fmt.Errorf("%w: no default workspace configured", ErrWorkspaceNotFound)
	}
	if path, ok := c.Workspaces[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: '%s' is not in config", ErrWorkspaceNotFound, name)
}

// WorkspaceNames returns the configured workspace names, sorted.
func (c *Config) WorkspaceNames() []string {
	names := make([]string, 0, len(c.Workspaces))
	for name := range c.Workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddWorkspace registers path under name, replacing any previous entry.
func (c *Config) AddWorkspace(name, path string) {
	if c.Workspaces == nil {
		c.Workspaces = make(map[string]string)
	}
	c.Workspaces[name] = path
	if c.DefaultWorkspace == "" {
		c.DefaultWorkspace = name
	}
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("failed to parse config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := config.Rename.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/hangar/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "hangar", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "hangar", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}
