package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/hangar/internal/atomicfile"
)

type persistedConfig struct {
	DefaultWorkspace *string                `toml:"default_workspace,omitempty"`
	Workspaces       map[string]string      `toml:"workspaces,omitempty"`
	Rename           *persistedRenameConfig `toml:"rename,omitempty"`
	UI               *persistedUISettings   `toml:"ui,omitempty"`
}

type persistedRenameConfig struct {
	InitialInterval *Duration `toml:"initial_interval,omitempty"`
	Multiplier      *float64  `toml:"multiplier,omitempty"`
	MaxInterval     *Duration `toml:"max_interval,omitempty"`
	MaxElapsed      *Duration `toml:"max_elapsed,omitempty"`
	MaxAttempts     *int      `toml:"max_attempts,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nonZeroPtr[T comparable](value T) *T {
	var zero T
	if value == zero {
		return nil
	}
	return &value
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		DefaultWorkspace: nonEmptyPtr(cfg.DefaultWorkspace),
	}
	if len(cfg.Workspaces) > 0 {
		out.Workspaces = cfg.Workspaces
	}
	if !cfg.Rename.IsZero() {
		r := cfg.Rename
		out.Rename = &persistedRenameConfig{
			InitialInterval: nonZeroPtr(r.InitialInterval),
			Multiplier:      nonZeroPtr(r.Multiplier),
			MaxInterval:     nonZeroPtr(r.MaxInterval),
			MaxElapsed:      nonZeroPtr(r.MaxElapsed),
			MaxAttempts:     nonZeroPtr(r.MaxAttempts),
		}
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
