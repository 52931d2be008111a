package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/hangar/internal/atomicfile"
	"github.com/aidanlsb/hangar/internal/paths"
)

// WorkspaceConfig represents workspace-level configuration from hangar.yaml.
type WorkspaceConfig struct {
	// ReservedNames can never be used as item names, in any letter case.
	// The state directory name is always reserved.
	ReservedNames []string `yaml:"reserved_names,omitempty"`

	// Rename overrides the global rename retry settings.
	Rename *RenameConfig `yaml:"rename,omitempty"`

	// Audit appends every change to .hangar/audit.log (default: true).
	Audit *bool `yaml:"audit,omitempty"`

	// Journal records renames in .hangar/journal.db for `hangar history`
	// (default: true).
	Journal *bool `yaml:"journal,omitempty"`
}

// DefaultWorkspaceConfig returns the configuration used when hangar.yaml is
// empty.
func DefaultWorkspaceConfig() *WorkspaceConfig {
	return &WorkspaceConfig{}
}

// IsAuditEnabled reports whether the audit log is written.
func (wc *WorkspaceConfig) IsAuditEnabled() bool {
	return wc.Audit == nil || *wc.Audit
}

// IsJournalEnabled reports whether renames are journaled.
func (wc *WorkspaceConfig) IsJournalEnabled() bool {
	return wc.Journal == nil || *wc.Journal
}

// IsReserved reports whether name is reserved in this workspace.
func (wc *WorkspaceConfig) IsReserved(name string) bool {
	if strings.EqualFold(name, paths.StateDir) {
		return true
	}
	for _, r := range wc.ReservedNames {
		if strings.EqualFold(name, strings.TrimSpace(r)) {
			return true
		}
	}
	return false
}

// RenameOverrides returns the workspace rename settings, zero if unset.
func (wc *WorkspaceConfig) RenameOverrides() RenameConfig {
	if wc.Rename == nil {
		return RenameConfig{}
	}
	return *wc.Rename
}

// LoadWorkspaceConfig loads hangar.yaml from root. The file must exist: it is
// what marks root as a workspace.
func LoadWorkspaceConfig(root string) (*WorkspaceConfig, error) {
	configPath := filepath.Join(root, paths.WorkspaceConfigFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace config %s: %w", configPath, err)
	}

	config := DefaultWorkspaceConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse workspace config %s: %w", configPath, err)
	}
	if config.Rename != nil {
		if err := config.Rename.Validate(); err != nil {
			return nil, fmt.Errorf("invalid workspace config %s: %w", configPath, err)
		}
	}
	return config, nil
}

// CreateDefaultWorkspaceConfig writes a commented hangar.yaml into root unless
// one already exists. It reports whether a file was written.
func CreateDefaultWorkspaceConfig(root string) (bool, error) {
	configPath := filepath.Join(root, paths.WorkspaceConfigFile)

	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	}

	defaultConfig := `# Hangar Workspace Configuration

# Names that can never be given to an item (case-insensitive).
# .hangar is always reserved.
# reserved_names:
#   - tmp
#   - archive

# Override the global retry settings for moving item directories.
# rename:
#   initial_interval: 25ms
#   multiplier: 2
#   max_interval: 1s
#   max_elapsed: 3s
#   max_attempts: 8

# Append every change to .hangar/audit.log (default: true)
audit: true

# Record renames in .hangar/journal.db for 'hangar history' (default: true)
journal: true
`

	if err := atomicfile.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write workspace config: %w", err)
	}
	return true, nil
}

// SaveWorkspaceConfig writes cfg to hangar.yaml in root.
func SaveWorkspaceConfig(root string, cfg *WorkspaceConfig) error {
	configPath := filepath.Join(root, paths.WorkspaceConfigFile)
	if err := atomicfile.WriteYAML(configPath, cfg, 0o644); err != nil {
		return fmt.Errorf("failed to write workspace config: %w", err)
	}
	return nil
}
