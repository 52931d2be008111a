package workspace

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/hangar/internal/atomicfile"
	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/paths"
)

// ItemConfig is the content of an item's config.yaml.
type ItemConfig struct {
	Kind        string `yaml:"kind"`
	DisplayName string `yaml:"display_name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

func configOf(it *item.Item) ItemConfig {
	return ItemConfig{
		Kind:        it.Kind().Name,
		DisplayName: it.DisplayNameOrEmpty(),
		Description: it.Description(),
	}
}

// Save writes it's config.yaml. It makes Workspace an item.Saver. The
// directory of it's parent must already exist; Save never recreates a parent
// that was moved or removed.
func (w *Workspace) Save(it *item.Item) error {
	if container := w.containerDir(it.Parent()); !dirExists(container) {
		return fmt.Errorf("parent directory %s of %s does not exist", container, it.FullName())
	}
	dir := w.DirOf(it)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create item directory: %w", err)
	}
	return atomicfile.WriteYAML(paths.ItemConfigPath(dir), configOf(it), 0)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func readItemConfig(dir string) (ItemConfig, error) {
	var cfg ItemConfig
	data, err := os.ReadFile(paths.ItemConfigPath(dir))
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", paths.ItemConfigPath(dir), err)
	}
	return cfg, nil
}

// load reads every item below the workspace root.
func (w *Workspace) load() error {
	return w.loadFolder(w.items, w.root)
}

func (w *Workspace) loadFolder(folder *item.Folder, containerDir string) error {
	itemsDir := paths.ChildrenDir(containerDir)
	entries, err := os.ReadDir(itemsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", itemsDir, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		dir := paths.ItemDir(containerDir, name)
		if err := item.CheckName(name); err != nil {
			w.logger.Warn("skipping directory with invalid item name", "dir", dir, "err", err)
			continue
		}

		cfg, err := readItemConfig(dir)
		if errors.Is(err, os.ErrNotExist) {
			w.logger.Debug("skipping directory without config", "dir", dir)
			continue
		}
		if err != nil {
			return err
		}
		kind, ok := item.LookupKind(cfg.Kind)
		if !ok {
			return fmt.Errorf("%s: unknown item kind %q", paths.ItemConfigPath(dir), cfg.Kind)
		}

		it, err := item.New(kind, folder, name)
		if err != nil {
			return err
		}
		// No saver is attached yet, so these do not write back.
		_ = it.SetDisplayName(cfg.DisplayName)
		_ = it.SetDescription(cfg.Description)
		it.SetSaver(w)

		if err := folder.Add(it); err != nil {
			return err
		}
		if kind.Container {
			if err := w.loadFolder(it.Children(), dir); err != nil {
				return err
			}
		}
	}
	return nil
}
