package cli

import (
	"fmt"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/telemetry"
	"github.com/aidanlsb/hangar/internal/workspace"
)

// openWorkspace opens the resolved workspace with the global rename settings
// and any per-command overrides. Caller is responsible for calling Close.
func openWorkspace(overrides config.RenameConfig) (*workspace.Workspace, error) {
	ws, err := workspace.Open(getWorkspacePath(), workspace.Options{
		Logger:          logger,
		Rename:          getConfig().Rename,
		RenameOverrides: overrides,
	})
	if err != nil {
		return nil, err
	}
	ws.SetObserver(telemetry.NewRenameRecorder())
	return ws, nil
}

// handleOpenError reports a failure to open the workspace.
func handleOpenError(err error) error {
	code := errorCode(err)
	if code == ErrInternal {
		code = ErrConfigInvalid
	}
	return handleError(code, err, "Check hangar.yaml and the item config files")
}

// itemNameHint is the suggestion attached to ITEM_NOT_FOUND.
const itemNameHint = "Items are addressed by full name, e.g. clients/acme"

// walkItems visits the items of folder depth-first, in name order.
func walkItems(folder *item.Folder, fn func(it *item.Item, depth int)) {
	var walk func(f *item.Folder, depth int)
	walk = func(f *item.Folder, depth int) {
		for _, it := range f.Items() {
			fn(it, depth)
			if children := it.Children(); children != nil {
				walk(children, depth+1)
			}
		}
	}
	walk(folder, 0)
}

// itemView is the JSON shape of an item.
type itemView struct {
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Kind            string `json:"kind"`
	DisplayName     string `json:"display_name"`
	FullDisplayName string `json:"full_display_name"`
	Description     string `json:"description,omitempty"`
	Path            string `json:"path"`
	Children        int    `json:"children,omitempty"`
}

func viewOf(ws *workspace.Workspace, it *item.Item) itemView {
	v := itemView{
		Name:            it.Name(),
		FullName:        it.FullName(),
		Kind:            it.Kind().Name,
		DisplayName:     it.DisplayName(),
		FullDisplayName: it.FullDisplayName(),
		Description:     it.Description(),
		Path:            ws.DirOf(it),
	}
	if children := it.Children(); children != nil {
		v.Children = children.Len()
	}
	return v
}

// parseKind resolves a --kind flag value.
func parseKind(name string) (item.Kind, error) {
	if name == "" {
		return item.KindProject, nil
	}
	kind, ok := item.LookupKind(name)
	if !ok {
		return item.Kind{}, fmt.Errorf("unknown kind %q (available: %v)", name, item.KindNames())
	}
	return kind, nil
}
