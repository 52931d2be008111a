package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/ui"
	"github.com/aidanlsb/hangar/internal/watcher"
	"github.com/aidanlsb/hangar/internal/workspace"
)

var watchDebounce time.Duration

// treeChange is one reported difference between two loads of the item tree.
type treeChange struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed []string `json:"changed"`
}

func (c treeChange) empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report changes made to items outside hangar",
	Long: `Watches the workspace directory and reports items that appear, disappear
or change kind or display name because their directories or config files were
edited by hand. A directory moved outside hangar shows up as one removed and
one added item, and is not recorded in the rename journal.

The watcher:
- Debounces rapid changes (waits 100ms after the last change by default)
- Ignores the .hangar/ and .git/ directories
- Reloads the item tree after each batch of changes

With --json each batch is written as one JSON object per line.

Examples:
  hangar watch
  hangar watch --debounce 1s
  hangar watch --json`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(config.RenameConfig{})
	if err != nil {
		return handleOpenError(err)
	}
	snapshot := snapshotItems(ws)
	root := ws.Root()
	ws.Close()

	w, err := watcher.New(watcher.Config{
		Root:          root,
		DebounceDelay: watchDebounce,
		Logger:        logger,
		OnChange: func(changed []string) {
			logger.Debug("workspace changed", "paths", len(changed))
			next, err := reloadSnapshot()
			if err != nil {
				fmt.Fprintln(os.Stderr, ui.Warning("Could not reload workspace: "+err.Error()))
				return
			}
			change := diffSnapshots(snapshot, next)
			snapshot = next
			if !change.empty() {
				printTreeChange(change)
			}
		},
	})
	if err != nil {
		return handleError(ErrInternal, err, "")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !isJSONOutput() {
		fmt.Fprintln(stdout, ui.Header("Watching ")+ui.Hint(root))
		fmt.Fprintln(stdout, ui.Hint("Press Ctrl+C to stop"))
	}
	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		return handleError(ErrInternal, err, "")
	}
	return nil
}

// itemState is what watch compares between loads of one item.
type itemState struct {
	Kind        string
	DisplayName string
}

func snapshotItems(ws *workspace.Workspace) map[string]itemState {
	out := make(map[string]itemState)
	walkItems(ws.Items(), func(it *item.Item, _ int) {
		out[it.FullName()] = itemState{Kind: it.Kind().Name, DisplayName: it.DisplayName()}
	})
	return out
}

func reloadSnapshot() (map[string]itemState, error) {
	ws, err := openWorkspace(config.RenameConfig{})
	if err != nil {
		return nil, err
	}
	defer ws.Close()
	return snapshotItems(ws), nil
}

func diffSnapshots(before, after map[string]itemState) treeChange {
	c := treeChange{Added: []string{}, Removed: []string{}, Changed: []string{}}
	for name, state := range after {
		prev, ok := before[name]
		switch {
		case !ok:
			c.Added = append(c.Added, name)
		case prev != state:
			c.Changed = append(c.Changed, name)
		}
	}
	for name := range before {
		if _, ok := after[name]; !ok {
			c.Removed = append(c.Removed, name)
		}
	}
	sort.Strings(c.Added)
	sort.Strings(c.Removed)
	sort.Strings(c.Changed)
	return c
}

func printTreeChange(c treeChange) {
	if isJSONOutput() {
		_ = json.NewEncoder(stdout).Encode(c)
		return
	}
	for _, name := range c.Removed {
		fmt.Fprintln(stdout, ui.Hint("- ")+ui.ItemName(name))
	}
	for _, name := range c.Added {
		fmt.Fprintln(stdout, ui.Hint("+ ")+ui.ItemName(name))
	}
	for _, name := range c.Changed {
		fmt.Fprintln(stdout, ui.Hint("~ ")+ui.ItemName(name))
	}
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 100*time.Millisecond, "Quiet period before a batch of changes is reported")
	rootCmd.AddCommand(watchCmd)
}
