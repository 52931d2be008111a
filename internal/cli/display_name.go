package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/ui"
)

var setDisplayNameCmd = &cobra.Command{
	Use:   "set-display-name <item> [display-name]",
	Short: "Set or clear an item's display name",
	Long: `Sets the human-readable name of an item. Without a display name the explicit
value is cleared and the item is shown by its name again.

The display name is free text and never affects the item's directory.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		displayName := ""
		if len(args) == 2 {
			displayName = args[1]
		}

		ws, err := openWorkspace(config.RenameConfig{})
		if err != nil {
			return handleOpenError(err)
		}
		defer ws.Close()

		it, old, err := ws.SetDisplayName(args[0], displayName)
		if err != nil {
			if it == nil {
				return handleError(errorCode(err), err, itemNameHint)
			}
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"item":     viewOf(ws, it),
				"previous": old,
			}, nil)
			return nil
		}
		if displayName == "" {
			fmt.Fprintln(stdout, ui.Successf("Cleared display name of %s", ui.ItemName(it.FullName())))
			return nil
		}
		fmt.Fprintln(stdout, ui.Successf("%s is now shown as %q", ui.ItemName(it.FullName()), it.DisplayName()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setDisplayNameCmd)
}
