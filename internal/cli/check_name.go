package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/slugs"
	"github.com/aidanlsb/hangar/internal/ui"
)

var checkNameCmd = &cobra.Command{
	Use:   "check-name <name>",
	Short: "Check whether a name can be given to an item",
	Long: `Checks a candidate item name against the naming rules and the workspace's
reserved names, without renaming anything. Rejected names come with a
suggested alternative when one can be derived.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		ws, err := openWorkspace(config.RenameConfig{})
		if err != nil {
			return handleOpenError(err)
		}
		defer ws.Close()

		if err := ws.CheckName(name); err != nil {
			suggestion := ""
			var details interface{}
			if s := slugs.Suggest(name); s != "" && s != name && ws.CheckName(s) == nil {
				suggestion = fmt.Sprintf("Try '%s'", s)
				details = map[string]interface{}{"suggested_name": s}
			}
			return handleErrorWithDetails(ErrInvalidName, err.Error(), suggestion, details)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"name": name, "valid": true}, nil)
			return nil
		}
		fmt.Fprintln(stdout, ui.Successf("%q is a valid item name", name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkNameCmd)
}
