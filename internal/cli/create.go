package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/paths"
	"github.com/aidanlsb/hangar/internal/shellquote"
	"github.com/aidanlsb/hangar/internal/slugs"
	"github.com/aidanlsb/hangar/internal/ui"
	"github.com/aidanlsb/hangar/internal/workspace"
)

var (
	createKind        string
	createDisplayName string
	createDescription string
)

var createCmd = &cobra.Command{
	Use:   "create [parent] <name>",
	Short: "Create an item",
	Long: `Creates an item directory with its config.yaml.

Without a parent the item is created at the top of the workspace. The parent
must be a folder.

Examples:
  hangar create website
  hangar create clients --kind folder
  hangar create clients acme --kind folder --display-name "ACME Corp"
  hangar create clients/acme nightly-build --kind pipeline`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, name := "", args[0]
		if len(args) == 2 {
			parent, name = args[0], args[1]
		}

		kind, err := parseKind(createKind)
		if err != nil {
			return handleError(ErrUnknownKind, err, "")
		}

		ws, err := openWorkspace(config.RenameConfig{})
		if err != nil {
			return handleOpenError(err)
		}
		defer ws.Close()

		it, err := ws.Create(parent, name, workspace.CreateOptions{
			Kind:        kind,
			DisplayName: createDisplayName,
			Description: createDescription,
		})
		if err != nil {
			code := errorCode(err)
			suggestion := ""
			switch code {
			case ErrInvalidName:
				if s := slugs.Suggest(name); s != "" && s != name {
					suggestion = "Try: hangar create " + createCommandArgs(parent, s)
				}
			case ErrNameCollision:
				suggestion = fmt.Sprintf("'%s' already exists", paths.JoinFullName(parent, name))
			case ErrNotContainer:
				suggestion = "Only folders can contain other items"
			}
			return handleError(code, err, suggestion)
		}

		if isJSONOutput() {
			outputSuccess(viewOf(ws, it), nil)
			return nil
		}
		fmt.Fprintln(stdout, ui.Successf("Created %s %s", it.Kind().Name, ui.ItemName(it.FullName())))
		fmt.Fprintln(stdout, ui.Hint("  "+ws.DirOf(it)))
		return nil
	},
}

func createCommandArgs(parent, name string) string {
	if parent == "" {
		return shellquote.QuoteIfNeeded(name)
	}
	return shellquote.QuoteIfNeeded(parent) + " " + shellquote.QuoteIfNeeded(name)
}

func init() {
	createCmd.Flags().StringVar(&createKind, "kind", "", "Item kind: computed, folder, pipeline or project (default project)")
	createCmd.Flags().StringVar(&createDisplayName, "display-name", "", "Human-readable name")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Markdown description")
	rootCmd.AddCommand(createCmd)
}
