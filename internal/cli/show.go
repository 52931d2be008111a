package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <item>",
	Short: "Show an item",
	Long: `Shows an item's kind, names, directory and description. The description
is rendered as markdown; earlier names come from the rename journal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(config.RenameConfig{})
		if err != nil {
			return handleOpenError(err)
		}
		defer ws.Close()

		it, err := ws.Lookup(args[0])
		if err != nil {
			return handleError(errorCode(err), err, itemNameHint)
		}

		var formerNames []string
		if j := ws.Journal(); j != nil {
			trail, err := j.Trail(it.FullName())
			if err != nil {
				logger.Warn("could not read rename journal", "err", err)
			}
			for _, e := range trail {
				formerNames = append(formerNames, e.Previous)
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"item":         viewOf(ws, it),
				"former_names": formerNames,
				"renamable":    it.Kind().NameEditable,
			}, nil)
			return nil
		}

		const labelWidth = 13
		fmt.Fprintln(stdout, ui.Header(it.FullDisplayName()))
		fmt.Fprintln(stdout, ui.Field("name", ui.ItemName(it.FullName()), labelWidth))
		fmt.Fprintln(stdout, ui.Field("kind", it.Kind().Name, labelWidth))
		if it.DisplayNameOrEmpty() != "" {
			fmt.Fprintln(stdout, ui.Field("display name", it.DisplayName(), labelWidth))
		}
		fmt.Fprintln(stdout, ui.Field("directory", ws.DirOf(it), labelWidth))
		if children := it.Children(); children != nil {
			fmt.Fprintln(stdout, ui.Field("contains", ui.Count(children.Len(), "item", "items"), labelWidth))
		}
		if !it.Kind().NameEditable {
			fmt.Fprintln(stdout, ui.Field("renamable", "no", labelWidth))
		}
		if len(formerNames) > 0 {
			fmt.Fprintln(stdout, ui.Field("formerly", strings.Join(formerNames, ", "), labelWidth))
		}

		if desc := strings.TrimSpace(it.Description()); desc != "" {
			fmt.Fprintln(stdout)
			rendered, err := ui.RenderMarkdown(desc, ui.NewDisplayContext().TermWidth)
			if err != nil {
				rendered = desc + "\n"
			}
			fmt.Fprint(stdout, rendered)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
