package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/workspace"
)

var (
	initRegisterName string
	initReserved     []string
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a new workspace",
	Long: `Creates a workspace at the given path (default: the current directory).

Creates:
  - hangar.yaml  (workspace configuration)
  - items/       (one directory per item)
  - .hangar/     (audit log and rename journal)

With --name the workspace is also registered in the global config, and becomes
the default workspace if none is set yet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		created, err := workspace.Init(abs)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if len(initReserved) > 0 {
			wsCfg, err := config.LoadWorkspaceConfig(abs)
			if err != nil {
				return handleError(ErrConfigInvalid, err, "")
			}
			wsCfg.ReservedNames = appendMissing(wsCfg.ReservedNames, initReserved...)
			if err := config.SaveWorkspaceConfig(abs, wsCfg); err != nil {
				return handleError(ErrInternal, err, "")
			}
		}

		registered := false
		if initRegisterName != "" {
			c := getConfig()
			c.AddWorkspace(initRegisterName, abs)
			if err := config.SaveTo(getConfigPath(), c); err != nil {
				return handleError(ErrInternal, err, "")
			}
			registered = true
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"path":       abs,
				"created":    created,
				"registered": registered,
				"name":       initRegisterName,
			}, nil)
			return nil
		}

		fmt.Fprintf(stdout, "Initializing workspace at: %s\n", abs)
		if created {
			fmt.Fprintln(stdout, "✓ Created hangar.yaml (workspace configuration)")
		} else {
			fmt.Fprintln(stdout, "• hangar.yaml already exists (kept)")
		}
		fmt.Fprintln(stdout, "✓ Ensured items/ and .hangar/ directories exist")
		if registered {
			fmt.Fprintf(stdout, "✓ Registered as '%s' in %s\n", initRegisterName, getConfigPath())
		}
		return nil
	},
}

func appendMissing(list []string, values ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			list = append(list, v)
			seen[v] = true
		}
	}
	return list
}

func init() {
	initCmd.Flags().StringVar(&initRegisterName, "name", "", "Register the workspace under this name in the global config")
	initCmd.Flags().StringSliceVar(&initReserved, "reserve", nil, "Names items may never use (repeatable)")
	rootCmd.AddCommand(initCmd)
}
