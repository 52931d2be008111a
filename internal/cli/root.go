// Package cli implements the command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/telemetry"
	"github.com/aidanlsb/hangar/internal/ui"
	"github.com/aidanlsb/hangar/internal/workspace"
)

var (
	// Global flags
	workspaceName     string // Named workspace from config
	workspacePathFlag string // Explicit path
	configPath        string
	verbose           bool

	// Resolved values
	resolvedWorkspacePath string
	cfg                   *config.Config
	logger                *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hangar",
	Short: "Hangar - a workspace of directory-backed items",
	Long: `Hangar keeps projects, folders and pipelines as directories in a workspace.

Renaming an item moves its directory in one step, retrying for a short while
if the filesystem is busy, and only then records the new name.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(os.Stderr)

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return handleErrorMsg(ErrConfigInvalid, err.Error(), "Fix the config file or pass --config")
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureCodeTheme(cfg.UI.CodeTheme)

		// Skip workspace resolution for commands that don't need it
		switch cmd.Name() {
		case "init", "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		resolvedWorkspacePath, err = resolveWorkspacePath()
		if err != nil {
			return handleErrorMsg(ErrWorkspaceNotFound, err.Error(),
				"Use --workspace-path, --workspace <name>, or run 'hangar init'")
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	ctx := context.Background()
	if err := telemetry.Init(ctx, "hangar", buildVersion().Version); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer telemetry.Shutdown(ctx)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceName, "workspace", "w", "", "Named workspace from config")
	rootCmd.PersistentFlags().StringVar(&workspacePathFlag, "workspace-path", "", "Explicit path to workspace directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log details to stderr")
}

// resolveWorkspacePath picks the workspace: explicit path > named workspace >
// default workspace > nearest hangar.yaml above the current directory.
func resolveWorkspacePath() (string, error) {
	if workspacePathFlag != "" {
		if _, err := os.Stat(workspacePathFlag); err != nil {
			return "", fmt.Errorf("workspace not found: %s", workspacePathFlag)
		}
		return workspacePathFlag, nil
	}
	if workspaceName != "" {
		path, err := cfg.WorkspacePath(workspaceName)
		if err != nil {
			return "", fmt.Errorf("workspace '%s' not found in config", workspaceName)
		}
		return path, nil
	}
	if cfg.DefaultWorkspace != "" {
		return cfg.WorkspacePath("")
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path, err := workspace.Find(wd)
	if err != nil {
		return "", errors.New(`no workspace specified

Either:
  1. Use --workspace <name> (from config)
  2. Use --workspace-path /path/to/workspace
  3. Set default_workspace in ~/.config/hangar/config.toml
  4. Run 'hangar init' in the directory to use`)
	}
	return path, nil
}

// getWorkspacePath returns the resolved workspace path.
func getWorkspacePath() string {
	return resolvedWorkspacePath
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func loadGlobalConfig() (*config.Config, error) {
	var loaded *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loaded, err = config.LoadFrom(configPath)
	} else {
		loaded, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = &config.Config{}
	}
	return loaded, nil
}

// getConfigPath returns the path the global config is read from and written to.
func getConfigPath() string {
	if strings.TrimSpace(configPath) != "" {
		return configPath
	}
	return config.DefaultPath()
}

func newLogger(w io.Writer) *slog.Logger {
	if !verbose && os.Getenv("HANGAR_DEBUG") != "1" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
