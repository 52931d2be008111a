package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/hangar/internal/buildinfo"
	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/journal"
	"github.com/aidanlsb/hangar/internal/ui"
)

var readBuildInfo = debug.ReadBuildInfo

// versionInfo is the build of the binary plus, when a workspace can be
// found, the rename settings in effect there.
type versionInfo struct {
	Version       string         `json:"version"`
	Commit        string         `json:"commit,omitempty"`
	Built         string         `json:"built,omitempty"`
	Dirty         bool           `json:"dirty,omitempty"`
	Go            string         `json:"go"`
	Platform      string         `json:"platform"`
	JournalSchema int            `json:"journal_schema"`
	Workspace     *workspaceInfo `json:"workspace,omitempty"`
}

type workspaceInfo struct {
	Path           string    `json:"path"`
	Journal        bool      `json:"journal"`
	Audit          bool      `json:"audit"`
	ReservedNames  []string  `json:"reserved_names,omitempty"`
	Retry          retryView `json:"retry"`
	RetryOverrides bool      `json:"retry_overrides"`
}

type retryView struct {
	InitialInterval string  `json:"initial_interval"`
	Multiplier      float64 `json:"multiplier"`
	MaxInterval     string  `json:"max_interval"`
	MaxElapsed      string  `json:"max_elapsed"`
	MaxAttempts     int     `json:"max_attempts"`
}

func retryViewOf(p item.RetryPolicy) retryView {
	return retryView{
		InitialInterval: p.InitialInterval.String(),
		Multiplier:      p.Multiplier,
		MaxInterval:     p.MaxInterval.String(),
		MaxElapsed:      p.MaxElapsed.String(),
		MaxAttempts:     p.MaxAttempts,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the hangar build and the rename settings in effect",
	Long: `Shows the hangar build and the journal schema it writes. Inside a workspace
(or with --workspace/--workspace-path) it also shows the retry policy that
'hangar rename' will use there, after hangar.yaml overrides.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildVersion()
		info.Workspace = describeWorkspace()

		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		const w = 15
		fmt.Fprintf(stdout, "hangar %s\n", info.Version)
		if info.Commit != "" {
			commit := info.Commit
			if info.Dirty {
				commit += " (modified)"
			}
			fmt.Fprintln(stdout, ui.Field("commit", commit, w))
		}
		if info.Built != "" {
			fmt.Fprintln(stdout, ui.Field("built", info.Built, w))
		}
		fmt.Fprintln(stdout, ui.Field("go", info.Go+" "+info.Platform, w))
		fmt.Fprintln(stdout, ui.Field("journal schema", fmt.Sprint(info.JournalSchema), w))

		ws := info.Workspace
		if ws == nil {
			return nil
		}
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, ui.Header("Workspace ")+ui.Hint(ws.Path))
		fmt.Fprintln(stdout, ui.Field("journal", onOff(ws.Journal), w))
		fmt.Fprintln(stdout, ui.Field("audit", onOff(ws.Audit), w))
		if len(ws.ReservedNames) > 0 {
			fmt.Fprintln(stdout, ui.Field("reserved", strings.Join(ws.ReservedNames, ", "), w))
		}
		r := ws.Retry
		retry := fmt.Sprintf("%s x%g up to %s, %d attempts within %s",
			r.InitialInterval, r.Multiplier, r.MaxInterval, r.MaxAttempts, r.MaxElapsed)
		if ws.RetryOverrides {
			retry += " " + ui.Hint("(hangar.yaml)")
		}
		fmt.Fprintln(stdout, ui.Field("retry", retry, w))
		return nil
	},
}

// buildVersion reads the build identity from the embedded build info, falling
// back to the values set through ldflags.
func buildVersion() versionInfo {
	info := versionInfo{
		Version:       "devel",
		Go:            runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		JournalSchema: journal.CurrentVersion,
	}

	if bi, ok := readBuildInfo(); ok && bi != nil {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			info.Version = v
		}
		if bi.GoVersion != "" {
			info.Go = bi.GoVersion
		}
		goos, goarch := runtime.GOOS, runtime.GOARCH
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
			case "vcs.time":
				info.Built = s.Value
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			case "GOOS":
				goos = s.Value
			case "GOARCH":
				goarch = s.Value
			}
		}
		info.Platform = goos + "/" + goarch
	}

	if info.Version == "devel" && buildinfo.Version != "" {
		info.Version = buildinfo.Version
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}
	if info.Built == "" {
		info.Built = buildinfo.Date
	}
	return info
}

// describeWorkspace returns the settings of the workspace the global flags
// or the working directory point at, or nil if there is none.
func describeWorkspace() *workspaceInfo {
	path, err := resolveWorkspacePath()
	if err != nil {
		return nil
	}
	resolvedWorkspacePath = path
	ws, err := openWorkspace(config.RenameConfig{})
	if err != nil {
		logger.Debug("version: workspace not readable", "path", path, "err", err)
		return nil
	}
	defer ws.Close()

	wc := ws.Config()
	return &workspaceInfo{
		Path:           ws.Root(),
		Journal:        wc.IsJournalEnabled(),
		Audit:          wc.IsAuditEnabled(),
		ReservedNames:  wc.ReservedNames,
		Retry:          retryViewOf(ws.Policy()),
		RetryOverrides: wc.Rename != nil,
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
