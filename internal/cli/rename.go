package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/shellquote"
	"github.com/aidanlsb/hangar/internal/slugs"
	"github.com/aidanlsb/hangar/internal/ui"
)

// retryFlags holds the per-call overrides of the rename retry policy.
type retryFlags struct {
	initial     time.Duration
	multiplier  float64
	maxInterval time.Duration
	maxElapsed  time.Duration
	attempts    int
}

func newRetryFlagSet(f *retryFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("retry", pflag.ContinueOnError)
	fs.DurationVar(&f.initial, "retry-initial", 0, "Wait before the first retry of a failed directory move")
	fs.Float64Var(&f.multiplier, "retry-multiplier", 0, "Factor applied to the wait after each retry")
	fs.DurationVar(&f.maxInterval, "retry-max-interval", 0, "Longest single wait between retries")
	fs.DurationVar(&f.maxElapsed, "retry-max-elapsed", 0, "Give up once the total wait would exceed this")
	fs.IntVar(&f.attempts, "retry-attempts", 0, "Maximum number of directory moves to try")
	return fs
}

func (f retryFlags) overrides() (config.RenameConfig, error) {
	rc := config.RenameConfig{
		InitialInterval: config.Duration(f.initial),
		Multiplier:      f.multiplier,
		MaxInterval:     config.Duration(f.maxInterval),
		MaxElapsed:      config.Duration(f.maxElapsed),
		MaxAttempts:     f.attempts,
	}
	return rc, rc.Validate()
}

var renameRetry retryFlags

var renameCmd = &cobra.Command{
	Use:   "rename <item> <new-name>",
	Short: "Rename an item and move its directory",
	Long: `Renames an item. The item's directory is moved to the new name first; if the
filesystem refuses (for example because another program holds the directory
open) the move is retried with growing waits. The name only changes once the
move has succeeded, so a failed rename leaves everything as it was.

Items whose kind does not allow renaming are refused.

Examples:
  hangar rename website website-2024
  hangar rename clients/acme/reports quarterly-reports
  hangar rename website site --retry-max-elapsed 10s`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := renameRetry.overrides()
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		ws, err := openWorkspace(overrides)
		if err != nil {
			return handleOpenError(err)
		}
		defer ws.Close()

		var spinner *ui.Spinner
		if !isJSONOutput() {
			spinner = ui.NewSpinner(fmt.Sprintf("Renaming %s...", args[0]))
			spinner.Start(150 * time.Millisecond)
		}
		it, out, err := ws.Rename(args[0], args[1])
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return handleRenameError(err, args[1], it)
		}

		warnings := renameWarnings(out)
		data := map[string]interface{}{
			"item":     viewOf(ws, it),
			"old_name": out.OldName,
			"new_name": out.NewName,
			"changed":  out.Changed,
			"moved":    out.Moved,
		}
		if isJSONOutput() {
			outputSuccessWithWarnings(data, warnings, &Meta{
				Attempts:   out.Attempts,
				DurationMs: out.Duration.Milliseconds(),
			})
			return nil
		}

		if !out.Changed {
			fmt.Fprintln(stdout, ui.Infof("%s already has that name", ui.ItemName(it.FullName())))
			return nil
		}
		fmt.Fprintln(stdout, ui.Successf("Renamed %s to %s", out.OldName, ui.ItemName(it.FullName())))
		if out.Attempts > 1 {
			fmt.Fprintln(stdout, ui.Hint(fmt.Sprintf("  directory moved after %d attempts (%s waiting)", out.Attempts, out.Waited)))
		}
		for _, w := range warnings {
			fmt.Fprintln(stdout, ui.Warning(w.Message))
		}
		return nil
	},
}

func renameWarnings(out item.Outcome) []Warning {
	var warnings []Warning
	if out.SaveErr != nil {
		warnings = append(warnings, Warning{Code: WarnSaveFailed, Message: out.SaveErr.Error()})
	}
	for _, err := range out.ListenerErrs {
		warnings = append(warnings, Warning{Code: WarnListenerFailed, Message: err.Error()})
	}
	return warnings
}

func handleRenameError(err error, newName string, it *item.Item) error {
	code := errorCode(err)
	suggestion := ""
	details := map[string]interface{}{}
	if it != nil {
		// The item keeps its name on every failure.
		details["name"] = it.Name()
		details["full_name"] = it.FullName()
	}

	switch code {
	case ErrInvalidName:
		if s := slugs.Suggest(newName); s != "" && s != newName {
			suggestion = "Try: hangar rename " + shellquote.QuoteIfNeeded(fullNameOr(it, "<item>")) + " " + shellquote.QuoteIfNeeded(s)
			details["suggested_name"] = s
		}
	case ErrNameCollision:
		suggestion = "Choose a different name or rename the other item first"
	case ErrRenameIOFailure:
		suggestion = "Close programs using the item's directory and try again, or raise --retry-max-elapsed"
		details["attempts"] = attemptsOf(err)
	case ErrItemNotFound:
		suggestion = itemNameHint
	}
	if len(details) == 0 {
		return handleErrorWithDetails(code, err.Error(), suggestion, nil)
	}
	return handleErrorWithDetails(code, err.Error(), suggestion, details)
}

func fullNameOr(it *item.Item, fallback string) string {
	if it == nil {
		return fallback
	}
	return it.FullName()
}

func attemptsOf(err error) int {
	var re *item.RenameError
	if errors.As(err, &re) {
		return re.Attempts
	}
	return 0
}

func init() {
	renameCmd.Flags().AddFlagSet(newRetryFlagSet(&renameRetry))
	rootCmd.AddCommand(renameCmd)
}
