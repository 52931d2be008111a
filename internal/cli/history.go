package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/dates"
	"github.com/aidanlsb/hangar/internal/journal"
	"github.com/aidanlsb/hangar/internal/ui"
)

var (
	historyLimit int
	historySince string
)

type historyEntry struct {
	Timestamp time.Time `json:"ts"`
	Item      string    `json:"item"`
	Previous  string    `json:"previous"`
	OldName   string    `json:"old_name"`
	NewName   string    `json:"new_name"`
	Kind      string    `json:"kind"`
}

var historyCmd = &cobra.Command{
	Use:   "history [item]",
	Short: "Show rename history",
	Long: `Lists committed renames, newest first. With an item, follows that item's
earlier names back through the journal. --since accepts today, yesterday,
a YYYY-MM-DD date, a datetime or a duration such as 48h.

Examples:
  hangar history
  hangar history --limit 5
  hangar history --since yesterday
  hangar history --since 2025-02-01
  hangar history clients/acme`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var since time.Time
		if historySince != "" {
			t, err := dates.ParseSince(historySince, time.Now())
			if err != nil {
				return handleError(ErrInvalidInput, err, "")
			}
			since = t
		}

		ws, err := openWorkspace(config.RenameConfig{})
		if err != nil {
			return handleOpenError(err)
		}
		defer ws.Close()

		j := ws.Journal()
		if j == nil {
			return handleErrorMsg(ErrJournalDisabled, "rename journal is disabled for this workspace",
				"Set 'journal: true' in hangar.yaml")
		}

		var entries []journal.Entry
		if len(args) == 1 {
			it, err := ws.Lookup(args[0])
			if err != nil {
				return handleError(errorCode(err), err, itemNameHint)
			}
			entries, err = j.Trail(it.FullName())
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
			entries = entriesSince(entries, since)
			if historyLimit > 0 && len(entries) > historyLimit {
				entries = entries[:historyLimit]
			}
		} else {
			entries, err = j.Since(since, historyLimit)
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
		}

		if isJSONOutput() {
			out := make([]historyEntry, len(entries))
			for i, e := range entries {
				out[i] = historyEntry{
					Timestamp: e.Timestamp,
					Item:      e.Item,
					Previous:  e.Previous,
					OldName:   e.OldName,
					NewName:   e.NewName,
					Kind:      e.Kind,
				}
			}
			outputSuccess(map[string]interface{}{"renames": out}, &Meta{Count: len(out)})
			return nil
		}

		if len(entries) == 0 {
			fmt.Fprintln(stdout, ui.Hint("No renames recorded."))
			return nil
		}
		rows := make([]ui.HistoryRow, len(entries))
		for i, e := range entries {
			rows[i] = ui.HistoryRow{When: e.Timestamp, Previous: e.Previous, Item: e.Item, Kind: e.Kind}
		}
		fmt.Fprintln(stdout, ui.Header("Renames")+" "+ui.Hint(ui.Count(len(rows), "rename", "renames")))
		fmt.Fprintln(stdout, ui.RenderHistory(ui.NewDisplayContext(), rows))
		return nil
	},
}

// entriesSince keeps the entries recorded at or after t.
func entriesSince(entries []journal.Entry, t time.Time) []journal.Entry {
	if t.IsZero() {
		return entries
	}
	kept := entries[:0]
	for _, e := range entries {
		if !e.Timestamp.Before(t) {
			kept = append(kept, e)
		}
	}
	return kept
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of renames to show (0 for all)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only show renames at or after this time")
	rootCmd.AddCommand(historyCmd)
}
