package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// HistoryRow is one rename shown by `hangar history`.
type HistoryRow struct {
	When     time.Time
	Previous string
	Item     string
	Kind     string
}

// RenderHistory renders renames as a borderless table fitted to the display
// width. Full names that do not fit are truncated with an ellipsis.
func RenderHistory(display *DisplayContext, rows []HistoryRow) string {
	if len(rows) == 0 {
		return ""
	}

	const whenWidth, kindWidth, arrowWidth, padding = 16, 9, 2, 2
	nameWidth := (display.AvailableWidth(2) - whenWidth - kindWidth - arrowWidth - 4*padding) / 2
	if nameWidth < 12 {
		nameWidth = 12
	}

	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{
			r.When.Local().Format("2006-01-02 15:04"),
			TruncateWithEllipsis(r.Previous, nameWidth),
			"→",
			TruncateWithEllipsis(r.Item, nameWidth),
			r.Kind,
		}
	}

	widths := []int{whenWidth, nameWidth, arrowWidth, nameWidth, kindWidth}
	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle()
			switch col {
			case 0, 2, 4:
				style = Muted
			case 3:
				style = Accent
			}
			// Width includes padding.
			if col < len(widths)-1 {
				return style.Width(widths[col] + padding).PaddingRight(padding)
			}
			return style.Width(widths[col])
		}).
		Rows(data...)

	return tbl.Render()
}

// TruncateWithEllipsis shortens s to at most maxLen runes, ending in "…".
func TruncateWithEllipsis(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
