package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var statsJSON bool

var progressFill = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics and overall progress",
	Long: `Show store-wide statistics: total, completed, pending and overdue counts,
and overall progress (completed / total, rounded to the nearest percent).
Statistics always cover every task, regardless of any filter.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBackend(); err != nil {
			return err
		}

		stats, err := Backend.Stats(commandContext(cmd))
		if err != nil {
			return failed("load statistics", err)
		}

		if statsJSON {
			return printJSON(cmd.OutOrStdout(), stats)
		}

		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "  %-14s %d\n", "Total Tasks:", stats.Total)
		_, _ = fmt.Fprintf(w, "  %-14s %d\n", "Completed:", stats.Completed)
		_, _ = fmt.Fprintf(w, "  %-14s %d\n", "Pending:", stats.Pending)
		_, _ = fmt.Fprintf(w, "  %-14s %d\n", "Overdue:", stats.Overdue)
		_, _ = fmt.Fprintf(w, "\n  Overall Progress (%d%%)\n  %s\n", stats.Progress, textProgressBar(stats.Progress, 30))
		return nil
	},
}

// textProgressBar renders percent as a fixed-width bar of block characters.
func textProgressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return progressFill.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}
