package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdash/internal/observability"
)

var (
	activitySince string
	activityLimit int
	activityJSON  bool
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent task activity from the event log",
	Long: `Show counters and the most recent entries of the task activity log.

--since accepts a look-back window such as 7d, 24h or 30m.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("activity log not available (events may be disabled)")
		}

		window, err := observability.ParseWindow(activitySince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}
		since := time.Now().UTC().Add(-window)

		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating activity: %w", err)
		}
		recent, err := MetricsCalc.Recent(since, activityLimit)
		if err != nil {
			return fmt.Errorf("reading recent activity: %w", err)
		}

		w := cmd.OutOrStdout()
		if activityJSON {
			return printJSON(w, struct {
				*observability.Metrics
				Recent []observability.Event `json:"recent"`
			}{metrics, recent})
		}

		_, _ = fmt.Fprintf(w, "Activity (since %s)\n\n", since.Format("2006-01-02 15:04"))
		_, _ = fmt.Fprintf(w, "  %-18s %d\n", "Events recorded:", metrics.EventCount)
		_, _ = fmt.Fprintf(w, "  %-18s %d\n", "Tasks created:", metrics.TasksCreated)
		_, _ = fmt.Fprintf(w, "  %-18s %d\n", "Tasks updated:", metrics.TasksUpdated)
		_, _ = fmt.Fprintf(w, "  %-18s %d\n", "Tasks completed:", metrics.TasksCompleted)
		_, _ = fmt.Fprintf(w, "  %-18s %d\n", "Tasks deleted:", metrics.TasksDeleted)

		if len(recent) == 0 {
			return nil
		}
		_, _ = fmt.Fprintln(w, "\n  Recent:")
		for _, e := range recent {
			_, _ = fmt.Fprintf(w, "  %s  %-15s %s\n", e.Time.Local().Format("Jan 2 15:04"), e.Type, e.TaskID())
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().StringVar(&activitySince, "since", "7d", "look-back window (e.g. 7d, 24h, 30m)")
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", 10, "number of recent events to show (0 for all)")
	activityCmd.Flags().BoolVar(&activityJSON, "json", false, "print activity as JSON")
	rootCmd.AddCommand(activityCmd)
}
