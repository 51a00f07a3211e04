package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

var (
	listFilter string
	listSearch string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks, optionally filtered and searched",
	Long: `List tasks in insertion order.

--filter narrows the list to one category: all, pending, completed or overdue.
Overdue tasks are pending tasks whose due date has passed; they also appear
under pending. --search keeps tasks whose title or description contains the
text, ignoring case. Both can be combined.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBackend(); err != nil {
			return err
		}

		category, err := models.ParseCategory(listFilter)
		if err != nil {
			return fmt.Errorf("parsing --filter: %w", err)
		}

		tasks, err := Backend.QueryTasks(commandContext(cmd), category, listSearch)
		if err != nil {
			return failed("load tasks", err)
		}

		if listJSON {
			return printJSON(cmd.OutOrStdout(), tasks)
		}
		printTaskTable(cmd.OutOrStdout(), tasks, time.Now())
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "all", "category: all, pending, completed, overdue")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "case-insensitive text matched against title and description")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print tasks as JSON")
	_ = listCmd.RegisterFlagCompletionFunc("filter", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(models.Categories))
		for i, c := range models.Categories {
			out[i] = string(c)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(listCmd)
}
