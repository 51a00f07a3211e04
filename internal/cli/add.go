package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

var (
	addTitle       string
	addDescription string
	addDue         string
	addStatus      string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	Long: `Add a new task to the store. The identifier and creation time are
assigned automatically.

--due accepts a calendar date (2006-01-02, due at the end of that day UTC)
or an RFC3339 timestamp.

Example:
  tdash add --title "Prepare Q3 report" --due 2024-09-30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBackend(); err != nil {
			return err
		}

		due, err := models.ParseDueDate(addDue)
		if err != nil {
			return fmt.Errorf("parsing --due: %w", err)
		}

		task, err := Backend.AddTask(commandContext(cmd), models.TaskDraft{
			Title:       addTitle,
			Description: addDescription,
			Status:      models.TaskStatus(addStatus),
			DueDate:     due,
		})
		if err != nil {
			return failed("add task", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", task.ID)
		printTaskDetail(cmd.OutOrStdout(), task, time.Now())
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "task title (required)")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "task description")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date, YYYY-MM-DD or RFC3339 (required)")
	addCmd.Flags().StringVar(&addStatus, "status", "pending", "initial status: pending or completed")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("due")
	rootCmd.AddCommand(addCmd)
}
