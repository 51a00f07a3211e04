package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

var (
	updateTitle       string
	updateDescription string
	updateDue         string
	updateStatus      string
)

var updateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Edit a task's title, description, due date or status",
	Long: `Edit an existing task. Only the flags you pass are changed; the task's
identifier and creation time never change.

Example:
  tdash update 3 --due 2024-07-20 --title "Client presentation (moved)"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBackend(); err != nil {
			return err
		}

		patch, err := buildPatch(cmd)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass at least one of --title, --description, --due, --status")
		}

		task, err := Backend.UpdateTask(commandContext(cmd), args[0], patch)
		if err != nil {
			return failed("update task", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", task.ID)
		printTaskDetail(cmd.OutOrStdout(), task, time.Now())
		return nil
	},
}

// buildPatch sets a patch field for every flag the user changed.
func buildPatch(cmd *cobra.Command) (models.TaskPatch, error) {
	var patch models.TaskPatch
	flags := cmd.Flags()

	if flags.Changed("title") {
		patch.Title = &updateTitle
	}
	if flags.Changed("description") {
		patch.Description = &updateDescription
	}
	if flags.Changed("status") {
		status := models.TaskStatus(updateStatus)
		patch.Status = &status
	}
	if flags.Changed("due") {
		due, err := models.ParseDueDate(updateDue)
		if err != nil {
			return models.TaskPatch{}, fmt.Errorf("parsing --due: %w", err)
		}
		patch.DueDate = &due
	}
	return patch, nil
}

func init() {
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "new title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "new description")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "new due date, YYYY-MM-DD or RFC3339")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "new status: pending or completed")
	rootCmd.AddCommand(updateCmd)
}
