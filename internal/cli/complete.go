package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBackend(); err != nil {
			return err
		}

		task, err := Backend.CompleteTask(commandContext(cmd), args[0])
		if err != nil {
			return failed("complete task", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed task %s: %s\n", task.ID, task.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
}
