package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdash/internal/storage"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the current tasks to a YAML seed file",
	Long: `Write a snapshot of every task to a YAML file in the seed format. Point
store.seed_file at it (with store.seed: file) to start later sessions from
this snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBackend(); err != nil {
			return err
		}

		tasks, err := Backend.ListTasks(commandContext(cmd))
		if err != nil {
			return failed("load tasks", err)
		}
		if err := storage.WriteSeedFile(args[0], tasks); err != nil {
			return fmt.Errorf("exporting tasks: %w", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) to %s\n", len(tasks), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
