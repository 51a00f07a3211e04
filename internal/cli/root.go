package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "tdash",
	Short: "Task Management Dashboard - stay organized and boost your productivity",
	Long: `taskdash (tdash) is a task management dashboard backed by an in-memory
mock data source.

It provides commands to list, filter, search, add, edit, complete and delete
tasks, aggregate statistics, an interactive terminal dashboard and an MCP
server. Tasks live for the lifetime of one process; seed them from the
built-in fixture or a YAML file configured in .taskdash.yaml.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tdash %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// commandContext returns the command's context, or Background when the
// command is invoked outside Execute (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requireBackend() error {
	if Backend == nil {
		return fmt.Errorf("task backend not initialized")
	}
	return nil
}
