package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

// shellCompletion describes how to generate and install the script for one shell.
type shellCompletion struct {
	generate func(w io.Writer) error
	// installPath returns the user-local target file; nil means --install is unsupported.
	installPath func(home string) string
	sessionHint string
	installNote []string
}

var shellCompletions = map[string]shellCompletion{
	"bash": {
		generate: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		installPath: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", "tdash")
		},
		sessionHint: `eval "$(tdash completion bash)"`,
		installNote: []string{"Restart your shell or source the file above."},
	},
	"zsh": {
		generate: func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		installPath: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_tdash")
		},
		sessionHint: `eval "$(tdash completion zsh)"`,
		installNote: []string{
			"Ensure the directory above is in your fpath, e.g. in ~/.zshrc:",
			"  fpath=(~/.local/share/zsh/site-functions $fpath)",
			"  autoload -Uz compinit && compinit",
		},
	},
	"fish": {
		generate: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		installPath: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions", "tdash.fish")
		},
		sessionHint: "tdash completion fish | source",
		installNote: []string{"Completions will be available in new fish sessions automatically."},
	},
	"powershell": {
		generate:    func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		sessionHint: "tdash completion powershell | Out-String | Invoke-Expression",
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for tdash",
	Long: `Set up shell tab-completions for tdash commands, flags, and arguments.

Supported shells: bash, zsh, fish, powershell

Quick install (adds completions to your user-local completion directory):

  tdash completion bash --install
  tdash completion zsh --install
  tdash completion fish --install

Or print the completion script to stdout (for manual setup):

  tdash completion bash
  tdash completion powershell`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your user-local completion directory")

	// Replace Cobra's default completion command with ours.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell := args[0]

	sc, ok := shellCompletions[shell]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", shell)
	}

	if completionInstall {
		return installCompletion(cmd, shell, sc)
	}

	// Hints go to stderr so piping stdout into eval keeps working.
	hint := cmd.ErrOrStderr()
	_, _ = fmt.Fprintln(hint, "# To load completions in your current session:")
	_, _ = fmt.Fprintf(hint, "#   %s\n#\n", sc.sessionHint)
	return sc.generate(cmd.OutOrStdout())
}

func installCompletion(cmd *cobra.Command, shell string, sc shellCompletion) error {
	if sc.installPath == nil {
		return fmt.Errorf("automatic install is not supported for %s; run 'tdash completion %s' and add the output to your profile", shell, shell)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target := sc.installPath(home)

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}
	if err := writeCompletionFile(target, sc.generate); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s completions installed to %s\n", shell, target)
	for _, line := range sc.installNote {
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}

// writeCompletionFile creates target and writes the script into it,
// propagating close errors.
func writeCompletionFile(target string, generate func(io.Writer) error) error {
	f, err := os.Create(target) //nolint:gosec // G304: target is under the user's home
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := generate(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
