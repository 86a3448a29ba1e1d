// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

// install holds the install hint printed at the top of each script.
var install = map[string]string{
	"bash":       "santekit completion bash > /etc/bash_completion.d/santekit",
	"zsh":        "santekit completion zsh > ~/.zsh/completions/_santekit",
	"fish":       "santekit completion fish > ~/.config/fish/completions/santekit.fish",
	"powershell": "santekit completion powershell >> $PROFILE",
}

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for santekit. Config keys, report
subcommands and flags are completed.

Install:
  Bash:       ` + install["bash"] + `
  Zsh:        ` + install["zsh"] + `
  Fish:       ` + install["fish"] + `
  PowerShell: ` + install["powershell"],
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := args[0]
			hint, ok := install[shell]
			if !ok {
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", shell)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# santekit %s completion\n# Install: %s\n\n", shell, hint)
			switch shell {
			case "bash":
				return rootCmd.GenBashCompletionV2(out, true)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			default:
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
