package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/parley/pkg/cli"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for Parley.

To load completions:

Bash:
  $ source <(parley completion bash)
  # To load permanently:
  $ parley completion bash > /etc/bash_completion.d/parley

Zsh:
  $ parley completion zsh > "${fpath[1]}/_parley"
  $ compinit

Fish:
  $ parley completion fish | source
  # To load permanently:
  $ parley completion fish > ~/.config/fish/completions/parley.fish

PowerShell:
  PS> parley completion powershell | Out-String | Invoke-Expression
  # To load permanently, add to your PowerShell profile
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return cli.NewUsageError("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
