package main

import (
	"fmt"
	"sort"

	"github.com/logdoctor/logdoctor-go/internal/rules"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for logdoctor.

Besides command names the scripts complete --format, --fail-on and
--disable values and YAML files for --rules.

Bash:
  $ source <(logdoctor completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ logdoctor completion bash > /etc/bash_completion.d/logdoctor
  # macOS:
  $ logdoctor completion bash > $(brew --prefix)/etc/bash_completion.d/logdoctor

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ logdoctor completion zsh > "${fpath[1]}/_logdoctor"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ logdoctor completion fish | source

  # To load completions for each session, execute once:
  $ logdoctor completion fish > ~/.config/fish/completions/logdoctor.fish

PowerShell:
  PS> logdoctor completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> logdoctor completion powershell > logdoctor.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	// Completion scripts do not depend on the configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		out := cmd.OutOrStdout()

		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(out, true)
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeValues completes a flag from a fixed list and never falls back to
// file names.
func completeValues(values ...string) cobra.CompletionFunc {
	return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
}

// completeFormats completes the keys of formats in a stable order.
func completeFormats(formats map[string]bool) cobra.CompletionFunc {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return completeValues(names...)
}

func completeSeverities() cobra.CompletionFunc {
	return completeValues(check.None.String(), check.Medium.String(), check.High.String())
}

// completeRuleNames offers builtin rule names. Rules from YAML files are not
// known until the files are loaded.
func completeRuleNames() cobra.CompletionFunc {
	return completeValues(rules.Names()...)
}

// registerCatalogueCompletions wires value completion for the flags shared by
// commands that build a rule catalogue. It must run after the flags exist.
func registerCatalogueCompletions(cmd *cobra.Command) {
	mustRegister(cmd, "disable", completeRuleNames())
	if err := cmd.MarkFlagFilename("rules", "yaml", "yml"); err != nil {
		panic(fmt.Sprintf("completion for %s --rules: %v", cmd.Name(), err))
	}
}

func mustRegister(cmd *cobra.Command, flag string, fn cobra.CompletionFunc) {
	if err := cmd.RegisterFlagCompletionFunc(flag, fn); err != nil {
		panic(fmt.Sprintf("completion for %s --%s: %v", cmd.Name(), flag, err))
	}
}
