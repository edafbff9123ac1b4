package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wit-platform/witpanel/pkg/layout"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for witpanel.

Bash:
  $ source <(witpanel completion bash)

Zsh:
  $ witpanel completion zsh > "${fpath[1]}/_witpanel"

Fish:
  $ witpanel completion fish > ~/.config/fish/completions/witpanel.fish

PowerShell:
  PS> witpanel completion powershell | Out-String | Invoke-Expression

Entity ids complete from the configured storage backend.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeIDs completes the first argument with entity ids, described by
// their labels.
// Completion skips the persistent pre-run, so the config is loaded here.
func completeIDs[P layout.Attributes](c *CLI, def boardDef[P]) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if err := c.setup(cmd, args); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		var ids []string
		err := withStore(ctx, c, def, func(s *layout.Store[P]) error {
			for _, e := range s.Entities() {
				if strings.HasPrefix(e.ID, toComplete) {
					ids = append(ids, e.ID+"\t"+e.Payload.Label())
				}
			}
			return nil
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}
