// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// newCompletionCommand creates the `wxsinline completion` command. Scripts go
// to the App's stdout.
func newCompletionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wxsinline.

` + SubtitleStyle.Render("Bash:") + `
  eval "$(wxsinline completion bash)"

` + SubtitleStyle.Render("Zsh:") + `
  wxsinline completion zsh > "${fpath[1]}/_wxsinline"

` + SubtitleStyle.Render("Fish:") + `
  wxsinline completion fish > ~/.config/fish/completions/wxsinline.fish

` + SubtitleStyle.Render("PowerShell:") + `
  wxsinline completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(c *cobra.Command, args []string) error {
			root := c.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(app.stdout)
			case "zsh":
				return root.GenZshCompletion(app.stdout)
			case "fish":
				return root.GenFishCompletion(app.stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(app.stdout)
			}
		},
	}
}
