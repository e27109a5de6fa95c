package cli

import (
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/contentaudit/pkg/contentful"
)

// completionTimeout bounds the API call behind --content-type completion so
// a slow network never hangs the shell.
const completionTimeout = 3 * time.Second

// shells maps each supported shell to its script generator.
var shells = map[string]func(root *cobra.Command, w io.Writer, desc bool) error{
	"bash": func(root *cobra.Command, w io.Writer, desc bool) error { return root.GenBashCompletionV2(w, desc) },
	"zsh": func(root *cobra.Command, w io.Writer, desc bool) error {
		if desc {
			return root.GenZshCompletion(w)
		}
		return root.GenZshCompletionNoDesc(w)
	},
	"fish": func(root *cobra.Command, w io.Writer, desc bool) error { return root.GenFishCompletion(w, desc) },
	"powershell": func(root *cobra.Command, w io.Writer, desc bool) error {
		if desc {
			return root.GenPowerShellCompletionWithDesc(w)
		}
		return root.GenPowerShellCompletion(w)
	},
}

func shellNames() []string {
	names := make([]string, 0, len(shells))
	for name := range shells {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// completionCommand writes a shell completion script to stdout.
func (c *CLI) completionCommand() *cobra.Command {
	var noDesc bool
	cmd := &cobra.Command{
		Use:   "completion <" + strings.Join(shellNames(), "|") + ">",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for your shell.

  bash        source <(contentaudit completion bash)
  zsh         contentaudit completion zsh > "${fpath[1]}/_contentaudit"
  fish        contentaudit completion fish > ~/.config/fish/completions/contentaudit.fish
  powershell  contentaudit completion powershell | Out-String | Invoke-Expression

Besides commands and flags, the scripts complete report kinds, output
formats and, when credentials are configured, the content type ids of the
space for --content-type.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shellNames(),
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shells[args[0]](cmd.Root(), cmd.OutOrStdout(), !noDesc)
		},
	}

	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "omit command and flag descriptions")
	return cmd
}

// fixedValues completes a flag from a closed set of values.
func fixedValues(values ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeContentTypes lists the space's content types as "id\tname".
// Without credentials or network it offers nothing rather than an error.
func (c *CLI) completeContentTypes(cmd *cobra.Command, _ []string, prefix string) ([]string, cobra.ShellCompDirective) {
	none := cobra.ShellCompDirectiveNoFileComp
	cfg, err := c.loadConfig(cmd)
	if err != nil || cfg.RequireCredentials() != nil {
		return nil, none
	}
	client, err := contentful.NewClient(cfg.ClientConfig())
	if err != nil {
		return nil, none
	}

	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()
	types, err := client.ListContentTypes(ctx)
	if err != nil {
		return nil, none
	}

	out := make([]string, 0, len(types))
	for _, ct := range types {
		if id := ct.ID(); strings.HasPrefix(id, prefix) {
			out = append(out, id+"\t"+ct.Name)
		}
	}
	return out, none
}
