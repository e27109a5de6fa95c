package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/contentaudit/internal/config"
)

// configCommand groups the config inspection subcommands.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: fmt.Sprintf(`Settings are merged in this order, later sources winning:

  1. built-in defaults
  2. the global config file (see "config path")
  3. ./%s in the working directory
  4. the file given with --config
  5. environment variables (%s, %s, ...)
  6. command-line flags`, config.ProjectFile, config.EnvToken, config.EnvSpace),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			global, err := config.GlobalPath()
			if err != nil {
				return err
			}
			printKeyValue("Global", global)
			printKeyValue("Project", config.ProjectFile)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML (token redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return cfg.Redacted().Encode(cmd.OutOrStdout())
		},
	})

	return cmd
}
