package cli

import (
	"github.com/spf13/cobra"
)

// spaceCommand prints the space the credentials point at.
func (c *CLI) spaceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "space",
		Short: "Show the configured space and check access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.newSession(cmd)
			if err != nil {
				return err
			}
			sp, err := s.client.GetSpace(cmd.Context())
			if err != nil {
				return err
			}
			printKeyValue("Space", sp.Name)
			printKeyValue("ID", s.client.SpaceID())
			printKeyValue("Environment", s.client.EnvironmentID())
			printKeyValue("Locale", s.cfg.Locale)
			printKeyValue("Mode", s.cfg.Mode)
			return nil
		},
	}
}
