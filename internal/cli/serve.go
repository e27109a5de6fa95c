package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/contentaudit/internal/api"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report workflow over HTTP",
		Long: `Start a local HTTP API over one report session. Dashboards can start
reports, page through items, manage the selection and delete records.
Stop with Ctrl-C; in-flight requests are allowed to finish.`,
		Example: `  contentaudit serve
  contentaudit serve --listen :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.newSession(cmd)
			if err != nil {
				return err
			}
			addr := s.cfg.Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}

			srv := api.New(s.orch, loggerFromContext(cmd.Context()))
			printSuccess("Serving %s on http://%s", s.cfg.Target(), addr)
			printNextStep("Start a report", "curl -X POST http://"+addr+"/reports/entries")
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on (default from config, 127.0.0.1:8080)")
	return cmd
}
