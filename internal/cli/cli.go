// Package cli implements the contentaudit command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/contentaudit/internal/config"
	"github.com/matzehuels/contentaudit/pkg/audit"
	"github.com/matzehuels/contentaudit/pkg/buildinfo"
	"github.com/matzehuels/contentaudit/pkg/contentful"
	"github.com/matzehuels/contentaudit/pkg/report"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and help text.
const appName = "contentaudit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	flags  globalFlags
}

// globalFlags are the persistent flags that override config file values.
type globalFlags struct {
	configPath  string
	token       string
	space       string
	environment string
	baseURL     string
	locale      string
	mode        string
	concurrency int
	singlePage  bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug also reports callers.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "contentaudit finds and removes unused content in a Contentful space",
		Long: `contentaudit audits a Contentful space for unused records: entries no other
entry links to, content types without entries, and assets no entry links to.
Unused entries and assets can be reviewed, selected and deleted.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			output = cmd.OutOrStdout()
			if c.Logger.GetLevel() <= log.DebugLevel {
				registerDebugHooks(c.Logger)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default: global and ./"+config.ProjectFile+")")
	pf.StringVar(&c.flags.token, "token", "", "management token (env "+config.EnvToken+")")
	pf.StringVar(&c.flags.space, "space", "", "space id (env "+config.EnvSpace+")")
	pf.StringVarP(&c.flags.environment, "environment", "e", "", "environment id (default master)")
	pf.StringVar(&c.flags.baseURL, "base-url", "", "Content Management API base URL")
	pf.StringVar(&c.flags.locale, "locale", "", "locale used for names and titles (default en-US)")
	pf.StringVar(&c.flags.mode, "mode", "", "reference mode: direct (default) or reachable")
	pf.IntVar(&c.flags.concurrency, "concurrency", 0, "parallel existence probes (1-8)")
	pf.BoolVar(&c.flags.singlePage, "single-page", false, "only scan the first page of entries when building the graph")
	_ = root.RegisterFlagCompletionFunc("mode", fixedValues(string(audit.ModeDirect), string(audit.ModeReachable)))

	root.AddCommand(c.reportCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.spaceCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Session Factory
// =============================================================================

// loadConfig reads config files and applies the flags set on cmd.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	if changed("token") {
		cfg.Token = c.flags.token
	}
	if changed("space") {
		cfg.Space = c.flags.space
	}
	if changed("environment") {
		cfg.Environment = c.flags.environment
	}
	if changed("base-url") {
		cfg.BaseURL = c.flags.baseURL
	}
	if changed("locale") {
		cfg.Locale = c.flags.locale
	}
	if changed("mode") {
		cfg.Mode = c.flags.mode
	}
	if changed("concurrency") {
		cfg.Concurrency = c.flags.concurrency
	}
	if changed("single-page") {
		cfg.SinglePage = c.flags.singlePage
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, src := range cfg.Sources {
		c.Logger.Debug("loaded config", "path", src)
	}
	return cfg, nil
}

// session bundles the collaborators one command run needs.
type session struct {
	cfg     *config.Config
	client  *contentful.Client
	auditor *audit.Auditor
	orch    *report.Orchestrator
}

// newSession loads config and wires a client, auditor and orchestrator.
func (c *CLI) newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	client, err := contentful.NewClient(cfg.ClientConfig())
	if err != nil {
		return nil, err
	}

	logger := loggerFromContext(cmd.Context())
	auditor := audit.New(client, cfg.AuditOptions(), logger)
	orch := report.NewOrchestrator(
		report.AuditDetector{Auditor: auditor},
		report.NewDeleter(client, logger),
		logger,
	)
	logger.Debug("session ready", "target", cfg.String())
	return &session{cfg: cfg, client: client, auditor: auditor, orch: orch}, nil
}
