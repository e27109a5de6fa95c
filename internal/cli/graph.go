package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/contentaudit/pkg/audit"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/export"
	"github.com/matzehuels/contentaudit/pkg/refgraph"
)

// Graph output formats.
const (
	graphFormatDOT  = "dot"
	graphFormatSVG  = "svg"
	graphFormatJSON = "json"
)

// graphOpts holds the graph command flags.
type graphOpts struct {
	format   string
	output   string
	assets   bool
	detailed bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the entry reference graph",
		Long: `Build the graph of entry-to-entry links and write it as Graphviz DOT,
rendered SVG or JSON. Unused entries are highlighted and links to missing
entries are drawn dashed.`,
		Example: `  contentaudit graph -o links.svg
  contentaudit graph --assets --format dot | dot -Tpng > links.png
  contentaudit graph --format json -o graph.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, json (default from -o extension, else dot)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.assets, "assets", false, "include linked assets")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show content type and id on each node")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedValues("dot", "svg", "json"))

	return cmd
}

func (o graphOpts) resolveFormat() (string, error) {
	f := strings.ToLower(o.format)
	if f == "" && o.output != "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(o.output)), ".")
	}
	switch f {
	case "", graphFormatDOT, "gv":
		return graphFormatDOT, nil
	case graphFormatSVG, graphFormatJSON:
		return f, nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown graph format %q (want dot, svg or json)", f)
}

func (c *CLI) runGraph(cmd *cobra.Command, opts graphOpts) error {
	format, err := opts.resolveFormat()
	if err != nil {
		return err
	}
	s, err := c.newSession(cmd)
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(cmd.Context()), "target", s.cfg.Target(), "mode", s.cfg.Mode)
	var rep *audit.EntriesReport
	err = c.spin(cmd, "Building reference graph...", func() (err error) {
		rep, err = s.auditor.UnusedEntries(cmd.Context(), "")
		return err
	})
	if err != nil {
		prog.failed("graph build failed", err)
		return err
	}
	g := rep.Graph
	dangling := len(g.Dangling())
	prog.done("Built reference graph", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "dangling", dangling)

	unused := make(map[string]bool, len(rep.Entries))
	for _, e := range rep.Entries {
		unused[e.ID()] = true
	}

	var write func(io.Writer) error
	switch format {
	case graphFormatJSON:
		write = func(w io.Writer) error { return export.WriteGraphJSON(w, g, unused) }
	default:
		dot := refgraph.ToDOT(g, refgraph.Options{Unused: unused, IncludeAssets: opts.assets, Detailed: opts.detailed})
		write = func(w io.Writer) error {
			if format == graphFormatDOT {
				_, err := io.WriteString(w, dot)
				return err
			}
			svg, err := refgraph.RenderSVG(cmd.Context(), dot)
			if err != nil {
				return err
			}
			_, err = w.Write(svg)
			return err
		}
	}

	// The graph itself owns stdout, so the count goes to stderr there.
	if opts.output == "" {
		if err := write(cmd.OutOrStdout()); err != nil {
			return err
		}
		if dangling > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d linked entries are missing\n", dangling)
		}
		return nil
	}
	if err := export.ToFile(opts.output, write); err != nil {
		return err
	}
	printSuccess("Wrote %s graph (%d entries, %d links, %d unused)", format, g.NodeCount(), g.EdgeCount(), len(unused))
	printFile(opts.output)
	if dangling > 0 {
		printDetail("%d linked entries are missing", dangling)
	}
	return nil
}
