package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/export"
	"github.com/matzehuels/contentaudit/pkg/report"
)

// formatTable is the default human-readable report output.
const formatTable = "table"

// reportOpts holds the report command flags.
type reportOpts struct {
	contentType string
	format      string
	output      string
	query       string
	page        int
	pageSize    int
	all         bool
}

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	opts := reportOpts{page: 1, pageSize: report.DefaultPageSize}

	cmd := &cobra.Command{
		Use:   "report <entries|media|types>",
		Short: "List unused entries, assets or content types",
		Long: `Generate a report of unused records in the configured space.

  entries   entries no other entry links to (excluding page-like content types)
  media     assets no entry links to
  types     content types without any entries

Output is a paged table by default. Use --format json|csv or -o to export
the full (query-filtered) report.`,
		Example: `  contentaudit report entries
  contentaudit report entries --content-type blogPost --query draft
  contentaudit report media --format csv -o unused-media.csv
  contentaudit report types --format json`,
		ValidArgs: []string{string(report.KindEntries), string(report.KindMedia), string(report.KindTypes)},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := report.ParseKind(args[0])
			if err != nil {
				return err
			}
			return c.runReport(cmd, kind, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.contentType, "content-type", "t", "", "only report entries of this content type")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: table, json, csv (default table, or from -o extension)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "only show items whose name contains this text")
	cmd.Flags().IntVar(&opts.page, "page", opts.page, "page to show (table output)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", opts.pageSize, fmt.Sprintf("items per page: %v", report.PageSizes))
	cmd.Flags().BoolVar(&opts.all, "all", false, "show every item on one page (table output)")
	_ = cmd.RegisterFlagCompletionFunc("content-type", c.completeContentTypes)
	_ = cmd.RegisterFlagCompletionFunc("format", fixedValues("table", "json", "csv"))

	return cmd
}

// resolveFormat picks the output format from --format and -o.
func (o reportOpts) resolveFormat() (string, error) {
	if o.format == "" {
		if o.output != "" {
			return string(export.FormatFromPath(o.output)), nil
		}
		return formatTable, nil
	}
	if o.format == formatTable {
		if o.output != "" {
			return "", apperrors.New(apperrors.ErrCodeInvalidFormat, "table output cannot be written to a file")
		}
		return formatTable, nil
	}
	f, err := export.ParseFormat(o.format)
	return string(f), err
}

func (c *CLI) runReport(cmd *cobra.Command, kind report.Kind, opts reportOpts) error {
	if opts.contentType != "" && kind != report.KindEntries {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "--content-type only applies to the entries report")
	}
	format, err := opts.resolveFormat()
	if err != nil {
		return err
	}
	if format == formatTable && !opts.all && !report.ValidPageSize(opts.pageSize) {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "--page-size must be one of %v", report.PageSizes)
	}

	s, err := c.newSession(cmd)
	if err != nil {
		return err
	}
	st, err := c.generate(cmd, s, kind, opts.contentType)
	if err != nil {
		return err
	}

	if format != formatTable {
		doc := export.NewDocument(st)
		doc.Items = report.Filter(doc.Items, opts.query)
		write := func(w io.Writer) error { return export.Write(w, export.Format(format), doc) }
		if opts.output == "" {
			return write(cmd.OutOrStdout())
		}
		if err := export.ToFile(opts.output, write); err != nil {
			return err
		}
		printSuccess("Exported %d unused %s", len(doc.Items), kindNoun(kind))
		printFile(opts.output)
		return nil
	}

	view := report.View{Query: opts.query, Page: max(opts.page-1, 0), PageSize: opts.pageSize}
	if opts.all {
		view.PageSize = max(len(st.Items()), 1)
	}
	printReport(st, s.orch.Page(view), nil)
	return nil
}

// generate runs a report behind a spinner and logs completion.
func (c *CLI) generate(cmd *cobra.Command, s *session, kind report.Kind, contentType string) (report.State, error) {
	prog := newProgress(loggerFromContext(cmd.Context()), "kind", kind, "target", s.cfg.Target())
	var st report.State
	err := c.spin(cmd, fmt.Sprintf("Generating %s report for %s...", kind, s.cfg.Target()), func() (err error) {
		st, err = s.orch.Generate(cmd.Context(), kind, contentType)
		return err
	})
	if err != nil {
		prog.failed("report failed", err)
		return st, err
	}
	prog.done("Generated report", "unused", len(st.Items()), "scanned", st.Scanned)
	return st, nil
}

// printReport prints the title, one page of items and the summary.
func printReport(st report.State, page report.Page, isSelected func(string) bool) {
	title := "Unused " + kindNoun(st.Kind)
	if st.ContentType != "" {
		title += " of type " + st.ContentType
	}
	printNewline()
	fmt.Fprintln(output, StyleTitle.Render(title))

	if page.Total == 0 {
		if len(st.Items()) == 0 {
			printSuccess("Nothing unused found")
		} else {
			printInfo("No items match the query")
		}
	} else {
		fmt.Fprintln(output, itemsTable(st.Kind, page.Items, isSelected, -1, time.Now()))
		if page.PageCount > 1 {
			printDetail("page %d of %d (%d matching)", page.Page+1, page.PageCount, page.Total)
		}
	}
	printReportStats(st)

	if st.Truncated {
		printWarning("Only the first page of entries was scanned (%d of %d); results may include false positives", st.Scanned, st.Total)
	}
	for _, f := range st.Failures {
		printWarning("Could not check %s: %s", f.ID, f.Reason)
	}
	if st.Kind.Deletable() && len(st.Items()) > 0 {
		printNewline()
		printNextStep("Review and delete", fmt.Sprintf("%s delete %s --all-unused --dry-run", appName, st.Kind))
	}
}
