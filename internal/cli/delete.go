package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/report"
)

// deleteOpts holds the delete command flags.
type deleteOpts struct {
	allUnused   bool
	dryRun      bool
	yes         bool
	contentType string
	query       string
}

// deleteCommand creates the delete command.
func (c *CLI) deleteCommand() *cobra.Command {
	var opts deleteOpts

	cmd := &cobra.Command{
		Use:   "delete <entries|media> [ids...]",
		Short: "Delete unused entries or assets",
		Long: `Delete records found by the matching report.

The report is generated first and only ids it lists can be deleted, so a
record that became linked in the meantime is refused. Published records
are unpublished before they are deleted. Failures do not stop the batch.`,
		Example: `  contentaudit delete entries --all-unused --dry-run
  contentaudit delete media 4xJ8gP1mUUq2CAyk6qkQwK --yes
  contentaudit delete entries --all-unused --content-type teaser --query old`,
		ValidArgs: []string{string(report.KindEntries), string(report.KindMedia)},
		Args:      cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := report.ParseKind(args[0])
			if err != nil {
				return err
			}
			if !kind.Deletable() {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "%s cannot be deleted", kindNoun(kind))
			}
			ids := args[1:]
			switch {
			case opts.allUnused && len(ids) > 0:
				return apperrors.New(apperrors.ErrCodeInvalidInput, "pass ids or --all-unused, not both")
			case !opts.allUnused && len(ids) == 0:
				return apperrors.New(apperrors.ErrCodeInvalidInput, "pass the ids to delete or --all-unused")
			}
			label := "entry"
			if kind == report.KindMedia {
				label = "asset"
			}
			if err := apperrors.ValidateIDs(label, ids); err != nil {
				return err
			}
			return c.runDelete(cmd, kind, ids, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.allUnused, "all-unused", false, "delete every record in the report")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "show what would be deleted without changing anything")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().StringVarP(&opts.contentType, "content-type", "t", "", "restrict the entries report to this content type")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "with --all-unused, only records whose name contains this text")
	_ = cmd.RegisterFlagCompletionFunc("content-type", c.completeContentTypes)

	return cmd
}

func (c *CLI) runDelete(cmd *cobra.Command, kind report.Kind, ids []string, opts deleteOpts) error {
	if opts.contentType != "" && kind != report.KindEntries {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "--content-type only applies to entries")
	}

	s, err := c.newSession(cmd)
	if err != nil {
		return err
	}
	st, err := c.generate(cmd, s, kind, opts.contentType)
	if err != nil {
		return err
	}

	if opts.allUnused {
		ids = nil
		for _, it := range report.Filter(st.Items(), opts.query) {
			ids = append(ids, it.ID)
		}
	}
	if len(ids) == 0 {
		printSuccess("Nothing to delete")
		return nil
	}
	for _, id := range ids {
		if s.orch.IsSelected(id) {
			continue
		}
		if _, err := s.orch.Toggle(id); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "%s is not an unused %s", id, strings.TrimSuffix(kindNoun(kind), "s"))
		}
	}

	selected := selectedItems(st.Items(), s.orch.Selected())
	printNewline()
	fmt.Fprintln(output, StyleTitle.Render(fmt.Sprintf("%d %s selected", len(selected), kindNoun(kind))))
	fmt.Fprintln(output, itemsTable(kind, selected, nil, -1, time.Now()))

	if !opts.dryRun && !opts.yes {
		ok, err := confirm(cmd.InOrStdin(), fmt.Sprintf("Delete %d %s from %s?", len(selected), kindNoun(kind), s.cfg.Target()))
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted, nothing was deleted")
			return nil
		}
	}

	msg := fmt.Sprintf("Deleting %d %s...", len(selected), kindNoun(kind))
	if opts.dryRun {
		msg = "Checking records..."
	}
	var res *report.DeleteResult
	err = c.spin(cmd, msg, func() (err error) {
		res, err = s.orch.DeleteSelected(cmd.Context(), opts.dryRun)
		return err
	})
	if res != nil {
		printOutcomes(res)
	}
	if err != nil {
		return err
	}
	if failed := res.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d deletions failed", len(failed), len(res.Outcomes))
	}
	return nil
}

// selectedItems returns the items whose ids are in ids, in ids order.
func selectedItems(items []report.Item, ids []string) []report.Item {
	byID := make(map[string]report.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make([]report.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

// printOutcomes prints one line per record and a summary.
func printOutcomes(res *report.DeleteResult) {
	printNewline()
	for _, o := range res.Outcomes {
		switch {
		case !o.Succeeded:
			printError("%s %s", o.ID, StyleDim.Render(o.Reason))
		case res.DryRun && o.Unpublished:
			printInfo("%s would be unpublished and deleted", o.ID)
		case res.DryRun:
			printInfo("%s would be deleted", o.ID)
		case o.Unpublished:
			printSuccess("%s unpublished and deleted", o.ID)
		default:
			printSuccess("%s deleted", o.ID)
		}
	}

	noun := kindNoun(res.Kind)
	if res.DryRun {
		printDetail("dry run: %d of %d %s can be deleted", res.Succeeded(), len(res.Outcomes), noun)
		return
	}
	printDetail("%d of %d %s deleted", res.Succeeded(), len(res.Outcomes), noun)
}

// confirm asks a yes/no question on r; anything but y or yes is no.
func confirm(r io.Reader, question string) (bool, error) {
	fmt.Fprint(output, statusIcons[iconWarning].Render(iconWarning)+" "+question+" "+StyleDim.Render("[y/N]")+" ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
