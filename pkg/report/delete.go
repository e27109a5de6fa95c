package report

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/contentaudit/pkg/content"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/observability"
)

// Outcome is the result of deleting one record.
type Outcome struct {
	ID          string `json:"id"`
	Succeeded   bool   `json:"succeeded"`
	Unpublished bool   `json:"unpublished,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Err         error  `json:"-"`
}

// DeleteResult collects the outcomes of one batch in input order.
type DeleteResult struct {
	Kind     Kind      `json:"kind"`
	DryRun   bool      `json:"dry_run"`
	Outcomes []Outcome `json:"outcomes"`
}

// Succeeded returns the number of records deleted (or that would be, in a dry run).
func (r *DeleteResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that did not succeed.
func (r *DeleteResult) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Succeeded {
			out = append(out, o)
		}
	}
	return out
}

// Deleter removes entries and assets one at a time.
type Deleter struct {
	w      content.Writer
	logger *log.Logger
}

// NewDeleter creates a Deleter. A nil logger uses log.Default().
func NewDeleter(w content.Writer, logger *log.Logger) *Deleter {
	if logger == nil {
		logger = log.Default()
	}
	return &Deleter{w: w, logger: logger}
}

// DeleteEntries deletes each entry in ids. Published entries are
// unpublished first. In a dry run records are fetched but not changed.
func (d *Deleter) DeleteEntries(ctx context.Context, ids []string, dryRun bool) *DeleteResult {
	return d.run(ctx, KindEntries, ids, dryRun, func(ctx context.Context, id string) (bool, error) {
		e, err := d.w.GetEntry(ctx, id)
		if err != nil {
			return false, err
		}
		published := e.Sys.IsPublished()
		if dryRun {
			return published, nil
		}
		if published {
			updated, err := d.w.UnpublishEntry(ctx, e)
			observability.Delete().OnUnpublish(ctx, string(KindEntries), id, err)
			if err != nil {
				return false, apperrors.Wrap(unpublishCode(err), err, "unpublish entry %s", id)
			}
			// Deleting needs the version the unpublish produced.
			if updated == nil || updated.Sys.Version == 0 {
				c := *e
				c.Sys.Version++
				updated = &c
			}
			e = updated
		}
		return published, d.w.DeleteEntry(ctx, e)
	})
}

// DeleteAssets deletes each asset in ids. Published assets are
// unpublished first.
func (d *Deleter) DeleteAssets(ctx context.Context, ids []string, dryRun bool) *DeleteResult {
	return d.run(ctx, KindMedia, ids, dryRun, func(ctx context.Context, id string) (bool, error) {
		a, err := d.w.GetAsset(ctx, id)
		if err != nil {
			return false, err
		}
		published := a.Sys.IsPublished()
		if dryRun {
			return published, nil
		}
		if published {
			updated, err := d.w.UnpublishAsset(ctx, a)
			observability.Delete().OnUnpublish(ctx, string(KindMedia), id, err)
			if err != nil {
				return false, apperrors.Wrap(unpublishCode(err), err, "unpublish asset %s", id)
			}
			if updated == nil || updated.Sys.Version == 0 {
				c := *a
				c.Sys.Version++
				updated = &c
			}
			a = updated
		}
		return published, d.w.DeleteAsset(ctx, a)
	})
}

// unpublishCode keeps the code of a coded unpublish error.
func unpublishCode(err error) apperrors.Code {
	if code := apperrors.GetCode(err); code != "" {
		return code
	}
	return apperrors.ErrCodeInternal
}

func (d *Deleter) run(ctx context.Context, kind Kind, ids []string, dryRun bool,
	remove func(context.Context, string) (bool, error),
) *DeleteResult {
	res := &DeleteResult{Kind: kind, DryRun: dryRun, Outcomes: make([]Outcome, 0, len(ids))}
	start := time.Now()

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			res.Outcomes = append(res.Outcomes, Outcome{ID: id, Reason: err.Error(), Err: err})
			continue
		}
		unpublished, err := remove(ctx, id)
		if !dryRun {
			observability.Delete().OnDelete(ctx, string(kind), id, err)
		}
		out := Outcome{ID: id, Succeeded: err == nil, Unpublished: unpublished, Err: err}
		if err != nil {
			out.Reason = err.Error()
			d.logger.Warn("delete failed", "kind", kind, "id", id, "err", err)
		} else {
			d.logger.Debug("deleted", "kind", kind, "id", id, "unpublished", unpublished, "dry_run", dryRun)
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	d.logger.Info("delete batch finished",
		"kind", kind,
		"requested", len(ids),
		"succeeded", res.Succeeded(),
		"dry_run", dryRun,
		"duration", time.Since(start))
	return res
}
