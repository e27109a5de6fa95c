package report

import (
	"context"

	"github.com/matzehuels/contentaudit/pkg/audit"
	"github.com/matzehuels/contentaudit/pkg/refgraph"
)

// Result is the output of one detector run.
type Result struct {
	Items     []Item
	Failures  []audit.Failure
	Scanned   int
	Total     int
	Truncated bool
	Graph     *refgraph.Graph // entries reports only
}

// Detector produces the unused items of a report kind.
type Detector interface {
	Detect(ctx context.Context, kind Kind, contentType string) (*Result, error)
}

// AuditDetector adapts an [audit.Auditor] to [Detector].
type AuditDetector struct {
	Auditor *audit.Auditor
}

// Detect runs the auditor check for kind.
func (d AuditDetector) Detect(ctx context.Context, kind Kind, contentType string) (*Result, error) {
	locale := d.Auditor.Options().Locale
	switch kind {
	case KindEntries:
		rep, err := d.Auditor.UnusedEntries(ctx, contentType)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(rep.Entries))
		for i := range rep.Entries {
			items[i] = EntryItem(&rep.Entries[i], locale)
		}
		return &Result{Items: items, Scanned: rep.Scanned, Total: rep.Total, Truncated: rep.Truncated, Graph: rep.Graph}, nil

	case KindMedia:
		rep, err := d.Auditor.UnusedAssets(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(rep.Assets))
		for i := range rep.Assets {
			items[i] = AssetItem(&rep.Assets[i], locale)
		}
		return &Result{Items: items, Failures: rep.Failures, Scanned: rep.Probed, Total: rep.Probed}, nil

	case KindTypes:
		rep, err := d.Auditor.UnusedContentTypes(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(rep.ContentTypes))
		for i := range rep.ContentTypes {
			items[i] = TypeItem(&rep.ContentTypes[i])
		}
		return &Result{Items: items, Failures: rep.Failures, Scanned: rep.Probed, Total: rep.Probed}, nil
	}
	_, err := ParseKind(string(kind))
	return nil, err
}
