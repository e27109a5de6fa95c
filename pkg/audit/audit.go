package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/contentaudit/pkg/content"
	"github.com/matzehuels/contentaudit/pkg/observability"
	"github.com/matzehuels/contentaudit/pkg/refgraph"
)

// Probe kinds passed to observability hooks.
const (
	probeContentType = "content_type"
	probeAsset       = "asset"
)

// Failure is a record whose probe failed. Its usage is unknown.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// EntriesReport is the result of [Auditor.UnusedEntries].
type EntriesReport struct {
	Entries   []content.Entry
	Graph     *refgraph.Graph
	Scanned   int  // entries collected into the graph
	Total     int  // total entries reported by the source
	Truncated bool // collection stopped before Total
}

// TypesReport is the result of [Auditor.UnusedContentTypes].
type TypesReport struct {
	ContentTypes []content.ContentType
	Probed       int
	Failures     []Failure
}

// AssetsReport is the result of [Auditor.UnusedAssets].
type AssetsReport struct {
	Assets   []content.Asset
	Probed   int
	Failures []Failure
}

// Auditor runs unused-content detection against one content source.
// It holds no per-run state and is safe for concurrent use.
type Auditor struct {
	src    content.Reader
	opts   Options
	logger *log.Logger
}

// New creates an Auditor. A nil logger uses log.Default().
func New(src content.Reader, opts Options, logger *log.Logger) *Auditor {
	if logger == nil {
		logger = log.Default()
	}
	return &Auditor{src: src, opts: opts.WithDefaults(), logger: logger}
}

// Options returns the effective options.
func (a *Auditor) Options() Options { return a.opts }

// CollectEntries pages through entries until the source's total is reached
// (or after one page when SinglePage is set).
func (a *Auditor) CollectEntries(ctx context.Context) (entries []content.Entry, total int, err error) {
	skip := 0
	for {
		page, err := a.src.ListEntries(ctx, content.EntryQuery{Skip: skip, Limit: a.opts.PageSize})
		if err != nil {
			return nil, 0, fmt.Errorf("list entries (skip %d): %w", skip, err)
		}
		entries = append(entries, page.Items...)
		total = page.Total
		skip += len(page.Items)
		a.logger.Debug("collected entries", "count", len(entries), "total", total)
		if a.opts.SinglePage || len(page.Items) == 0 || skip >= total {
			return entries, total, nil
		}
	}
}

// UnusedEntries builds the reference graph over every entry and returns the
// unused ones. A non-empty contentType restricts the result to entries of
// that type; references from all types still count.
func (a *Auditor) UnusedEntries(ctx context.Context, contentType string) (*EntriesReport, error) {
	start := time.Now()
	entries, total, err := a.CollectEntries(ctx)
	if err != nil {
		return nil, err
	}

	g := refgraph.Build(entries, a.opts.Locale)
	used := UsedSet(g, a.opts.Mode, a.opts.ExcludeSubstrings)

	candidates := entries
	if contentType != "" {
		candidates = nil
		for _, e := range entries {
			if e.ContentTypeID() == contentType {
				candidates = append(candidates, e)
			}
		}
	}
	unused := Classify(candidates, used, a.opts.ExcludeSubstrings)

	a.logger.Info("classified entries",
		"scanned", len(entries),
		"unused", len(unused),
		"edges", g.EdgeCount(),
		"mode", a.opts.Mode,
		"duration", time.Since(start))

	return &EntriesReport{
		Entries:   unused,
		Graph:     g,
		Scanned:   len(entries),
		Total:     total,
		Truncated: len(entries) < total,
	}, nil
}

// UnusedContentTypes returns content types with no entries.
func (a *Auditor) UnusedContentTypes(ctx context.Context) (*TypesReport, error) {
	types, err := a.src.ListContentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content types: %w", err)
	}

	unused, failures, err := probeAll(ctx, a, probeContentType, types,
		func(ct *content.ContentType) string { return ct.ID() },
		func(ctx context.Context, ct *content.ContentType) (bool, error) {
			return content.HasAnyEntry(ctx, a.src, content.EntryQuery{ContentType: ct.ID()})
		})
	if err != nil {
		return nil, err
	}
	return &TypesReport{ContentTypes: unused, Probed: len(types), Failures: failures}, nil
}

// UnusedAssets returns assets no entry links to.
func (a *Auditor) UnusedAssets(ctx context.Context) (*AssetsReport, error) {
	assets, err := a.src.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	unused, failures, err := probeAll(ctx, a, probeAsset, assets,
		func(as *content.Asset) string { return as.ID() },
		func(ctx context.Context, as *content.Asset) (bool, error) {
			return content.HasAnyEntry(ctx, a.src, content.EntryQuery{LinksToAsset: as.ID()})
		})
	if err != nil {
		return nil, err
	}
	return &AssetsReport{Assets: unused, Probed: len(assets), Failures: failures}, nil
}

type probeResult struct {
	used bool
	err  error
}

// probeAll runs probe for every item with at most Concurrency in flight.
// Results keep input order. Probe errors are collected per item; only
// context cancellation aborts the run.
func probeAll[T any](ctx context.Context, a *Auditor, kind string, items []T,
	id func(*T) string, probe func(context.Context, *T) (bool, error),
) ([]T, []Failure, error) {
	results := make([]probeResult, len(items))
	hooks := observability.Report()

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			item := &items[i]
			used, err := probe(ctx, item)
			results[i] = probeResult{used: used, err: err}
			hooks.OnProbe(ctx, kind, id(item), used, err)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var unused []T
	var failures []Failure
	for i := range items {
		r := results[i]
		switch {
		case r.err != nil:
			a.logger.Warn("probe failed", "kind", kind, "id", id(&items[i]), "err", r.err)
			failures = append(failures, Failure{ID: id(&items[i]), Reason: r.err.Error(), Err: r.err})
		case !r.used:
			unused = append(unused, items[i])
		}
	}
	a.logger.Info("probed records", "kind", kind, "probed", len(items), "unused", len(unused), "failed", len(failures))
	return unused, failures, nil
}
