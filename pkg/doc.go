// Package pkg provides the core libraries for contentaudit, a tool that finds
// and removes unused content in a Contentful space.
//
// # Overview
//
// A record is unused when nothing in the space points at it: an entry no
// other entry links to, a content type without entries, an asset no entry
// links to. The pkg directory is organized into four areas:
//
//  1. [content] and [contentful] - The record model and the management API client
//  2. [refgraph] and [audit] - The reference graph and the unused-record detectors
//  3. [report] - Report state, paging, selection and bulk deletion
//  4. [export] - JSON, CSV and graph output
//
// # Architecture
//
// The typical data flow:
//
//	Content Management API
//	         ↓
//	    [contentful] package (paged listing, retries, typed errors)
//	         ↓
//	    [refgraph] package (entry → entry and entry → asset links)
//	         ↓
//	    [audit] package (unused entries, content types, assets)
//	         ↓
//	    [report] package (orchestrator: generation, view, selection, delete)
//	         ↓
//	    table / TUI / HTTP API / JSON / CSV / DOT / SVG
//
// # Quick Start
//
// Find unused entries:
//
//	client, _ := contentful.NewClient(contentful.Config{
//	    Token:   os.Getenv("CONTENTFUL_MANAGEMENT_TOKEN"),
//	    SpaceID: "abc123",
//	})
//	a := audit.New(client, audit.Options{}, log.Default())
//	rep, _ := a.UnusedEntries(ctx, "")
//	for _, e := range rep.Entries {
//	    fmt.Println(e.ID(), e.ContentTypeID())
//	}
//
// Review and delete through the orchestrator:
//
//	orch := report.NewOrchestrator(report.AuditDetector{Auditor: a}, report.NewDeleter(client, nil), nil)
//	_, _ = orch.Generate(ctx, report.KindEntries, "")
//	orch.TogglePage(report.View{PageSize: 20})
//	res, _ := orch.DeleteSelected(ctx, true) // dry run
//
// # Main Packages
//
// [content] - Entries, assets, content types and the Reader/Writer interfaces
// the detectors and the deleter depend on. [content.Memory] is an in-memory
// implementation for tests.
//
// [contentful] - Content Management API client. Lists page by page, retries
// reads on 5xx and every call on 429, and maps statuses to coded errors.
//
// [refgraph] - Directed graph of entry links built from entry fields, with
// reachability, dangling-link detection and Graphviz export.
//
// [audit] - Detectors for the three kinds of unused record. Existence probes
// for content types and assets run with bounded concurrency.
//
// [report] - The orchestrator behind every front end: one current report,
// generation counters that discard stale results, search and paging views,
// a selection, and deletion that unpublishes first.
//
// [export] - Report documents as JSON or CSV and the graph as JSON, written
// atomically to files.
//
// ## Infrastructure
//
// [errors] - Coded errors shared by every layer, mapped to HTTP statuses.
//
// [httputil] - Retry with exponential backoff and Retry-After support.
//
// [observability] - Hooks for report, deletion and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/audit/...      # Specific package
//	go test -run Example ./...   # Examples only
//
// [content]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/content
// [contentful]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/contentful
// [refgraph]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/refgraph
// [audit]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/audit
// [report]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/report
// [export]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/export
// [errors]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/buildinfo
// [content.Memory]: https://pkg.go.dev/github.com/matzehuels/contentaudit/pkg/content#Memory
package pkg
