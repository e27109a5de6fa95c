// Package observability lets front ends watch what the engine does without
// the engine knowing who is watching.
//
// Three hook sets cover the observable work:
//
//   - [ReportHooks]: report runs, stale results and per-record existence probes
//   - [DeleteHooks]: each unpublish and delete call of a bulk deletion
//   - [HTTPHooks]: every Content Management API request, response and retry
//
// Every set has a no-op implementation, which is what the getters return
// until something is registered. The CLI registers a debug logger under
// --verbose:
//
//	observability.SetHTTPHooks(myHooks)
//	defer observability.Reset()
//
// Emitters fetch the current set at the call site:
//
//	observability.Report().OnReportStart(ctx, "entries", generation)
//
// Registration swaps an immutable snapshot, so emitters never block each
// other and a hook set is never observed half-registered.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// ReportHooks receives events from report generation.
type ReportHooks interface {
	OnReportStart(ctx context.Context, kind string, generation uint64)
	// OnReportComplete fires once per applied run. err is set for failed runs.
	OnReportComplete(ctx context.Context, kind string, generation uint64, unused int, duration time.Duration, err error)
	// OnReportDiscarded fires when a run finishes after a newer one started.
	OnReportDiscarded(ctx context.Context, kind string, generation uint64)
	// OnProbe fires after one existence probe for a content type or asset.
	OnProbe(ctx context.Context, kind, id string, used bool, err error)
}

// DeleteHooks receives events from bulk deletion.
type DeleteHooks interface {
	OnUnpublish(ctx context.Context, kind, id string, err error)
	OnDelete(ctx context.Context, kind, id string, err error)
}

// HTTPHooks receives events from the API client.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError reports a transport failure; no response was received.
	OnError(ctx context.Context, method, host, path string, err error)
	// OnRetry fires before the client sleeps ahead of attempt number attempt.
	OnRetry(ctx context.Context, method, path string, attempt int, wait time.Duration, err error)
}

// NoopReportHooks ignores every report event.
type NoopReportHooks struct{}

func (NoopReportHooks) OnReportStart(context.Context, string, uint64)                               {}
func (NoopReportHooks) OnReportComplete(context.Context, string, uint64, int, time.Duration, error) {}
func (NoopReportHooks) OnReportDiscarded(context.Context, string, uint64)                           {}
func (NoopReportHooks) OnProbe(context.Context, string, string, bool, error)                        {}

// NoopDeleteHooks ignores every delete event.
type NoopDeleteHooks struct{}

func (NoopDeleteHooks) OnUnpublish(context.Context, string, string, error) {}
func (NoopDeleteHooks) OnDelete(context.Context, string, string, error)    {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
func (NoopHTTPHooks) OnRetry(context.Context, string, string, int, time.Duration, error)     {}

// registry is one immutable set of registered hooks.
type registry struct {
	report ReportHooks
	delete DeleteHooks
	http   HTTPHooks
}

func defaults() *registry {
	return &registry{report: NoopReportHooks{}, delete: NoopDeleteHooks{}, http: NoopHTTPHooks{}}
}

var current atomic.Pointer[registry]

func init() { current.Store(defaults()) }

// update applies fn to a copy of the registry and publishes the copy.
func update(fn func(*registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetReportHooks registers h for report events. A nil h is ignored.
func SetReportHooks(h ReportHooks) {
	if h != nil {
		update(func(r *registry) { r.report = h })
	}
}

// SetDeleteHooks registers h for delete events. A nil h is ignored.
func SetDeleteHooks(h DeleteHooks) {
	if h != nil {
		update(func(r *registry) { r.delete = h })
	}
}

// SetHTTPHooks registers h for HTTP events. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Report returns the registered report hooks.
func Report() ReportHooks { return current.Load().report }

// Delete returns the registered delete hooks.
func Delete() DeleteHooks { return current.Load().delete }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks. Tests that register hooks defer it.
func Reset() { current.Store(defaults()) }
