package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/contentaudit/pkg/observability"
)

// debugHooks logs observability events at debug level. It is registered
// when --verbose is set.
type debugHooks struct {
	logger *log.Logger
}

func registerDebugHooks(l *log.Logger) {
	h := debugHooks{logger: l.WithPrefix("trace")}
	observability.SetReportHooks(h)
	observability.SetDeleteHooks(h)
	observability.SetHTTPHooks(h)
}

func (h debugHooks) OnReportStart(_ context.Context, kind string, gen uint64) {
	h.logger.Debug("report started", "kind", kind, "generation", gen)
}

func (h debugHooks) OnReportComplete(_ context.Context, kind string, gen uint64, unused int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("report failed", "kind", kind, "generation", gen, "error", err)
		return
	}
	h.logger.Debug("report complete", "kind", kind, "generation", gen, "unused", unused, "elapsed", d.Round(time.Millisecond))
}

func (h debugHooks) OnReportDiscarded(_ context.Context, kind string, gen uint64) {
	h.logger.Debug("stale report discarded", "kind", kind, "generation", gen)
}

func (h debugHooks) OnProbe(_ context.Context, kind, id string, used bool, err error) {
	if err != nil {
		h.logger.Debug("probe failed", "kind", kind, "id", id, "error", err)
		return
	}
	h.logger.Debug("probe", "kind", kind, "id", id, "used", used)
}

func (h debugHooks) OnUnpublish(_ context.Context, kind, id string, err error) {
	h.logger.Debug("unpublish", "kind", kind, "id", id, "error", err)
}

func (h debugHooks) OnDelete(_ context.Context, kind, id string, err error) {
	h.logger.Debug("delete", "kind", kind, "id", id, "error", err)
}

func (h debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("→ request", "method", method, "host", host, "path", path)
}

func (h debugHooks) OnResponse(_ context.Context, method, _ string, path string, status int, d time.Duration) {
	h.logger.Debug("← response", "method", method, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h debugHooks) OnError(_ context.Context, method, _ string, path string, err error) {
	h.logger.Debug("request error", "method", method, "path", path, "error", err)
}

func (h debugHooks) OnRetry(_ context.Context, method, path string, attempt int, wait time.Duration, err error) {
	h.logger.Debug("retrying", "method", method, "path", path, "attempt", attempt, "wait", wait, "error", err)
}
