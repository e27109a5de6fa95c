package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// timeFormat renders log timestamps as 14:32:01.45.
const timeFormat = "15:04:05.00"

// newLogger creates the command logger. Debug level also reports the
// caller, which helps when following a report through the packages.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      timeFormat,
		Level:           level,
	})
}

// progress times one operation against a space, such as a report run or
// a graph build. Key/value pairs passed to newProgress are repeated on the
// completion line.
type progress struct {
	logger  *log.Logger
	start   time.Time
	keyvals []any
}

func newProgress(l *log.Logger, keyvals ...any) *progress {
	return &progress{logger: l, start: time.Now(), keyvals: keyvals}
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg at info level with the elapsed time.
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, p.fields(keyvals)...)
}

// failed logs msg at debug level. The error itself reaches the user
// through main, so it is not repeated at a higher level here.
func (p *progress) failed(msg string, err error) {
	p.logger.Debug(msg, p.fields([]any{"err", err})...)
}

func (p *progress) fields(extra []any) []any {
	out := make([]any, 0, len(p.keyvals)+len(extra)+2)
	out = append(out, p.keyvals...)
	out = append(out, extra...)
	return append(out, "elapsed", p.elapsed())
}

type logCtxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, logCtxKey{}, l)
}

// loggerFromContext returns the logger installed by the root command, or
// log.Default() when the command runs outside it.
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(logCtxKey{}).(*log.Logger); ok {
			return l
		}
	}
	return log.Default()
}
