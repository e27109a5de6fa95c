package audit

import (
	"strings"

	"github.com/matzehuels/contentaudit/pkg/content"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
)

// Mode selects how entry references are counted.
type Mode string

const (
	// ModeDirect counts an entry as used when any entry links to it.
	ModeDirect Mode = "direct"
	// ModeReachable counts an entry as used when it is reachable from a root entry.
	ModeReachable Mode = "reachable"
)

// Default option values.
const (
	DefaultConcurrency = 1
	MaxConcurrency     = 8
	DefaultPageSize    = content.MaxPageSize
)

// DefaultExcludeSubstrings is the content-type guard applied when none is configured.
var DefaultExcludeSubstrings = []string{"page"}

// ParseMode converts a configuration string to a Mode. Empty means ModeDirect.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDirect:
		return ModeDirect, nil
	case ModeReachable:
		return ModeReachable, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeInvalidInput, "unknown mode %q (want direct or reachable)", s)
	}
}

// Options configures an [Auditor].
type Options struct {
	Mode Mode

	// ExcludeSubstrings lists lowercase substrings of content type ids that
	// are never reported unused.
	ExcludeSubstrings []string

	// Concurrency bounds in-flight existence probes (1..MaxConcurrency).
	Concurrency int

	// PageSize is the entry page size used while collecting the graph.
	PageSize int

	// SinglePage stops entry collection after the first page.
	SinglePage bool

	// Locale is used for display names.
	Locale string
}

// WithDefaults returns a copy of Options with zero values replaced by defaults
// and out-of-range values clamped.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Mode == "" {
		opts.Mode = ModeDirect
	}
	if opts.ExcludeSubstrings == nil {
		opts.ExcludeSubstrings = DefaultExcludeSubstrings
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	opts.Concurrency = min(opts.Concurrency, MaxConcurrency)
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	opts.PageSize = min(opts.PageSize, content.MaxPageSize)
	if opts.Locale == "" {
		opts.Locale = content.DefaultLocale
	}
	return opts
}

// Validate reports option values that cannot be clamped.
func (o Options) Validate() error {
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return err
	}
	if o.Concurrency > MaxConcurrency {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "concurrency %d exceeds %d", o.Concurrency, MaxConcurrency)
	}
	return nil
}
