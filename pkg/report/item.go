package report

import (
	"strings"
	"time"

	"github.com/matzehuels/contentaudit/pkg/content"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
)

// Kind identifies a report.
type Kind string

const (
	KindEntries Kind = "entries"
	KindMedia   Kind = "media"
	KindTypes   Kind = "types"
)

// Kinds lists every report kind.
var Kinds = []Kind{KindEntries, KindMedia, KindTypes}

// ParseKind converts a user-supplied name to a Kind.
// "assets" is accepted for media and "content-types" for types.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entries", "entry":
		return KindEntries, nil
	case "media", "assets", "asset":
		return KindMedia, nil
	case "types", "content-types", "content_types":
		return KindTypes, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeInvalidKind, "unknown report %q (want entries, media or types)", s)
	}
}

// Deletable reports whether records of this kind can be deleted.
func (k Kind) Deletable() bool { return k == KindEntries || k == KindMedia }

// Status is the lifecycle state of the current report.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Item is one row of a report, whatever its kind.
type Item struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ContentType string     `json:"content_type,omitempty"`
	Status      string     `json:"status,omitempty"`
	FileName    string     `json:"file_name,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// EntryItem converts an entry to a report row.
func EntryItem(e *content.Entry, locale string) Item {
	return Item{
		ID:          e.ID(),
		Name:        e.DisplayName(locale),
		ContentType: e.ContentTypeID(),
		Status:      e.Sys.Status(locale),
		UpdatedAt:   e.Sys.UpdatedAt,
	}
}

// AssetItem converts an asset to a report row.
func AssetItem(a *content.Asset, locale string) Item {
	return Item{
		ID:        a.ID(),
		Name:      a.Title(locale),
		Status:    a.Sys.Status(locale),
		FileName:  a.FileName(locale),
		UpdatedAt: a.Sys.UpdatedAt,
	}
}

// TypeItem converts a content type to a report row.
func TypeItem(ct *content.ContentType) Item {
	name := ct.Name
	if name == "" {
		name = ct.ID()
	}
	return Item{ID: ct.ID(), Name: name, UpdatedAt: ct.Sys.UpdatedAt}
}
