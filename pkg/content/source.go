package content

import "context"

// MaxPageSize is the largest page the platform returns for a collection request.
const MaxPageSize = 1000

// EntryQuery selects entries from a [Reader].
// Zero values mean "no filter"; Limit 0 lets the source pick its default.
type EntryQuery struct {
	ContentType  string // content_type filter
	LinksToAsset string // entries linking to this asset id
	Skip         int
	Limit        int
}

// EntryPage is one page of a collection response.
type EntryPage struct {
	Items []Entry
	Total int
	Skip  int
	Limit int
}

// Reader exposes the read side of the content platform.
type Reader interface {
	// ListEntries returns one page of entries matching q.
	ListEntries(ctx context.Context, q EntryQuery) (*EntryPage, error)

	// ListContentTypes returns every content type in the environment.
	ListContentTypes(ctx context.Context) ([]ContentType, error)

	// ListAssets returns every asset in the environment.
	ListAssets(ctx context.Context) ([]Asset, error)
}

// Writer exposes the record operations used to remove content.
// Unpublish and Delete take the record so implementations can send its
// current version; both return the updated record metadata.
type Writer interface {
	GetEntry(ctx context.Context, id string) (*Entry, error)
	UnpublishEntry(ctx context.Context, e *Entry) (*Entry, error)
	DeleteEntry(ctx context.Context, e *Entry) error

	GetAsset(ctx context.Context, id string) (*Asset, error)
	UnpublishAsset(ctx context.Context, a *Asset) (*Asset, error)
	DeleteAsset(ctx context.Context, a *Asset) error
}

// Source is the full content platform contract, scoped to one space and
// environment.
type Source interface {
	Reader
	Writer
}

// HasAnyEntry runs an existence probe: a limit-1 query that only reports
// whether a matching entry exists.
func HasAnyEntry(ctx context.Context, r Reader, q EntryQuery) (bool, error) {
	q.Skip, q.Limit = 0, 1
	page, err := r.ListEntries(ctx, q)
	if err != nil {
		return false, err
	}
	return len(page.Items) > 0, nil
}
