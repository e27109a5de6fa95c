package report

import (
	"slices"
	"strings"

	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
)

// PageSizes are the page sizes a view may use.
var PageSizes = []int{20, 50, 100}

// DefaultPageSize is the page size of a new view.
const DefaultPageSize = 20

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool { return slices.Contains(PageSizes, n) }

// View is a search query plus a page position over report items.
type View struct {
	Query    string `json:"q"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Page is the result of applying a View.
type Page struct {
	Items     []Item `json:"items"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	PageCount int    `json:"page_count"`
	Total     int    `json:"total"` // items matching the query
}

// IDs returns the ids on the page in display order.
func (p Page) IDs() []string {
	ids := make([]string, len(p.Items))
	for i, it := range p.Items {
		ids[i] = it.ID
	}
	return ids
}

// Filter returns items whose name contains query, case-insensitively.
// An empty query matches everything. When nothing matches the result is an
// empty, non-nil slice, so exports encode it as [].
func Filter(items []Item, query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := []Item{}
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

// PageCount returns the number of pages n items fill. It is at least 1.
func PageCount(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return max(1, (n+size-1)/size)
}

// Apply filters items and returns the page the view points at. Pages past
// the end are clamped to the last page and negative pages to the first.
func (v View) Apply(items []Item) Page {
	size := v.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	filtered := Filter(items, v.Query)
	count := PageCount(len(filtered), size)
	page := min(max(v.Page, 0), count-1)

	start := min(page*size, len(filtered))
	end := min(start+size, len(filtered))
	return Page{
		Items:     slices.Clone(filtered[start:end]),
		Page:      page,
		PageSize:  size,
		PageCount: count,
		Total:     len(filtered),
	}
}

// WithPageSize returns the view with a new page size, moved to the page
// that keeps the first visible item in view.
func (v View) WithPageSize(size int) (View, error) {
	if !ValidPageSize(size) {
		return v, apperrors.New(apperrors.ErrCodeInvalidInput, "page size %d not in %v", size, PageSizes)
	}
	old := v.PageSize
	if old <= 0 {
		old = DefaultPageSize
	}
	v.Page = (old*max(v.Page, 0) + 1) / size
	v.PageSize = size
	return v, nil
}

// WithQuery returns the view with a new query, back on the first page.
func (v View) WithQuery(q string) View {
	v.Query = q
	v.Page = 0
	return v
}
