package contentful

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/contentaudit/pkg/content"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
)

// defaultPageSize is used for ListEntries queries that don't set a limit.
const defaultPageSize = 100

// collection is the envelope of every collection response.
type collection[T any] struct {
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Items []T `json:"items"`
}

// ListEntries returns one page of entries matching q, ordered by creation
// time so skip-based paging is stable.
func (c *Client) ListEntries(ctx context.Context, q content.EntryQuery) (*content.EntryPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, content.MaxPageSize)

	params := url.Values{}
	params.Set("skip", strconv.Itoa(q.Skip))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "sys.createdAt")
	if q.ContentType != "" {
		params.Set("content_type", q.ContentType)
	}
	if q.LinksToAsset != "" {
		params.Set("links_to_asset", q.LinksToAsset)
	}

	var resp collection[content.Entry]
	if err := c.do(ctx, request{method: http.MethodGet, path: c.envPath("entries"), query: params}, &resp); err != nil {
		return nil, err
	}
	return &content.EntryPage{Items: resp.Items, Total: resp.Total, Skip: resp.Skip, Limit: resp.Limit}, nil
}

// ListContentTypes returns every content type in the environment.
func (c *Client) ListContentTypes(ctx context.Context) ([]content.ContentType, error) {
	return listAll[content.ContentType](ctx, c, "content_types")
}

// ListAssets returns every asset in the environment.
func (c *Client) ListAssets(ctx context.Context) ([]content.Asset, error) {
	return listAll[content.Asset](ctx, c, "assets")
}

// listAll walks a collection endpoint until skip reaches total.
func listAll[T any](ctx context.Context, c *Client, resource string) ([]T, error) {
	var all []T
	skip := 0
	for {
		params := url.Values{}
		params.Set("skip", strconv.Itoa(skip))
		params.Set("limit", strconv.Itoa(content.MaxPageSize))
		params.Set("order", "sys.createdAt")

		var resp collection[T]
		if err := c.do(ctx, request{method: http.MethodGet, path: c.envPath(resource), query: params}, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)
		skip += len(resp.Items)
		if len(resp.Items) == 0 || skip >= resp.Total {
			return all, nil
		}
	}
}

// GetEntry fetches the live entry with the given id.
func (c *Client) GetEntry(ctx context.Context, id string) (*content.Entry, error) {
	if err := apperrors.ValidateID("entry", id); err != nil {
		return nil, err
	}
	var e content.Entry
	if err := c.do(ctx, request{method: http.MethodGet, path: c.envPath("entries", id)}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UnpublishEntry moves e out of its published state and returns the
// updated entry.
func (c *Client) UnpublishEntry(ctx context.Context, e *content.Entry) (*content.Entry, error) {
	var out content.Entry
	r := request{method: http.MethodDelete, path: c.envPath("entries", e.ID(), "published"), version: e.Sys.Version}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEntry deletes e. The platform rejects deleting published entries.
func (c *Client) DeleteEntry(ctx context.Context, e *content.Entry) error {
	r := request{method: http.MethodDelete, path: c.envPath("entries", e.ID()), version: e.Sys.Version}
	return c.do(ctx, r, nil)
}

// GetAsset fetches the live asset with the given id.
func (c *Client) GetAsset(ctx context.Context, id string) (*content.Asset, error) {
	if err := apperrors.ValidateID("asset", id); err != nil {
		return nil, err
	}
	var a content.Asset
	if err := c.do(ctx, request{method: http.MethodGet, path: c.envPath("assets", id)}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UnpublishAsset moves a out of its published state and returns the
// updated asset.
func (c *Client) UnpublishAsset(ctx context.Context, a *content.Asset) (*content.Asset, error) {
	var out content.Asset
	r := request{method: http.MethodDelete, path: c.envPath("assets", a.ID(), "published"), version: a.Sys.Version}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAsset deletes a.
func (c *Client) DeleteAsset(ctx context.Context, a *content.Asset) error {
	r := request{method: http.MethodDelete, path: c.envPath("assets", a.ID()), version: a.Sys.Version}
	return c.do(ctx, r, nil)
}

var _ content.Source = (*Client)(nil)
