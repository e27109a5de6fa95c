package content

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrMemoryNotFound is returned by [Memory] for unknown ids.
var ErrMemoryNotFound = errors.New("record not found")

// Call records one operation performed against a [Memory] source.
type Call struct {
	Op string // e.g. "ListEntries", "UnpublishEntry"
	ID string
}

// Memory is an in-process [Source]. It applies the same filters as the
// platform (content type, links_to_asset, skip/limit) and
// records every call so tests can assert ordering.
//
// Memory is safe for concurrent use.
type Memory struct {
	mu           sync.Mutex
	entries      []Entry
	contentTypes []ContentType
	assets       []Asset
	calls        []Call

	// Fail maps "Op" or "Op:id" to an error returned by that call.
	Fail map[string]error
}

// NewMemory creates a source holding copies of the given records.
func NewMemory(entries []Entry, contentTypes []ContentType, assets []Asset) *Memory {
	return &Memory{
		entries:      slices.Clone(entries),
		contentTypes: slices.Clone(contentTypes),
		assets:       slices.Clone(assets),
		Fail:         map[string]error{},
	}
}

// Calls returns the operations performed so far.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Entries returns the entries currently stored.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries)
}

// Assets returns the assets currently stored.
func (m *Memory) Assets() []Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.assets)
}

func (m *Memory) record(op, id string) error {
	m.calls = append(m.calls, Call{Op: op, ID: id})
	if err := m.Fail[op+":"+id]; err != nil {
		return err
	}
	return m.Fail[op]
}

func (m *Memory) ListEntries(ctx context.Context, q EntryQuery) (*EntryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := q.LinksToAsset
	if id == "" {
		id = q.ContentType
	}
	if err := m.record("ListEntries", id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []Entry
	for _, e := range m.entries {
		if matchesQuery(&e, q) {
			matched = append(matched, e)
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	start := min(q.Skip, len(matched))
	end := min(start+limit, len(matched))
	return &EntryPage{
		Items: slices.Clone(matched[start:end]),
		Total: len(matched),
		Skip:  q.Skip,
		Limit: limit,
	}, nil
}

func matchesQuery(e *Entry, q EntryQuery) bool {
	if q.ContentType != "" && e.ContentTypeID() != q.ContentType {
		return false
	}
	if q.LinksToAsset != "" && !linksTo(e, LinkTypeAsset, q.LinksToAsset) {
		return false
	}
	return true
}

func linksTo(e *Entry, linkType, id string) bool {
	for _, l := range e.Links() {
		if l.LinkType == linkType && l.ID == id {
			return true
		}
	}
	return false
}

func (m *Memory) ListContentTypes(ctx context.Context) ([]ContentType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListContentTypes", ""); err != nil {
		return nil, err
	}
	return slices.Clone(m.contentTypes), nil
}

func (m *Memory) ListAssets(ctx context.Context) ([]Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListAssets", ""); err != nil {
		return nil, err
	}
	return slices.Clone(m.assets), nil
}

func (m *Memory) GetEntry(ctx context.Context, id string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetEntry", id); err != nil {
		return nil, err
	}
	i := m.entryIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: entry %s", ErrMemoryNotFound, id)
	}
	e := m.entries[i]
	return &e, nil
}

func (m *Memory) UnpublishEntry(ctx context.Context, e *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UnpublishEntry", e.ID()); err != nil {
		return nil, err
	}
	i := m.entryIndex(e.ID())
	if i < 0 {
		return nil, fmt.Errorf("%w: entry %s", ErrMemoryNotFound, e.ID())
	}
	m.entries[i].Sys.PublishedVersion = nil
	m.entries[i].Sys.Version++
	out := m.entries[i]
	return &out, nil
}

func (m *Memory) DeleteEntry(ctx context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteEntry", e.ID()); err != nil {
		return err
	}
	i := m.entryIndex(e.ID())
	if i < 0 {
		return fmt.Errorf("%w: entry %s", ErrMemoryNotFound, e.ID())
	}
	if m.entries[i].Sys.IsPublished() {
		return fmt.Errorf("entry %s is published", e.ID())
	}
	m.entries = slices.Delete(m.entries, i, i+1)
	return nil
}

func (m *Memory) GetAsset(ctx context.Context, id string) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetAsset", id); err != nil {
		return nil, err
	}
	i := m.assetIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: asset %s", ErrMemoryNotFound, id)
	}
	a := m.assets[i]
	return &a, nil
}

func (m *Memory) UnpublishAsset(ctx context.Context, a *Asset) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UnpublishAsset", a.ID()); err != nil {
		return nil, err
	}
	i := m.assetIndex(a.ID())
	if i < 0 {
		return nil, fmt.Errorf("%w: asset %s", ErrMemoryNotFound, a.ID())
	}
	m.assets[i].Sys.PublishedVersion = nil
	m.assets[i].Sys.Version++
	out := m.assets[i]
	return &out, nil
}

func (m *Memory) DeleteAsset(ctx context.Context, a *Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteAsset", a.ID()); err != nil {
		return err
	}
	i := m.assetIndex(a.ID())
	if i < 0 {
		return fmt.Errorf("%w: asset %s", ErrMemoryNotFound, a.ID())
	}
	if m.assets[i].Sys.IsPublished() {
		return fmt.Errorf("asset %s is published", a.ID())
	}
	m.assets = slices.Delete(m.assets, i, i+1)
	return nil
}

func (m *Memory) entryIndex(id string) int {
	return slices.IndexFunc(m.entries, func(e Entry) bool { return e.ID() == id })
}

func (m *Memory) assetIndex(id string) int {
	return slices.IndexFunc(m.assets, func(a Asset) bool { return a.ID() == id })
}

var _ Source = (*Memory)(nil)
