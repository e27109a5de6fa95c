package content

import (
	"context"
	"errors"
	"testing"
)

func testMemory() *Memory {
	return NewMemory(
		[]Entry{
			NewEntry("A", "article"),
			NewEntry("B", "article", Localized("hero", map[string]any{"en-US": LinkValue(LinkTypeAsset, "img1")})),
			NewEntry("C", "page", Localized("body", map[string]any{"en-US": []any{LinkValue(LinkTypeEntry, "A")}})),
		},
		[]ContentType{{Sys: Sys{ID: "article"}}, {Sys: Sys{ID: "page"}}},
		[]Asset{{Sys: Sys{ID: "img1"}}},
	)
}

func TestMemory_ListEntriesFilters(t *testing.T) {
	ctx := context.Background()
	m := testMemory()

	tests := []struct {
		name string
		q    EntryQuery
		want []string
	}{
		{"all", EntryQuery{}, []string{"A", "B", "C"}},
		{"content type", EntryQuery{ContentType: "article"}, []string{"A", "B"}},
		{"links to asset", EntryQuery{LinksToAsset: "img1"}, []string{"B"}},
		{"skip and limit", EntryQuery{Skip: 1, Limit: 1}, []string{"B"}},
		{"skip past end", EntryQuery{Skip: 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := m.ListEntries(ctx, tt.q)
			if err != nil {
				t.Fatalf("ListEntries() error = %v", err)
			}
			var got []string
			for _, e := range page.Items {
				got = append(got, e.ID())
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestHasAnyEntry(t *testing.T) {
	ctx := context.Background()
	m := testMemory()

	used, err := HasAnyEntry(ctx, m, EntryQuery{LinksToAsset: "img1"})
	if err != nil || !used {
		t.Errorf("HasAnyEntry(img1) = %v, %v; want true, nil", used, err)
	}
	used, err = HasAnyEntry(ctx, m, EntryQuery{ContentType: "missing"})
	if err != nil || used {
		t.Errorf("HasAnyEntry(missing) = %v, %v; want false, nil", used, err)
	}
}

func TestMemory_DeleteRequiresUnpublish(t *testing.T) {
	ctx := context.Background()
	v := 1
	e := NewEntry("P", "article")
	e.Sys.Version, e.Sys.PublishedVersion = 2, &v
	m := NewMemory([]Entry{e}, nil, nil)

	got, _ := m.GetEntry(ctx, "P")
	if err := m.DeleteEntry(ctx, got); err == nil {
		t.Fatal("DeleteEntry() on published entry succeeded")
	}
	got, err := m.UnpublishEntry(ctx, got)
	if err != nil {
		t.Fatalf("UnpublishEntry() error = %v", err)
	}
	if err := m.DeleteEntry(ctx, got); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if len(m.Entries()) != 0 {
		t.Errorf("entries left: %d", len(m.Entries()))
	}
}

func TestMemory_Fail(t *testing.T) {
	boom := errors.New("boom")
	m := testMemory()
	m.Fail["GetEntry:B"] = boom

	if _, err := m.GetEntry(context.Background(), "A"); err != nil {
		t.Errorf("GetEntry(A) error = %v", err)
	}
	if _, err := m.GetEntry(context.Background(), "B"); !errors.Is(err, boom) {
		t.Errorf("GetEntry(B) error = %v, want boom", err)
	}
	if _, err := m.GetEntry(context.Background(), "Z"); !errors.Is(err, ErrMemoryNotFound) {
		t.Errorf("GetEntry(Z) error = %v, want ErrMemoryNotFound", err)
	}
}
