package report

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
)

func makeItems(names ...string) []Item {
	items := make([]Item, len(names))
	for i, n := range names {
		items[i] = Item{ID: n, Name: n}
	}
	return items
}

func numbered(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: fmt.Sprintf("id%d", i), Name: fmt.Sprintf("Item %d", i)}
	}
	return items
}

func TestFilter(t *testing.T) {
	items := makeItems("Home Hero", "about us", "HOMEPAGE teaser", "Footer")
	got := Filter(items, " home ")
	want := makeItems("Home Hero", "HOMEPAGE teaser")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
	if len(Filter(items, "")) != 4 {
		t.Error("empty query should match all")
	}
	if got := Filter(items, "nomatch"); got == nil || len(got) != 0 {
		t.Errorf("Filter(nomatch) = %#v, want an empty non-nil slice", got)
	}
}

func TestView_Apply(t *testing.T) {
	items := makeItems("B", "C", "D", "E", "F")
	tests := []struct {
		name      string
		view      View
		wantIDs   []string
		wantPage  int
		wantCount int
	}{
		{"first page", View{PageSize: 2}, []string{"B", "C"}, 0, 3},
		{"last partial page", View{Page: 2, PageSize: 2}, []string{"F"}, 2, 3},
		{"past the end clamps", View{Page: 9, PageSize: 2}, []string{"F"}, 2, 3},
		{"negative clamps", View{Page: -1, PageSize: 2}, []string{"B", "C"}, 0, 3},
		{"default size", View{}, []string{"B", "C", "D", "E", "F"}, 0, 1},
		{"query then page", View{Query: "e", PageSize: 2}, []string{"E"}, 0, 1},
		{"no match", View{Query: "zzz", PageSize: 2}, nil, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.view.Apply(items)
			var ids []string
			for _, it := range p.Items {
				ids = append(ids, it.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			if p.Page != tt.wantPage || p.PageCount != tt.wantCount {
				t.Errorf("page=%d count=%d, want %d/%d", p.Page, p.PageCount, tt.wantPage, tt.wantCount)
			}
		})
	}
}

func TestView_WithPageSize(t *testing.T) {
	items := numbered(250)
	tests := []struct {
		from     View
		size     int
		wantPage int
	}{
		{View{Page: 2, PageSize: 20}, 50, 0},  // item 40 is on page 0 of 50
		{View{Page: 1, PageSize: 50}, 20, 2},  // item 50 is on page 2 of 20
		{View{Page: 5, PageSize: 20}, 100, 1}, // item 100
		{View{Page: 1, PageSize: 100}, 20, 5}, // item 100
		{View{Page: 0}, 100, 0},
	}
	for _, tt := range tests {
		got, err := tt.from.WithPageSize(tt.size)
		if err != nil {
			t.Fatalf("WithPageSize(%d) error = %v", tt.size, err)
		}
		if got.Page != tt.wantPage {
			t.Errorf("%+v -> %d: page = %d, want %d", tt.from, tt.size, got.Page, tt.wantPage)
		}
		// The first item of the old page stays visible.
		first := tt.from.Apply(items).Items[0].ID
		if !contains(got.Apply(items).IDs(), first) {
			t.Errorf("%+v -> %d: %s no longer visible", tt.from, tt.size, first)
		}
	}

	if _, err := (View{}).WithPageSize(30); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("WithPageSize(30) error = %v", err)
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestView_WithQueryResetsPage(t *testing.T) {
	v := View{Page: 3, PageSize: 20}.WithQuery("x")
	if v.Page != 0 || v.Query != "x" || v.PageSize != 20 {
		t.Errorf("WithQuery = %+v", v)
	}
}

func TestPageCount(t *testing.T) {
	for _, tt := range []struct{ n, size, want int }{
		{0, 20, 1}, {20, 20, 1}, {21, 20, 2}, {5, 0, 1},
	} {
		if got := PageCount(tt.n, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}
