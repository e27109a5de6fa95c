package report

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/contentaudit/pkg/audit"
	"github.com/matzehuels/contentaudit/pkg/content"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
)

// stubDetector returns canned results per kind.
type stubDetector struct {
	mu      sync.Mutex
	results map[Kind][]Item
	err     error
	calls   int
}

func (d *stubDetector) Detect(_ context.Context, kind Kind, _ string) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return &Result{Items: d.results[kind]}, nil
}

func itemIDs(items []Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestOrchestrator_GenerateClearsOtherKinds(t *testing.T) {
	det := &stubDetector{results: map[Kind][]Item{
		KindEntries: makeItems("B", "C"),
		KindMedia:   makeItems("asset1"),
	}}
	o := NewOrchestrator(det, nil, quiet)
	ctx := context.Background()

	st, err := o.Generate(ctx, KindEntries, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if st.Status != StatusReady || !st.HasGenerated || len(st.Entries) != 2 || st.RunID == "" {
		t.Fatalf("state = %+v", st)
	}
	if _, err := o.Toggle("B"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	st, _ = o.Generate(ctx, KindMedia, "")
	if len(st.Entries) != 0 || len(st.ContentTypes) != 0 {
		t.Errorf("other kinds not cleared: %+v", st)
	}
	if diff := cmp.Diff([]string{"asset1"}, itemIDs(st.Assets)); diff != "" {
		t.Errorf("assets mismatch (-want +got):\n%s", diff)
	}
	if len(o.Selected()) != 0 {
		t.Errorf("selection not cleared: %v", o.Selected())
	}
}

func TestOrchestrator_StartClearsImmediately(t *testing.T) {
	det := &stubDetector{results: map[Kind][]Item{KindEntries: makeItems("B")}}
	o := NewOrchestrator(det, nil, quiet)
	ctx := context.Background()
	_, _ = o.Generate(ctx, KindEntries, "")
	_, _ = o.Toggle("B")

	o.Start(ctx, KindTypes, "")
	st := o.State()
	if st.Status != StatusLoading || st.Kind != KindTypes || len(st.Entries) != 0 || len(o.Selected()) != 0 {
		t.Errorf("state after Start = %+v, selected %v", st, o.Selected())
	}
	if !st.HasGenerated {
		t.Error("HasGenerated should survive a new start")
	}
}

func TestOrchestrator_StaleResultDiscarded(t *testing.T) {
	o := NewOrchestrator(&stubDetector{}, nil, quiet)
	ctx := context.Background()

	first := o.Start(ctx, KindEntries, "")
	second := o.Start(ctx, KindMedia, "")
	if !o.Complete(ctx, second, &Result{Items: makeItems("asset1")}) {
		t.Fatal("Complete(current) should apply")
	}
	if o.Complete(ctx, first, &Result{Items: makeItems("old")}) {
		t.Error("Complete(stale) should be discarded")
	}
	if o.Fail(ctx, first, errors.New("late failure")) {
		t.Error("Fail(stale) should be discarded")
	}

	st := o.State()
	if st.Kind != KindMedia || st.Status != StatusReady || len(st.Entries) != 0 {
		t.Errorf("state = %+v", st)
	}
	if diff := cmp.Diff([]string{"asset1"}, itemIDs(st.Assets)); diff != "" {
		t.Errorf("assets mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_Failure(t *testing.T) {
	det := &stubDetector{err: apperrors.New(apperrors.ErrCodeNetwork, "platform unavailable")}
	o := NewOrchestrator(det, nil, quiet)

	st, err := o.Generate(context.Background(), KindTypes, "")
	if !apperrors.Is(err, apperrors.ErrCodeNetwork) {
		t.Fatalf("error = %v", err)
	}
	if st.Status != StatusError || len(st.ContentTypes) != 0 || st.Error != "platform unavailable" || !st.HasGenerated {
		t.Errorf("state = %+v", st)
	}
	if det.calls != 1 {
		t.Errorf("detector called %d times, want no retry", det.calls)
	}
}

func TestOrchestrator_SelectAllIsPageScoped(t *testing.T) {
	det := &stubDetector{results: map[Kind][]Item{KindEntries: makeItems("B", "C", "D", "E")}}
	o := NewOrchestrator(det, nil, quiet)
	ctx := context.Background()
	_, _ = o.Generate(ctx, KindEntries, "")

	page0 := View{Page: 0, PageSize: 2}
	page1 := View{Page: 1, PageSize: 2}

	o.TogglePage(page0)
	if diff := cmp.Diff([]string{"B", "C"}, o.Selected()); diff != "" {
		t.Errorf("after page 0 (-want +got):\n%s", diff)
	}
	if o.PageSelected(page1) {
		t.Error("page 1 should not be selected")
	}

	o.TogglePage(page1)
	if diff := cmp.Diff([]string{"B", "C", "D", "E"}, o.Selected()); diff != "" {
		t.Errorf("after page 1 (-want +got):\n%s", diff)
	}

	// Deselecting page 1 leaves page 0 alone.
	o.TogglePage(page1)
	if diff := cmp.Diff([]string{"B", "C"}, o.Selected()); diff != "" {
		t.Errorf("after deselect page 1 (-want +got):\n%s", diff)
	}

	// View changes keep the selection; regeneration clears it.
	_ = o.Page(View{Query: "zzz"})
	if len(o.Selected()) != 2 {
		t.Error("view change cleared selection")
	}
	_, _ = o.Generate(ctx, KindEntries, "")
	if len(o.Selected()) != 0 {
		t.Error("regeneration kept selection")
	}
}

func TestOrchestrator_ToggleUnknown(t *testing.T) {
	o := NewOrchestrator(&stubDetector{}, nil, quiet)
	if _, err := o.Toggle("nope"); !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		t.Errorf("Toggle() error = %v", err)
	}
}

func TestOrchestrator_OnChange(t *testing.T) {
	det := &stubDetector{results: map[Kind][]Item{KindEntries: makeItems("B")}}
	o := NewOrchestrator(det, nil, quiet)
	var statuses []Status
	o.OnChange(func(s State) { statuses = append(statuses, s.Status) })

	_, _ = o.Generate(context.Background(), KindEntries, "")
	if diff := cmp.Diff([]Status{StatusLoading, StatusReady}, statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_DeleteSelected(t *testing.T) {
	src := content.NewMemory([]content.Entry{
		content.NewEntry("A", "article"),
		published(content.NewEntry("B", "article"), 1),
		content.NewEntry("C", "article"),
	}, nil, nil)
	auditor := audit.New(src, audit.Options{}, quiet)
	o := NewOrchestrator(AuditDetector{Auditor: auditor}, NewDeleter(src, quiet), quiet)
	ctx := context.Background()

	st, err := o.Generate(ctx, KindEntries, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, itemIDs(st.Entries)); diff != "" {
		t.Fatalf("unused mismatch (-want +got):\n%s", diff)
	}
	_, _ = o.Toggle("B")
	_, _ = o.Toggle("C")

	dry, err := o.DeleteSelected(ctx, true)
	if err != nil || !dry.DryRun || len(o.Selected()) != 2 {
		t.Fatalf("dry run: res=%+v err=%v selected=%v", dry, err, o.Selected())
	}

	res, err := o.DeleteSelected(ctx, false)
	if err != nil {
		t.Fatalf("DeleteSelected() error = %v", err)
	}
	if res.Succeeded() != 2 || !res.Outcomes[0].Unpublished {
		t.Errorf("outcomes = %+v", res.Outcomes)
	}
	st = o.State()
	if diff := cmp.Diff([]string{"A"}, itemIDs(st.Entries)); diff != "" {
		t.Errorf("after delete (-want +got):\n%s", diff)
	}
	if len(o.Selected()) != 0 || st.Generation != 2 {
		t.Errorf("selected=%v generation=%d", o.Selected(), st.Generation)
	}
}

func TestOrchestrator_DeleteSelectedRejects(t *testing.T) {
	det := &stubDetector{results: map[Kind][]Item{KindTypes: makeItems("ct1"), KindEntries: makeItems("A")}}
	src := content.NewMemory(nil, nil, nil)
	ctx := context.Background()

	o := NewOrchestrator(det, NewDeleter(src, quiet), quiet)
	if _, err := o.DeleteSelected(ctx, false); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("idle: error = %v", err)
	}

	_, _ = o.Generate(ctx, KindTypes, "")
	_, _ = o.Toggle("ct1")
	if _, err := o.DeleteSelected(ctx, false); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("types: error = %v", err)
	}

	_, _ = o.Generate(ctx, KindEntries, "")
	if _, err := o.DeleteSelected(ctx, false); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("empty selection: error = %v", err)
	}

	noDelete := NewOrchestrator(det, nil, quiet)
	_, _ = noDelete.Generate(ctx, KindEntries, "")
	_, _ = noDelete.Toggle("A")
	if _, err := noDelete.DeleteSelected(ctx, false); !apperrors.Is(err, apperrors.ErrCodeUnsupported) {
		t.Errorf("no deleter: error = %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"entries": KindEntries, "Assets": KindMedia, "media": KindMedia, "content-types": KindTypes} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("pages"); !apperrors.Is(err, apperrors.ErrCodeInvalidKind) {
		t.Errorf("ParseKind(pages) error = %v", err)
	}
}

func TestOrchestrator_LaunchRunsInBackground(t *testing.T) {
	det := &stubDetector{results: map[Kind][]Item{KindTypes: makeItems("faq")}}
	o := NewOrchestrator(det, nil, quiet)

	st, done, err := o.Launch(context.Background(), KindTypes, "")
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if st.Status != StatusLoading || st.Kind != KindTypes {
		t.Errorf("launch snapshot = %+v, want loading types", st)
	}
	<-done

	st = o.State()
	if st.Status != StatusReady || len(st.ContentTypes) != 1 {
		t.Errorf("state after done = %+v", st)
	}

	if _, _, err := o.Launch(context.Background(), Kind("bogus"), ""); err == nil {
		t.Error("Launch() with unknown kind should fail")
	}
}
