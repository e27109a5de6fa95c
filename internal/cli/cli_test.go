package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/contentaudit/internal/config"
	"github.com/matzehuels/contentaudit/pkg/content"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/export"
)

// fakeAPI serves the subset of the management API the client uses from mem.
func fakeAPI(t *testing.T, mem *content.Memory) *httptest.Server {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/vnd.contentful.management.v1+json")
		_ = json.NewEncoder(w).Encode(v)
	}
	fail := func(w http.ResponseWriter, err error) {
		status := http.StatusConflict
		if errors.Is(err, content.ErrMemoryNotFound) {
			status = http.StatusNotFound
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
	}
	collection := func(w http.ResponseWriter, items any, total int) {
		writeJSON(w, map[string]any{"total": total, "skip": 0, "limit": content.MaxPageSize, "items": items})
	}
	version := func(r *http.Request) int {
		v, _ := strconv.Atoi(r.Header.Get("X-Contentful-Version"))
		return v
	}

	r := chi.NewRouter()
	r.Route("/spaces/{space}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, content.Space{Sys: content.Sys{ID: chi.URLParam(r, "space")}, Name: "Test Space"})
		})
		r.Route("/environments/{env}", func(r chi.Router) {
			r.Get("/entries", func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				skip, _ := strconv.Atoi(q.Get("skip"))
				limit, _ := strconv.Atoi(q.Get("limit"))
				page, err := mem.ListEntries(r.Context(), content.EntryQuery{
					ContentType:  q.Get("content_type"),
					LinksToAsset: q.Get("links_to_asset"),
					Skip:         skip,
					Limit:        limit,
				})
				if err != nil {
					fail(w, err)
					return
				}
				writeJSON(w, map[string]any{"total": page.Total, "skip": page.Skip, "limit": page.Limit, "items": page.Items})
			})
			r.Get("/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
				e, err := mem.GetEntry(r.Context(), chi.URLParam(r, "id"))
				if err != nil {
					fail(w, err)
					return
				}
				writeJSON(w, e)
			})
			r.Delete("/entries/{id}/published", func(w http.ResponseWriter, r *http.Request) {
				e, err := mem.GetEntry(r.Context(), chi.URLParam(r, "id"))
				if err == nil && e.Sys.Version != version(r) {
					err = errors.New("version mismatch")
				}
				if err == nil {
					e, err = mem.UnpublishEntry(r.Context(), e)
				}
				if err != nil {
					fail(w, err)
					return
				}
				writeJSON(w, e)
			})
			r.Delete("/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
				e, err := mem.GetEntry(r.Context(), chi.URLParam(r, "id"))
				if err == nil && e.Sys.Version != version(r) {
					err = errors.New("version mismatch")
				}
				if err == nil {
					err = mem.DeleteEntry(r.Context(), e)
				}
				if err != nil {
					fail(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})
			r.Get("/content_types", func(w http.ResponseWriter, r *http.Request) {
				cts, _ := mem.ListContentTypes(r.Context())
				collection(w, cts, len(cts))
			})
			r.Get("/assets", func(w http.ResponseWriter, r *http.Request) {
				as, _ := mem.ListAssets(r.Context())
				collection(w, as, len(as))
			})
		})
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func linkTo(id string) content.Field {
	return content.Localized("related", map[string]any{"en-US": content.LinkValue(content.LinkTypeEntry, id)})
}

// fixture: homePage links entryLinked; entryOrphan and entryPublished are unused.
func fixture() *content.Memory {
	v := 3
	published := content.NewEntry("entryPublished", "article")
	published.Sys.PublishedVersion = &v
	published.Sys.Version = 4

	return content.NewMemory(
		[]content.Entry{
			content.NewEntry("homePage", "landingPage", linkTo("entryLinked")),
			content.NewEntry("entryLinked", "article"),
			content.NewEntry("entryOrphan", "article"),
			published,
		},
		[]content.ContentType{
			{Sys: content.Sys{ID: "article"}, Name: "Article"},
			{Sys: content.Sys{ID: "landingPage"}, Name: "Landing page"},
			{Sys: content.Sys{ID: "legacyPromo"}, Name: "Legacy promo"},
		},
		nil,
	)
}

type result struct {
	out    string
	stderr string
	err    error
}

// execute runs the root command against a fake API built from mem.
func execute(t *testing.T, mem *content.Memory, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{config.EnvToken, config.EnvSpace, config.EnvEnvironment, config.EnvBaseURL} {
		t.Setenv(k, "")
	}

	api := fakeAPI(t, mem)
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--token", "secret-token-1234", "--space", "space1", "--base-url", api.URL}, args...))

	prev := output
	t.Cleanup(func() { output = prev })

	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), stderr: errOut.String(), err: err}
}

func entryIDs(mem *content.Memory) []string {
	var ids []string
	for _, e := range mem.Entries() {
		ids = append(ids, e.ID())
	}
	return ids
}

func TestRootCommandTree(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	for _, name := range []string{"report", "delete", "browse", "graph", "serve", "space", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("missing command %q", name)
		}
	}
	for _, flag := range []string{"config", "token", "space", "environment", "base-url", "locale", "mode", "concurrency", "single-page"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestReportEntries(t *testing.T) {
	res := execute(t, fixture(), "", "report", "entries")
	if res.err != nil {
		t.Fatalf("report entries: %v\n%s", res.err, res.stderr)
	}
	for _, want := range []string{"Unused entries", "entryOrphan", "entryPublished", "2 unused entries"} {
		if !strings.Contains(res.out, want) {
			t.Errorf("output missing %q:\n%s", want, res.out)
		}
	}
	for _, unwanted := range []string{"entryLinked", "homePage"} {
		if strings.Contains(res.out, unwanted) {
			t.Errorf("output should not list %q:\n%s", unwanted, res.out)
		}
	}
}

func TestReportJSON(t *testing.T) {
	res := execute(t, fixture(), "", "report", "types", "--format", "json")
	if res.err != nil {
		t.Fatalf("report types: %v", res.err)
	}
	var doc export.Document
	if err := json.Unmarshal([]byte(res.out), &doc); err != nil {
		t.Fatalf("decode json report: %v\n%s", err, res.out)
	}
	var ids []string
	for _, it := range doc.Items {
		ids = append(ids, it.ID)
	}
	if diff := cmp.Diff([]string{"legacyPromo"}, ids); diff != "" {
		t.Errorf("unused types (-want +got):\n%s", diff)
	}
}

func TestReportJSONQueryMatchingNothing(t *testing.T) {
	res := execute(t, fixture(), "", "report", "entries", "--format", "json", "--query", "nomatch")
	if res.err != nil {
		t.Fatalf("report entries: %v", res.err)
	}
	if !strings.Contains(res.out, `"items": []`) {
		t.Errorf("want an empty items array:\n%s", res.out)
	}
}

func TestReportRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code apperrors.Code
	}{
		{"unknown kind", []string{"report", "widgets"}, apperrors.ErrCodeInvalidKind},
		{"content type on types", []string{"report", "types", "--content-type", "article"}, apperrors.ErrCodeInvalidInput},
		{"bad page size", []string{"report", "entries", "--page-size", "7"}, apperrors.ErrCodeInvalidInput},
		{"bad format", []string{"report", "entries", "--format", "xml"}, apperrors.ErrCodeInvalidFormat},
		{"table to file", []string{"report", "entries", "--format", "table", "-o", "x.txt"}, apperrors.ErrCodeInvalidFormat},
		{"bad mode", []string{"--mode", "sideways", "report", "entries"}, apperrors.ErrCodeInvalidConfig},
		{"bad concurrency", []string{"--concurrency", "99", "report", "entries"}, apperrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, fixture(), "", tt.args...)
			if !apperrors.Is(res.err, tt.code) {
				t.Errorf("error = %v, want code %s", res.err, tt.code)
			}
		})
	}
}

func TestDeleteAllUnused(t *testing.T) {
	mem := fixture()
	res := execute(t, mem, "", "delete", "entries", "--all-unused", "--yes")
	if res.err != nil {
		t.Fatalf("delete: %v\n%s", res.err, res.out)
	}
	if diff := cmp.Diff([]string{"homePage", "entryLinked"}, entryIDs(mem)); diff != "" {
		t.Errorf("remaining entries (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.out, "entryPublished unpublished and deleted") {
		t.Errorf("output missing unpublish line:\n%s", res.out)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	mem := fixture()
	res := execute(t, mem, "n\n", "delete", "entries", "entryOrphan")
	if res.err != nil {
		t.Fatalf("delete: %v", res.err)
	}
	if !strings.Contains(res.out, "Aborted") || len(mem.Entries()) != 4 {
		t.Errorf("declined delete changed content:\n%s", res.out)
	}

	res = execute(t, mem, "y\n", "delete", "entries", "entryOrphan")
	if res.err != nil {
		t.Fatalf("delete: %v", res.err)
	}
	if slices.Contains(entryIDs(mem), "entryOrphan") {
		t.Error("confirmed delete left entryOrphan")
	}
}

func TestDeleteDryRun(t *testing.T) {
	mem := fixture()
	res := execute(t, mem, "", "delete", "entries", "--all-unused", "--dry-run")
	if res.err != nil {
		t.Fatalf("dry run: %v", res.err)
	}
	if len(mem.Entries()) != 4 {
		t.Error("dry run deleted entries")
	}
	if !strings.Contains(res.out, "entryPublished would be unpublished and deleted") {
		t.Errorf("dry run output:\n%s", res.out)
	}
}

func TestDeleteRefusesUsedRecords(t *testing.T) {
	mem := fixture()
	res := execute(t, mem, "", "delete", "entries", "entryLinked", "--yes")
	if !apperrors.Is(res.err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", res.err)
	}
	if len(mem.Entries()) != 4 {
		t.Error("used entry was deleted")
	}
}

func TestDeleteArgValidation(t *testing.T) {
	for _, args := range [][]string{
		{"delete", "types", "--all-unused"},
		{"delete", "entries"},
		{"delete", "entries", "entryOrphan", "--all-unused"},
		{"delete", "entries", "entryOrphan", "entryOrphan"},
	} {
		if res := execute(t, fixture(), "", args...); !apperrors.Is(res.err, apperrors.ErrCodeInvalidInput) {
			t.Errorf("%v: error = %v, want INVALID_INPUT", args, res.err)
		}
	}
	if res := execute(t, fixture(), "", "delete", "media", "../spaces"); !apperrors.Is(res.err, apperrors.ErrCodeInvalidID) {
		t.Errorf("path-like id: error = %v, want INVALID_ID", res.err)
	}
}

func TestGraphDOT(t *testing.T) {
	res := execute(t, fixture(), "", "graph", "--format", "dot")
	if res.err != nil {
		t.Fatalf("graph: %v", res.err)
	}
	if !strings.Contains(res.out, "digraph") || !strings.Contains(res.out, `"homePage" -> "entryLinked"`) {
		t.Errorf("dot output:\n%s", res.out)
	}
}

func TestGraphReportsDanglingLinks(t *testing.T) {
	mem := content.NewMemory([]content.Entry{
		content.NewEntry("homePage", "landingPage", linkTo("ghost")),
	}, nil, nil)

	res := execute(t, mem, "", "graph", "--format", "dot")
	if res.err != nil {
		t.Fatalf("graph: %v", res.err)
	}
	if !strings.Contains(res.stderr, "1 linked entries are missing") {
		t.Errorf("stderr = %q, want the missing count", res.stderr)
	}
	if strings.Contains(res.out, "linked entries are missing") {
		t.Error("missing count written into the DOT output")
	}

	path := filepath.Join(t.TempDir(), "graph.dot")
	res = execute(t, mem, "", "graph", "-o", path)
	if res.err != nil {
		t.Fatalf("graph -o: %v", res.err)
	}
	if !strings.Contains(res.out, "1 linked entries are missing") {
		t.Errorf("output = %q, want the missing count", res.out)
	}
}

func TestGraphJSON(t *testing.T) {
	res := execute(t, fixture(), "", "graph", "--format", "json")
	if res.err != nil {
		t.Fatalf("graph: %v", res.err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(res.out), &doc); err != nil {
		t.Fatalf("graph json: %v\n%s", err, res.out)
	}
	if _, ok := doc["nodes"]; !ok {
		t.Errorf("graph json missing nodes: %v", doc)
	}
}

func TestSpace(t *testing.T) {
	res := execute(t, fixture(), "", "space")
	if res.err != nil {
		t.Fatalf("space: %v", res.err)
	}
	for _, want := range []string{"Test Space", "space1", "master"} {
		if !strings.Contains(res.out, want) {
			t.Errorf("space output missing %q:\n%s", want, res.out)
		}
	}
}

func TestConfigShowRedactsToken(t *testing.T) {
	res := execute(t, fixture(), "", "config", "show")
	if res.err != nil {
		t.Fatalf("config show: %v", res.err)
	}
	if strings.Contains(res.out, "secret-token-1234") || !strings.Contains(res.out, "secr********") {
		t.Errorf("token not redacted:\n%s", res.out)
	}
}

func TestMissingCredentials(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvSpace, "")

	root := New(io.Discard, LogInfo).RootCommand()
	root.SilenceErrors = true
	root.SetOut(io.Discard)
	root.SetArgs([]string{"report", "entries"})
	if err := root.ExecuteContext(context.Background()); !apperrors.Is(err, apperrors.ErrCodeUnauthorized) {
		t.Errorf("error = %v, want UNAUTHORIZED", err)
	}
}

func TestCompletion(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out.String(), appName) {
		t.Error("bash completion does not mention the binary")
	}
}

func TestContentTypeFlagCompletion(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{config.EnvToken, config.EnvSpace, config.EnvEnvironment, config.EnvBaseURL} {
		t.Setenv(k, "")
	}
	api := fakeAPI(t, fixture())

	complete := func(args ...string) string {
		root := New(io.Discard, LogInfo).RootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(append([]string{"__complete"}, args...))
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("__complete %v: %v", args, err)
		}
		return out.String()
	}

	got := complete("report", "entries", "--token", "secret-token-1234", "--space", "space1", "--base-url", api.URL, "--content-type", "")
	for _, want := range []string{"article\t", "landingPage\t", "legacyPromo\t"} {
		if !strings.Contains(got, want) {
			t.Errorf("completion output missing %q:\n%s", want, got)
		}
	}

	// Without credentials the completion is empty, not an error.
	if got := complete("report", "entries", "--content-type", ""); strings.Contains(got, "article") {
		t.Errorf("completion without credentials = %q", got)
	}

	if got := complete("graph", "--format", ""); !strings.Contains(got, "svg") {
		t.Errorf("graph --format completion = %q", got)
	}
}
