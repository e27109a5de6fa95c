package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/contentaudit/pkg/buildinfo"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/export"
	"github.com/matzehuels/contentaudit/pkg/report"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Short()})
}

func (s *Server) currentReport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.orch.State())
}

type startRequest struct {
	ContentType string `json:"content_type"`
}

// startReport launches a report. Without ?wait it answers 202 with the
// loading state; with it, 200 with the finished state.
func (s *Server) startReport(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req startRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.ContentType == "" {
		req.ContentType = r.URL.Query().Get("content_type")
	}
	if req.ContentType != "" && kind != report.KindEntries {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "content_type only applies to entries"))
		return
	}

	st, done, err := s.orch.Launch(s.baseCtx, kind, req.ContentType)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); !wait {
		s.writeJSON(w, http.StatusAccepted, st)
		return
	}

	select {
	case <-done:
	case <-r.Context().Done():
		return
	}
	st = s.orch.State()
	if st.Status == report.StatusError && st.Err != nil {
		s.writeError(w, st.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

// pageItem is a report row with its selection mark.
type pageItem struct {
	report.Item
	Selected bool `json:"selected"`
}

type pageResponse struct {
	Items        []pageItem `json:"items"`
	Page         int        `json:"page"`
	PageSize     int        `json:"page_size"`
	PageCount    int        `json:"page_count"`
	Total        int        `json:"total"`
	PageSelected bool       `json:"page_selected"`
	Selected     int        `json:"selected"`
}

func (s *Server) pageResponse(p report.Page) pageResponse {
	resp := pageResponse{
		Items:     make([]pageItem, 0, len(p.Items)),
		Page:      p.Page,
		PageSize:  p.PageSize,
		PageCount: p.PageCount,
		Total:     p.Total,
		Selected:  len(s.orch.Selected()),
	}
	all := len(p.Items) > 0
	for _, it := range p.Items {
		sel := s.orch.IsSelected(it.ID)
		all = all && sel
		resp.Items = append(resp.Items, pageItem{Item: it, Selected: sel})
	}
	resp.PageSelected = all
	return resp
}

// viewFromQuery reads q, page and page_size from the URL.
func viewFromQuery(r *http.Request) (report.View, error) {
	q := r.URL.Query()
	v := report.View{Query: q.Get("q"), PageSize: report.DefaultPageSize}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return v, apperrors.New(apperrors.ErrCodeInvalidInput, "page must be a non-negative integer")
		}
		v.Page = n
	}
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return v, apperrors.New(apperrors.ErrCodeInvalidInput, "page_size must be an integer")
		}
		v.PageSize = n
	}
	return v, validView(v)
}

func validView(v report.View) error {
	if v.PageSize != 0 && !report.ValidPageSize(v.PageSize) {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "page_size must be one of %v", report.PageSizes)
	}
	return nil
}

func (s *Server) items(w http.ResponseWriter, r *http.Request) {
	v, err := viewFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.pageResponse(s.orch.Page(v)))
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := export.FormatJSON
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := export.ParseFormat(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		format = f
	}
	st := s.orch.State()
	if st.Status != report.StatusReady {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "no report is ready"))
		return
	}
	doc := export.NewDocument(st)
	doc.Items = report.Filter(doc.Items, r.URL.Query().Get("q"))

	ctype := "application/json"
	if format == export.FormatCSV {
		ctype = "text/csv"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", `attachment; filename="unused-`+string(st.Kind)+"."+string(format)+`"`)
	if err := export.Write(w, format, doc); err != nil {
		s.logger.Warn("export", "err", err)
	}
}

func (s *Server) selection(w http.ResponseWriter, r *http.Request) {
	ids := s.orch.Selected()
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

func (s *Server) clearSelection(w http.ResponseWriter, r *http.Request) {
	s.orch.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	ID string `json:"id"`
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.ID == "" {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "id is required"))
		return
	}
	selected, err := s.orch.Toggle(req.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "selected": selected})
}

func (s *Server) togglePage(w http.ResponseWriter, r *http.Request) {
	v := report.View{PageSize: report.DefaultPageSize}
	if err := decode(r, &v); err != nil {
		s.writeError(w, err)
		return
	}
	if err := validView(v); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.pageResponse(s.orch.TogglePage(v)))
}

type deleteRequest struct {
	DryRun bool `json:"dry_run"`
}

func (s *Server) deleteSelected(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.orch.DeleteSelected(r.Context(), req.DryRun)
	if err != nil && res == nil {
		s.writeError(w, err)
		return
	}
	if err != nil {
		// The deletions ran; only the follow-up regeneration failed.
		s.logger.Warn("regenerate after delete", "err", err)
	}
	s.writeJSON(w, http.StatusOK, res)
}
