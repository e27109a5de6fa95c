// Package api serves the report workflow over HTTP for local dashboards.
//
// The server wraps one [report.Orchestrator]: every client sees the same
// current report and selection. Routes:
//
//	GET    /healthz
//	GET    /reports                 current state
//	POST   /reports/{kind}          start a report (?wait=1 blocks until done)
//	GET    /reports/items           ?q=&page=&page_size= one page, with selection marks
//	GET    /reports/export          ?format=json|csv&q=
//	GET    /selection
//	POST   /selection/toggle        {"id": "..."}
//	POST   /selection/page          {"q": "", "page": 0, "page_size": 20}
//	DELETE /selection
//	POST   /delete                  {"dry_run": true}
//
// Errors are returned as {"code": "...", "message": "..."} with the status
// from [apperrors.HTTPStatus].
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/report"
)

// RequestIDHeader carries the per-request id on every response.
const RequestIDHeader = "X-Request-Id"

// shutdownTimeout bounds graceful shutdown in ListenAndServe.
const shutdownTimeout = 10 * time.Second

// Server handles API requests for one orchestrator.
type Server struct {
	orch    *report.Orchestrator
	logger  *log.Logger
	router  chi.Router
	baseCtx context.Context
}

// New creates a server over orch. Background report runs use
// context.Background until ListenAndServe supplies its own context.
func New(orch *report.Orchestrator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{orch: orch, logger: logger, baseCtx: context.Background()}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", s.currentReport)
		r.Get("/items", s.items)
		r.Get("/export", s.export)
		r.Post("/{kind}", s.startReport)
	})
	r.Route("/selection", func(r chi.Router) {
		r.Get("/", s.selection)
		r.Delete("/", s.clearSelection)
		r.Post("/toggle", s.toggle)
		r.Post("/page", s.togglePage)
	})
	r.Post("/delete", s.deleteSelected)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Report runs started through the API use ctx.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.baseCtx = ctx
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("api shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// requestID tags each request with an id, reusing one the client sent.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		id, _ := r.Context().Value(requestIDKey).(string)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"request_id", id)
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Code: code, Message: apperrors.UserMessage(err)})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
