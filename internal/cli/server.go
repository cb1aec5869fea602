package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowprof/pkg/archive"
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/observability"
	"github.com/matzehuels/flowprof/pkg/render"
	"github.com/matzehuels/flowprof/pkg/render/sink"
	"github.com/matzehuels/flowprof/pkg/report"
	"github.com/matzehuels/flowprof/pkg/session"
	"github.com/matzehuels/flowprof/pkg/surface"
)

// maxEventBytes bounds an event request body.
const maxEventBytes = 64 << 10

// server is the HTTP surface over one report. The report can be replaced
// while serving (serve --watch); sessions keep their state across reloads
// and events naming nodes that no longer exist fail with 404.
type server struct {
	logger   *log.Logger
	title    string
	layout   layout.Config
	sessions session.Store
	ttl      time.Duration
	archive  archive.Store // nil when no archive is configured
	metrics  http.Handler  // nil disables /metrics

	mu      sync.RWMutex
	current *servedReport
}

// servedReport holds a report and the artefacts derived from it.
type servedReport struct {
	report *report.Report
	page   []byte
	json   []byte
	layout layout.Layout
}

// setReport renders the artefacts of r and swaps them in.
func (s *server) setReport(ctx context.Context, r *report.Report) error {
	opts := render.Options{Title: s.title, Layout: s.layout, Logger: s.logger}
	page, err := render.Render(ctx, r, render.FormatHTML, opts)
	if err != nil {
		return err
	}
	data, err := report.Marshal(r)
	if err != nil {
		return flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "encode report")
	}
	sr := &servedReport{
		report: r,
		page:   page,
		json:   data,
		layout: layout.Compute(layout.InputFromReport(r), s.layoutOptions()...),
	}

	s.mu.Lock()
	s.current = sr
	s.mu.Unlock()
	return nil
}

func (s *server) served() *servedReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *server) layoutOptions() []layout.Option {
	return []layout.Option{layout.WithConfig(s.layout), layout.WithLogger(s.logger)}
}

// =============================================================================
// Routes
// =============================================================================

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/layout", s.handleLayout)
		r.Get("/graph.svg", s.handleGraphSVG)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/events", s.handleEvent)
				r.Get("/graph.svg", s.handleSessionGraph)
			})
		})

		r.Route("/archive", func(r chi.Router) {
			r.Get("/", s.handleArchiveList)
			r.Get("/{id}", s.handleArchiveGet)
		})
	})
	return r
}

// instrument reports every request to the HTTP hooks, labelled by route
// pattern rather than raw path.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("http", "method", r.Method, "route", route, "status", status, "duration", d)
	})
}

// =============================================================================
// Report Handlers
// =============================================================================

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", render.FormatHTML.ContentType())
	_, _ = w.Write(s.served().page)
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.served().json)
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	data, err := sink.RenderJSON(s.served().layout)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleGraphSVG draws the graph; ?selected= highlights a node.
func (s *server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	cur := s.served()
	selected := r.URL.Query().Get("selected")
	if selected != "" {
		if err := flowerrors.ValidateNodeName(selected); err != nil {
			writeError(w, err)
			return
		}
	}
	writeSVG(w, sink.RenderSVG(cur.layout,
		sink.WithReport(cur.report), sink.WithStyles(), sink.WithSelected(selected)))
}

// =============================================================================
// Session Handlers
// =============================================================================

// sessionView is the body of every session response.
type sessionView struct {
	ID        string        `json:"id"`
	ExpiresAt time.Time     `json:"expires_at"`
	State     surface.State `json:"state"`
	Frame     surface.Frame `json:"frame"`
}

func (s *server) view(sess *session.Session, rep *report.Report) sessionView {
	return sessionView{
		ID:        sess.ID,
		ExpiresAt: sess.ExpiresAt,
		State:     sess.State,
		Frame:     surface.Render(sess.State, rep, s.layoutOptions()...),
	}
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	rep := s.served().report
	sess := session.New(surface.Initial(rep), s.ttl)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view(sess, rep))
}

// session loads the session named in the URL, writing the error response
// itself when it cannot.
func (s *server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if err := session.ValidateID(id); err != nil {
		writeError(w, flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "session %q", id))
		return nil, false
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if sess == nil {
		writeError(w, flowerrors.New(flowerrors.ErrCodeNotFound, "session %s not found or expired", id))
		return nil, false
	}
	return sess, true
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess, s.served().report))
}

func (s *server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), sess.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvent applies one surface event and returns the new frame.
func (s *server) handleEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var ev surface.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		writeError(w, flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "decode event"))
		return
	}
	if ev.Name != "" {
		if err := flowerrors.ValidateNodeName(ev.Name); err != nil {
			writeError(w, err)
			return
		}
	}

	rep := s.served().report
	next, err := surface.Apply(sess.State, rep, ev)
	if err != nil {
		writeError(w, err)
		return
	}
	sess.Touch(next, s.ttl)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess, rep))
}

// handleSessionGraph draws the graph as the session sees it: its selection
// and its pan/zoom transform.
func (s *server) handleSessionGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	cur := s.served()
	writeSVG(w, sink.RenderSVG(cur.layout,
		sink.WithReport(cur.report),
		sink.WithStyles(),
		sink.WithSelected(sess.State.Selected),
		sink.WithTransform(sess.State.Viewport)))
}

// =============================================================================
// Archive Handlers
// =============================================================================

func (s *server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, errNoArchive)
		return
	}
	list, err := s.archive.List(r.Context(), archive.DefaultListLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleArchiveGet returns an archived report, as JSON by default or in
// the format named by ?format=.
func (s *server) handleArchiveGet(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, errNoArchive)
		return
	}
	e, err := s.archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if e.Report == nil {
		writeError(w, flowerrors.New(flowerrors.ErrCodeNotFound, "archived run %s has no report body", e.ID))
		return
	}

	format := render.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		if format, err = render.ParseFormat(q); err != nil {
			writeError(w, err)
			return
		}
	}
	title := e.Title
	if title == "" {
		title = s.title
	}
	data, err := render.Render(r.Context(), e.Report, format, render.Options{Title: title, Layout: s.layout, Logger: s.logger})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(data)
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSVG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", render.FormatSVG.ContentType())
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	code := flowerrors.GetCode(err)
	if code == "" {
		switch {
		case errors.Is(err, archive.ErrNotFound):
			code = flowerrors.ErrCodeNotFound
		case errors.Is(err, session.ErrInvalidID):
			code = flowerrors.ErrCodeInvalidInput
		default:
			code = flowerrors.ErrCodeInternal
		}
	}
	writeJSON(w, statusFor(code), errorBody{Error: errorDetail{Code: string(code), Message: flowerrors.UserMessage(err)}})
}

// statusFor maps an error code to its HTTP status.
func statusFor(code flowerrors.Code) int {
	switch code {
	case flowerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case flowerrors.ErrCodeInvalidInput, flowerrors.ErrCodeInvalidAddress, flowerrors.ErrCodeInvalidPath,
		flowerrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
