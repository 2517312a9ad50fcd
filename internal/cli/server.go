package cli

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/observability"
	"github.com/matzehuels/weekflow/pkg/pipeline"
	"github.com/matzehuels/weekflow/pkg/render"
	"github.com/matzehuels/weekflow/pkg/session"
	"github.com/matzehuels/weekflow/pkg/tree"
	"github.com/matzehuels/weekflow/pkg/view"
)

const (
	// sessionCookie carries the viewer's session ID.
	sessionCookie = "weekflow_session"

	// toggleAttempts bounds retries when other replicas keep writing the
	// same session.
	toggleAttempts = 3
)

// serverOptions configures a viewer server.
type serverOptions struct {
	// Base holds the tree source, layout parameters and palette. Formats
	// and View are chosen per request.
	Base   pipeline.Options
	Store  session.Store
	Runner *pipeline.Runner
	TTL    time.Duration
	Logger *log.Logger
}

// server hosts one interactive icicle view per browser session. Sessions
// store only toggle history, so any replica sharing the store can rebuild a
// viewer by replaying it onto a fresh copy of the tree.
type server struct {
	opts serverOptions
	spec tree.Spec // initial tree, copied for every viewer

	mu      sync.Mutex
	viewers map[string]*viewer
}

// viewer is the in-process state of one session.
type viewer struct {
	mu       sync.Mutex
	ctrl     *view.Controller
	sess     *session.Session // version the controller reflects
	lastSeen time.Time
}

// newServer loads the base tree once; every viewer starts from it.
func newServer(ctx context.Context, opts serverOptions) (*server, error) {
	if opts.TTL <= 0 {
		opts.TTL = session.DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	opts.Base.Logger = opts.Logger
	opts.Base.SetDefaults()

	t, _, err := pipeline.Load(ctx, opts.Base)
	if err != nil {
		return nil, err
	}
	// Toggles are part of the initial spec now.
	opts.Base.Toggles = nil

	return &server{
		opts:    opts,
		spec:    t.Spec(),
		viewers: make(map[string]*viewer),
	}, nil
}

// Routes returns the HTTP handler.
func (s *server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpHooks)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/view", http.StatusFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/view", s.handleView)
	r.Get("/toggle/{id}", s.handleToggleRedirect)
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Post("/toggle/{id}", s.handleToggle)
	})
	return r
}

// =============================================================================
// Handlers
// =============================================================================

// handleView renders the viewer's current state. The query parameters
// format (svg, png, pdf, json, dot) and view (icicle, nodelink) select the
// artifact; expandable bars of the icicle SVG link to /toggle/{id}.
func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	v, err := s.viewerFor(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := s.opts.Base
	opts.Formats = []string{render.FormatSVG}
	if f := r.URL.Query().Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	if vw := r.URL.Query().Get("view"); vw != "" {
		opts.View = vw
	}
	if opts.View == render.ViewIcicle && opts.Formats[0] == render.FormatSVG {
		opts.ToggleLink = toggleLink
	}

	artifacts, err := s.opts.Runner.Render(r.Context(), v.result(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(opts.Formats[0]))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(artifacts[opts.Formats[0]])
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	v, err := s.viewerFor(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, v.result())
}

func (s *server) handleToggle(w http.ResponseWriter, r *http.Request) {
	v, err := s.viewerFor(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.toggle(r.Context(), v, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

// handleToggleRedirect serves the links embedded in the SVG.
func (s *server) handleToggleRedirect(w http.ResponseWriter, r *http.Request) {
	v, err := s.viewerFor(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.toggle(r.Context(), v, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/view", http.StatusSeeOther)
}

func toggleLink(nodeID string) string {
	return "/toggle/" + url.PathEscape(nodeID)
}

// =============================================================================
// Sessions
// =============================================================================

// viewerFor resolves the request's session, creating one (and setting the
// cookie) when the cookie is missing, malformed or expired.
func (s *server) viewerFor(w http.ResponseWriter, r *http.Request) (*viewer, error) {
	ctx := r.Context()
	hooks := observability.Session()

	var sess *session.Session
	if c, err := r.Cookie(sessionCookie); err == nil && errs.ValidateSessionID(c.Value) == nil {
		sess, err = s.opts.Store.Get(ctx, c.Value)
		if err != nil {
			return nil, err
		}
	}
	if sess == nil {
		var err error
		if sess, err = session.New(s.opts.TTL); err != nil {
			return nil, err
		}
		if err := s.opts.Store.Set(ctx, sess); err != nil {
			return nil, err
		}
		hooks.OnSessionStart(ctx, sess.ID)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.opts.TTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	s.mu.Lock()
	v, ok := s.viewers[sess.ID]
	if !ok {
		v = &viewer{}
		s.viewers[sess.ID] = v
	}
	s.mu.Unlock()

	if err := s.sync(ctx, v, sess); err != nil {
		return nil, err
	}
	return v, nil
}

// sync rebuilds v from sess unless it already reflects that version, which
// is the case unless another replica changed the session.
func (s *server) sync(ctx context.Context, v *viewer, sess *session.Session) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lastSeen = time.Now()
	if v.ctrl != nil && v.sess.Version == sess.Version {
		return nil
	}
	return s.rebuild(ctx, v, sess)
}

// rebuild replaces v's controller with one replaying sess. v.mu must be
// held.
func (s *server) rebuild(ctx context.Context, v *viewer, sess *session.Session) error {
	t, err := tree.Build(s.spec)
	if err != nil {
		return err
	}
	if skipped := sess.Replay(t); len(skipped) > 0 {
		s.opts.Logger.Debug("session refers to missing nodes", "session", sess.ID, "nodes", skipped)
	}
	ctrl, err := view.New(ctx, t, *s.opts.Base.Params)
	if err != nil {
		return err
	}
	if len(sess.Toggles) > 0 {
		observability.Session().OnSessionRestore(ctx, sess.ID, len(sess.Toggles))
	}
	v.ctrl, v.sess = ctrl, sess
	return nil
}

// toggle applies one toggle and persists it with a versioned swap. If the
// store rejects the new history the toggle is undone so memory and store
// agree. When another replica wrote the session first, the viewer is rebuilt
// from the stored history and the toggle is applied on top of it.
func (s *server) toggle(ctx context.Context, v *viewer, nodeID string) (layout.Result, error) {
	if err := errs.ValidateNodeID(nodeID); err != nil {
		return layout.Result{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	var err error
	for range toggleAttempts {
		if err = s.tryToggle(ctx, v, nodeID); !errors.Is(err, session.ErrConflict) {
			break
		}
		s.opts.Logger.Debug("session changed on another replica", "session", v.sess.ID)
		cur, gerr := s.opts.Store.Get(ctx, v.sess.ID)
		if gerr != nil {
			return layout.Result{}, gerr
		}
		if cur == nil {
			return layout.Result{}, err
		}
		if gerr := s.rebuild(ctx, v, cur); gerr != nil {
			return layout.Result{}, gerr
		}
	}
	if err != nil {
		return layout.Result{}, err
	}
	return v.ctrl.Result(), nil
}

func (s *server) tryToggle(ctx context.Context, v *viewer, nodeID string) error {
	err := v.ctrl.Dispatch(ctx, view.Toggle{NodeID: nodeID})
	observability.Session().OnToggle(ctx, v.sess.ID, nodeID, err)
	if err != nil {
		return err
	}

	next := *v.sess
	next.Toggles = slices.Clone(v.sess.Toggles)
	next.Record(nodeID)
	next.Touch(s.opts.TTL)
	if err := s.opts.Store.Swap(ctx, &next, v.sess.Version); err != nil {
		_ = v.ctrl.Dispatch(ctx, view.Toggle{NodeID: nodeID})
		return err
	}
	v.sess = &next
	return nil
}

// prune drops viewers idle for longer than the session TTL. Their state
// survives in the store.
func (s *server) prune() int {
	cutoff := time.Now().Add(-s.opts.TTL)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, v := range s.viewers {
		v.mu.Lock()
		idle := v.lastSeen.Before(cutoff)
		v.mu.Unlock()
		if idle {
			delete(s.viewers, id)
			n++
		}
	}
	return n
}

func (v *viewer) result() layout.Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ctrl.Result()
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSONResponse(w, errs.HTTPStatus(err), errorResponse{Error: errs.UserMessage(err), Code: string(code)})
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = writeJSON(w, v)
}

// httpHooks reports every request to the observability HTTP hooks.
func httpHooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}
