// Package server serves a Loom engine to browsers: the HTML page, the
// websocket interaction loop and the JSON inspection endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/htmlview"
	"github.com/loom-ui/loom/pkg/metrics"
	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/server/client"
	"github.com/loom-ui/loom/pkg/theme"
)

// DefaultWSPath is the websocket endpoint used when Options.WSPath is empty.
const DefaultWSPath = "/ws"

// shutdownTimeout bounds how long ListenAndServe waits for handlers to
// finish after its context is cancelled.
const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Title is the page title.
	Title string
	// WSPath is the websocket endpoint path.
	WSPath string
	// Debug mounts the /debug inspection endpoints.
	Debug bool
	// EventsPerSecond limits how fast one session's events are handled.
	// Excess events wait; none are dropped. Zero disables the limit.
	EventsPerSecond float64
	// EventBurst is the limiter burst size. Values below 1 mean 1.
	EventBurst int
	// Theme is the page palette. The zero value means theme.Light().
	Theme theme.Theme
	// Logger receives session logs. Nil means the logrus standard logger.
	Logger logrus.FieldLogger
	// Metrics receives counters. Nil creates a private registry.
	Metrics *metrics.Metrics
	// CheckOrigin overrides the websocket origin check. Nil accepts
	// same-host origins only.
	CheckOrigin func(r *http.Request) bool
}

// Server exposes one engine over HTTP.
type Server struct {
	engine   *engine.Engine
	opts     Options
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
	router   chi.Router
	page     htmlview.Page
	load     *LoadHistory

	mu       sync.Mutex
	sessions map[*session]struct{}
}

// New returns a server for e.
func New(e *engine.Engine, opts Options) *Server {
	if opts.WSPath == "" {
		opts.WSPath = DefaultWSPath
	}
	if opts.Title == "" {
		opts.Title = "Loom"
	}
	if opts.Theme == (theme.Theme{}) {
		opts.Theme = theme.Light()
	}
	if opts.EventBurst < 1 {
		opts.EventBurst = 1
	}

	s := &Server{
		engine:   e,
		opts:     opts,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		sessions: make(map[*session]struct{}),
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	e.OnRender = s.metrics.ObserveRender

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     opts.CheckOrigin,
	}
	if s.upgrader.CheckOrigin == nil {
		s.upgrader.CheckOrigin = sameHost
	}

	s.page = htmlview.Page{
		Title:    opts.Title,
		ThemeCSS: opts.Theme.CSSVariables(),
		Script:   client.Script,
		WSPath:   opts.WSPath,
	}
	if opts.Debug {
		s.load = NewLoadHistory(0, 0)
	}
	s.router = s.routes()
	return s
}

// Engine returns the served engine.
func (s *Server) Engine() *engine.Engine { return s.engine }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *metrics.Metrics { return s.metrics }

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get(s.opts.WSPath, s.handleWebsocket)
	r.Get("/view.json", s.handleView)
	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	if s.opts.Debug {
		r.Route("/debug", func(r chi.Router) {
			r.Get("/state", s.handleDebugState)
			r.Get("/registry", s.handleDebugRegistry)
			r.Get("/tree", s.handleDebugTree)
			r.Get("/renders", s.handleDebugRenders)
			r.Get("/load", s.handleDebugLoad)
		})
	}
	return r
}

// ListenAndServe listens on addr and serves until ctx is cancelled, then
// shuts down gracefully and closes open sessions.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	// Bind first to fail fast on address conflicts.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeSessions)

	s.log.WithField("addr", ln.Addr().String()).Info("serving")

	if s.load != nil {
		loadCtx, stop := context.WithCancel(ctx)
		defer stop()
		go s.recordLoad(loadCtx)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	v := s.engine.Render()
	var sb strings.Builder
	if err := s.page.Render(&sb, v); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(sb.String()))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	data, err := render.Encode(s.engine.Render())
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// SessionCount returns the number of open websocket sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	s.metrics.SessionOpened()
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	_, ok := s.sessions[sess]
	delete(s.sessions, sess)
	s.mu.Unlock()
	if ok {
		s.metrics.SessionClosed()
	}
}

// closeSessions sends a going-away close frame to every open session.
// Hijacked websocket connections are not closed by http.Server.Shutdown.
func (s *Server) closeSessions() {
	s.mu.Lock()
	open := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		sess.close(websocket.CloseGoingAway, "server shutting down")
	}
}

// sameHost accepts requests without an Origin header and those whose origin
// host matches the request host.
func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, host, ok := strings.Cut(origin, "://")
	return ok && strings.EqualFold(host, r.Host)
}
