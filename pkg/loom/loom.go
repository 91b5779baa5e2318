// Package loom is the application entry point. An App bundles a component
// tree, the state store its bindings read from, and the server that pushes
// re-renders to browsers.
//
//	app := loom.New(loom.WithTitle("Counter"))
//	app.State().Set("count", 0)
//	app.Column(func() {
//		app.Text("# Count: $count")
//		app.Button("Increment", func() {
//			app.State().Update("count", func(v any) any { return state.AsInt(v) + 1 })
//		})
//	})
//	app.ListenAndServe(ctx, ":8000")
package loom

import (
	"context"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/server"
	"github.com/loom-ui/loom/pkg/state"
	"github.com/loom-ui/loom/pkg/theme"
)

// Option configures an App.
type Option func(*config)

type config struct {
	store  *state.Store
	server server.Options
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(c *config) { c.server.Title = title }
}

// WithTheme sets the page palette.
func WithTheme(t theme.Theme) Option {
	return func(c *config) { c.server.Theme = t }
}

// WithDebug mounts the /debug inspection endpoints.
func WithDebug(enabled bool) Option {
	return func(c *config) { c.server.Debug = enabled }
}

// WithLogger sets the session logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) { c.server.Logger = l }
}

// WithWSPath sets the websocket endpoint path.
func WithWSPath(path string) Option {
	return func(c *config) { c.server.WSPath = path }
}

// WithEventRate limits how fast each session's events are handled.
func WithEventRate(perSecond float64, burst int) Option {
	return func(c *config) {
		c.server.EventsPerSecond = perSecond
		c.server.EventBurst = burst
	}
}

// WithStore uses s instead of a fresh store.
func WithStore(s *state.Store) Option {
	return func(c *config) { c.store = s }
}

// WithServerOptions replaces every server option at once.
func WithServerOptions(opts server.Options) Option {
	return func(c *config) { c.server = opts }
}

// App is a Loom application. The embedded tree provides the declaration
// methods (Text, Button, Input, Chart, Row, Column, Card).
type App struct {
	*core.Tree

	store  *state.Store
	engine *engine.Engine
	opts   server.Options

	once sync.Once
	srv  *server.Server
}

// New returns an empty application.
func New(opts ...Option) *App {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.store == nil {
		c.store = state.New()
	}

	tree := core.NewTree()
	return &App{
		Tree:   tree,
		store:  c.store,
		engine: engine.New(tree, c.store),
		opts:   c.server,
	}
}

// State returns the store that bindings resolve against.
func (a *App) State() *state.Store { return a.store }

// Engine returns the interaction engine.
func (a *App) Engine() *engine.Engine { return a.engine }

// Render returns the current view of the whole tree.
func (a *App) Render() render.View { return a.engine.Render() }

// Server returns the HTTP server, creating it on first use.
func (a *App) Server() *server.Server {
	a.once.Do(func() {
		a.srv = server.New(a.engine, a.opts)
	})
	return a.srv
}

// Handler returns the HTTP handler serving the app.
func (a *App) Handler() http.Handler { return a.Server().Handler() }

// ListenAndServe serves the app on addr until ctx is cancelled.
func (a *App) ListenAndServe(ctx context.Context, addr string) error {
	return a.Server().ListenAndServe(ctx, addr)
}
