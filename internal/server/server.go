// Package server exposes plugin sessions over HTTP: the host connects over a
// WebSocket and the page runtime edits the session through a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	formplugin "github.com/goliatone/go-formplugin"
	"github.com/goliatone/go-formplugin/internal/config"
	"github.com/goliatone/go-formplugin/pkg/dictionary"
	"github.com/goliatone/go-formplugin/pkg/gateway"
	"github.com/goliatone/go-formplugin/pkg/plugin"
	"github.com/goliatone/go-formplugin/pkg/render"
	"github.com/goliatone/go-formplugin/pkg/storage"
)

// Server wires configuration, session storage and renderers into an HTTP
// handler.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	rules     dictionary.Rules
	store     storage.Store
	renderers *render.Registry
	sessions  *Sessions
	now       func() time.Time

	handler http.Handler
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the init-data store shared by all sessions.
func WithStore(store storage.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRules overrides the dictionary rules.
func WithRules(rules dictionary.Rules) Option {
	return func(s *Server) {
		s.rules = rules
	}
}

// WithRenderers replaces the renderer registry.
func WithRenderers(reg *render.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.renderers = reg
		}
	}
}

// WithClock overrides the session clock.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a server from cfg. Rules are read from the configured rules file
// unless WithRules is given.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:      cfg,
		logger:   zap.NewNop(),
		rules:    dictionary.Default(),
		store:    storage.NewMemory(),
		sessions: NewSessions(),
		now:      time.Now,
	}
	if cfg.Plugin.RulesFile != "" {
		rules, err := dictionary.LoadFile(cfg.Plugin.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("server: load rules: %w", err)
		}
		s.rules = rules
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderers == nil {
		reg, err := DefaultRenderers()
		if err != nil {
			return nil, err
		}
		s.renderers = reg
	}
	s.handler = s.routes()
	return s, nil
}

// DefaultRenderers registers the html, json and tui renderers. html is the
// fallback.
func DefaultRenderers() (*render.Registry, error) {
	return formplugin.NewRenderers()
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions returns the live session table.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// Run serves on the configured address until ctx ends, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server: listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
		defer cancel()
		s.logger.Info("server: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/plugin/ws", s.handleHost)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleRender))
			r.Delete("/", s.withSession(s.handleDeleteSession))
			r.Get("/response", s.withSession(s.handleGetResponse))
			r.Put("/response", s.withSession(s.handlePutResponse))
			r.Post("/items/text", s.withSession(s.handleSetText))
			r.Post("/items/select", s.withSession(s.handleSelect))
			r.Post("/items/signature", s.withSession(s.handleSignature))
			r.Post("/back", s.withSession(s.handleBack))
			r.Post("/toggle/{pane}", s.withSession(s.handleToggle))
			r.Post("/submit", s.withSession(s.handleSubmit))
			r.Get("/alerts", s.withSession(s.handleAlerts))
			r.Get("/messages", s.withSession(s.handleMessages))
		})
	})

	assets := http.FileServer(http.FS(formplugin.RuntimeAssetsFS()))
	prefix := s.cfg.Server.AssetsPrefix
	r.Handle(prefix+"/*", http.StripPrefix(prefix, assets))
	return r
}

// newSession creates and registers a plugin session posting through poster.
func (s *Server) newSession(poster gateway.Poster, referrer, transport string) *Session {
	id := uuid.New().String()
	logger := s.logger.With(zap.String("session", id))

	p := plugin.New(poster,
		plugin.WithID(id),
		plugin.WithRules(s.rules),
		plugin.WithStore(s.store),
		plugin.WithLogger(logger),
		plugin.WithClock(s.now),
		plugin.WithBackScreens(s.cfg.Plugin.BackScreens...),
		plugin.WithAlerter(plugin.AlerterFunc(func(message string) {
			logger.Info("plugin: alert", zap.String("message", message))
		})),
		plugin.WithGatewayOptions(
			gateway.WithReferrer(referrer),
			gateway.WithHost(s.cfg.Plugin.Host),
			gateway.WithDebug(s.cfg.Logging.Debug),
		),
	)
	sess := &Session{
		ID:        id,
		CreatedAt: s.now(),
		Plugin:    p,
		Transport: transport,
		Referrer:  referrer,
	}
	if box, ok := poster.(*outbox); ok {
		sess.outbox = box
	}
	s.sessions.Add(sess)
	return sess
}

// referrerFor prefers the configured trusted referrer over the request's.
func (s *Server) referrerFor(r *http.Request) string {
	if s.cfg.Plugin.Referrer != "" {
		return s.cfg.Plugin.Referrer
	}
	if ref := r.Header.Get("X-Plugin-Referrer"); ref != "" {
		return ref
	}
	return r.Referer()
}

func (s *Server) renderOptions(sess *Session) render.RenderOptions {
	return render.RenderOptions{
		APIBase:    "/sessions/" + sess.ID,
		AssetsBase: s.cfg.Server.AssetsPrefix,
		Theme:      s.cfg.RendererTheme(),
		Locale:     s.cfg.Plugin.Locale,
	}
}
