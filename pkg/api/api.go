// Package api serves the diagram generator over HTTP.
//
// # Routes
//
//	POST /api/generate                   questionnaire → architecture (archived)
//	POST /api/download-drawio            architecture → .drawio attachment
//	POST /api/render?format=&theme=      architecture → drawio, svg, json or tf
//	GET  /api/architectures              archived records, newest first
//	GET  /api/architectures/{id}         one archived record
//	GET  /api/architectures/{id}/drawio  .drawio for an archived record
//	GET  /healthz                        liveness
//
// Errors are JSON objects of the form {"error": "...", "code": "..."}; the
// status comes from [errors.HTTPStatus].
//
// # Usage
//
//	srv := api.New(runner, store.NewMemoryStore(), api.WithLogger(logger))
//	err := srv.ListenAndServe(ctx) // returns after ctx is cancelled and requests drain
package api

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/pipeline"
	"github.com/lzdw/lzdraw/pkg/render/layout"
	"github.com/lzdw/lzdraw/pkg/store"
)

// Server is the HTTP front end of a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	cfg    config.Server
	theme  string
	layout *layout.Config
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithConfig sets the listen address, timeouts and body limit.
func WithConfig(cfg config.Server) Option { return func(s *Server) { s.cfg = cfg } }

// WithTheme sets the theme used when a request names none.
func WithTheme(name string) Option { return func(s *Server) { s.theme = name } }

// WithLayout sets the layout spacing for every render.
func WithLayout(cfg layout.Config) Option { return func(s *Server) { s.layout = &cfg } }

// New creates a server. A nil store archives nothing and answers
// NOT_FOUND for every lookup.
func New(runner *pipeline.Runner, st store.Store, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		store:  st,
		logger: log.Default(),
		cfg:    config.Default().Server,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.recovery)
	r.Use(s.logging)
	r.Use(chimid.RealIP)
	r.Use(bodyLimit(s.cfg.MaxBodyBytes))
	if s.cfg.RequestTimeout > 0 {
		r.Use(chimid.Timeout(s.cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Post("/generate", s.handleGenerate)
		api.Post("/download-drawio", s.handleDownloadDrawio)
		api.Post("/render", s.handleRender)

		api.Route("/architectures", func(ar chi.Router) {
			ar.Get("/", s.handleListArchitectures)
			ar.Get("/{id}", s.handleGetArchitecture)
			ar.Get("/{id}/drawio", s.handleGetArchitectureDrawio)
		})
	})

	return r
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// options builds pipeline options from server defaults and request overrides.
func (s *Server) options(theme string, formats ...string) pipeline.Options {
	if theme == "" {
		theme = s.theme
	}
	return pipeline.Options{Theme: theme, Formats: formats, Layout: s.layout}
}
