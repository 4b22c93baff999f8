package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/html"

	"github.com/ardnew/haiku/bind"
	"github.com/ardnew/haiku/log"
	"github.com/ardnew/haiku/pkg"
)

// DefaultMaxBody limits the size of request bodies.
const DefaultMaxBody = 1 << 20

var (
	ErrRequest = pkg.NewError("invalid request")
	ErrServe   = pkg.NewError("serve HTTP")
)

// Server routes HTTP requests to a [bind.Binder].
type Server struct {
	binder  *bind.Binder[*html.Node]
	logger  log.Logger
	metrics *Metrics
	maxBody int64
	router  chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics sets the collectors requests are recorded in. By default each
// server registers its own collectors with a private registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithMaxBody limits request bodies to n bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New returns a [Server] expanding and binding with binder.
func New(binder *bind.Binder[*html.Node], opts ...Option) *Server {
	s := &Server{binder: binder, maxBody: DefaultMaxBody}
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = NewMetrics(prometheus.NewRegistry())
	}

	s.router = s.routes()

	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(assignRequestID)
	r.Use(s.observe)

	r.Post("/expand", s.handleExpand)
	r.Post("/bind", s.handleBind)
	r.Get("/templates", s.handleTemplates)
	r.Get("/templates/{id}", s.handleTemplate)
	r.Get("/preview", s.handlePreview)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Metrics returns the collectors requests are recorded in.
func (s *Server) Metrics() *Metrics { return s.metrics }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)

	go func() { errc <- srv.ListenAndServe() }()

	s.logger.InfoContext(ctx, "listening", slog.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return ErrServe.Wrap(err).With(slog.String("addr", addr))

	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdown); err != nil {
			return ErrServe.Wrap(err).With(slog.String("addr", addr))
		}

		return nil
	}
}
