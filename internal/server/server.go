package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the HTTP layer routes requests to.
type Deps struct {
	Store    Store
	Sessions *Registry
	Broker   *Broker
	Metrics  *Metrics
	SPADir   string
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New builds the HTTP server. mount, when non-nil, adds routes owned by
// the caller such as health checks.
func New(addr string, logger *slog.Logger, deps Deps, mount func(r chi.Router)) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(logger, deps, mount),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler returns the router alone, for tests and embedding.
func NewHandler(logger *slog.Logger, deps Deps, mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	if mount != nil {
		mount(r)
	}
	addRoutes(r, logger, deps)
	return r
}

// Run serves until Shutdown. Request contexts derive from ctx, so
// stream and socket handlers return as soon as ctx is cancelled instead
// of holding Shutdown open.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

const shutdownGrace = 10 * time.Second

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
