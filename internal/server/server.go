// Package server exposes the component registry and the query processor
// over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/components
//	POST /v1/functions/{name}     {"arguments": [...]}         -> {"result": ...}
//	POST /v1/data-sources/{name}  {"config": {...}}            -> {"state": ...}
//	POST /v1/query                {"program", "input", "language", "channel"}
//
// Request and response bodies go through the native codec, so object key
// order and number kinds survive the round trip. Failures are reported as
// {"error": {"kind": ..., "message": ...}}.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/jqcty/internal/provider"
	"github.com/roach88/jqcty/internal/query"
)

// DefaultTimeout bounds each request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

// Config holds dependencies and settings for a Server.
type Config struct {
	Registry  *provider.Registry
	Processor *query.Processor
	Logger    *zap.Logger
	Timeout   time.Duration
}

// Server serves the HTTP API.
type Server struct {
	registry *provider.Registry
	proc     *query.Processor
	logger   *zap.Logger
	timeout  time.Duration
	router   chi.Router
}

// New creates a Server. Registry and Processor are required.
func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("server: registry is required")
	}
	if cfg.Processor == nil {
		return nil, fmt.Errorf("server: processor is required")
	}

	s := &Server{
		registry: cfg.Registry,
		proc:     cfg.Processor,
		logger:   cfg.Logger,
		timeout:  cfg.Timeout,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		s.requestLogger,
		middleware.Recoverer,
		middleware.Timeout(s.timeout),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, KindNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, KindMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/components", s.handleComponents)
		r.Post("/functions/{name}", s.handleFunction)
		r.Post("/data-sources/{name}", s.handleDataSource)
		r.Post("/query", s.handleQuery)
	})

	return r
}

// requestLogger logs each request at debug level with its request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// Serve listens on addr and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", ln.Addr().String()))

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
