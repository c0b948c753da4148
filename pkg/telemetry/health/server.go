package health

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Endpoint paths served by Server.
const (
	PathLiveness  = "/healthz"
	PathReadiness = "/ready"
	PathMetrics   = "/metrics"
	PathVersion   = "/version"
)

// shutdownGrace bounds the health server's own shutdown. Probes are short, so
// nothing needs a long drain here.
const shutdownGrace = 2 * time.Second

// Server is the auxiliary health/metrics HTTP server. It runs independently
// of the main server and keeps answering while the main server drains.
type Server struct {
	handler http.Handler
	logger  *slog.Logger

	mu    sync.Mutex
	addr  net.Addr
	bound chan struct{}
	once  sync.Once
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger  *slog.Logger
	metrics http.Handler
	version *VersionInfo
}

// WithLogger sets the logger used for server lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *serverOptions) {
		o.logger = logger
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(o *serverOptions) {
		o.metrics = h
	}
}

// WithVersion mounts the build information on /version.
func WithVersion(version, commit, buildTime string) Option {
	return func(o *serverOptions) {
		o.version = &VersionInfo{Version: version, Commit: commit, BuildTime: buildTime}
	}
}

// NewServer creates a health server reporting ready.
func NewServer(ready *Readiness, opts ...Option) *Server {
	o := serverOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Get(PathLiveness, LivenessHandler())
	r.Head(PathLiveness, LivenessHandler())
	r.Get(PathReadiness, ReadinessHandler(ready))
	r.Head(PathReadiness, ReadinessHandler(ready))
	if o.metrics != nil {
		r.Method(http.MethodGet, PathMetrics, o.metrics)
	}
	if o.version != nil {
		h := VersionHandler(o.version.Version, o.version.Commit, o.version.BuildTime)
		r.Get(PathVersion, h)
		r.Head(PathVersion, h)
	}

	return &Server{
		handler: r,
		logger:  o.logger,
		bound:   make(chan struct{}),
	}
}

// Handler returns the router serving the health endpoints.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Bound is closed once a bind attempt has completed, successfully or not.
func (s *Server) Bound() <-chan struct{} {
	return s.bound
}

// Addr returns the bound address, or nil before binding or after a failed
// bind.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run binds addr and serves until ctx is cancelled. A bind failure returns
// the listen error at once with Addr left nil; it is never retried.
func (s *Server) Run(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		s.markBound(nil)
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves the health endpoints on ln until ctx is cancelled, then shuts
// down. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.markBound(ln.Addr())

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("health server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Warn("health server stopped", "error", err)
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
	}
	<-errCh

	s.logger.Debug("health server stopped")
	return nil
}

func (s *Server) markBound(addr net.Addr) {
	s.mu.Lock()
	s.addr = addr
	s.mu.Unlock()
	s.once.Do(func() { close(s.bound) })
}
