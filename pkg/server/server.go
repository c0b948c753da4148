package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"sync"

	"go.uber.org/atomic"

	"surevoucher/webcore/pkg/cli"
	"surevoucher/webcore/pkg/config"
	tlsx "surevoucher/webcore/pkg/security/tls"
	"surevoucher/webcore/pkg/server/middleware"
	"surevoucher/webcore/pkg/telemetry/health"
	"surevoucher/webcore/pkg/telemetry/metrics"
	"surevoucher/webcore/pkg/telemetry/tracing"
)

// Server runs an application router on the main listener next to a health
// server reporting liveness, readiness and metrics.
type Server struct {
	cfg        config.Config
	router     http.Handler
	logger     *slog.Logger
	readiness  *health.Readiness
	metrics    *metrics.Collector
	tracer     *tracing.Tracer
	signals    []os.Signal
	healthOpts []health.Option
	health     *health.Server

	state   atomic.Int32
	started atomic.Bool

	mu   sync.Mutex
	addr net.Addr

	ready    chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a server for router. cfg may be nil to use config.Default();
// zero-valued fields of cfg are filled with their defaults and cfg itself is
// not modified.
func New(router http.Handler, cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:    *cfg,
		router: router,
		logger: slog.Default(),
		ready:  make(chan struct{}),
		stopCh: make(chan struct{}),
	}
	config.ApplyDefaults(&s.cfg)

	for _, opt := range opts {
		opt(s)
	}

	if s.readiness == nil {
		s.readiness = health.NewReadiness()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector(&s.cfg.Metrics, nil)
	}
	s.readiness.OnChange(s.metrics.SetReady)

	healthOpts := append([]health.Option{
		health.WithLogger(s.logger),
		health.WithMetrics(s.metrics.Handler()),
	}, s.healthOpts...)
	s.health = health.NewServer(s.readiness, healthOpts...)

	return s
}

// Run starts the health server, then the main server, and blocks until ctx
// is cancelled, a shutdown signal arrives or Shutdown is called. In-flight
// requests are drained for at most the configured shutdown timeout; whatever
// is left after that is closed and Run still returns nil.
//
// Run returns an error when a bind address is malformed (before anything is
// bound), when TLS material cannot be loaded, when the main listener cannot
// be bound, or when serving fails. A health server bind failure is only
// logged. Run can be called once.
func (s *Server) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	mainAddr, err := parseAddr(RoleMain, s.cfg.Addr())
	if err != nil {
		return err
	}
	healthAddr, err := parseAddr(RoleHealth, s.cfg.HealthAddr())
	if err != nil {
		return err
	}

	ctx, stop := cli.NotifyShutdown(ctx, s.signals...)
	defer stop()

	s.setState(HealthStarting)
	healthCtx, cancelHealth := context.WithCancel(context.Background())
	healthDone := make(chan struct{})
	go func() {
		defer close(healthDone)
		s.runHealth(healthCtx, healthAddr)
	}()
	defer func() {
		cancelHealth()
		<-healthDone
		s.setState(Stopped)
		s.logger.Info("server stopped")
	}()

	ln, err := s.listen(mainAddr)
	if err != nil {
		s.logger.Error("main server failed to start", "error", err)
		return err
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	srv := s.httpServer()
	serveErr := make(chan error, 1)

	s.readiness.MarkReady()
	s.setState(Serving)
	close(s.ready)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	s.logger.Info("server listening",
		"addr", ln.Addr().String(),
		"tls", s.cfg.TLS.Enabled(),
	)

	select {
	case err := <-serveErr:
		// Serve only returns by itself when the listener failed.
		s.logger.Error("main server failed", "error", err)
		s.drain(srv)
		return fmt.Errorf("serve %s: %w", ln.Addr(), err)
	case <-ctx.Done():
		s.logger.Info("shutdown initiated", "cause", context.Cause(ctx))
	case <-s.stopCh:
		s.logger.Info("shutdown requested")
	}

	s.drain(srv)
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", ln.Addr(), err)
	}
	return nil
}

// Shutdown asks a running server to stop. It returns immediately; Run
// returns once the drain is over. Calling it before Run makes Run stop as
// soon as it is serving.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Ready is closed once the server enters Serving.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the main listener address, or nil before it is bound.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// HealthAddr returns the health listener address, or nil if it is not bound
// (yet, or at all).
func (s *Server) HealthAddr() net.Addr {
	return s.health.Addr()
}

// HealthBound is closed once the health server bind attempt has completed.
func (s *Server) HealthBound() <-chan struct{} {
	return s.health.Bound()
}

// Readiness returns the readiness flag reported on /ready.
func (s *Server) Readiness() *health.Readiness {
	return s.readiness
}

// Metrics returns the collector served on /metrics.
func (s *Server) Metrics() *metrics.Collector {
	return s.metrics
}

func (s *Server) setState(st State) {
	old := State(s.state.Swap(int32(st)))
	s.logger.Debug("server state changed", "from", old.String(), "to", st.String())
}

func (s *Server) runHealth(ctx context.Context, addr netip.AddrPort) {
	err := s.health.Run(ctx, addr.String())
	if err == nil {
		return
	}
	if s.health.Addr() == nil {
		err = &BindError{Role: RoleHealth, Addr: addr.String(), Err: err}
		s.logger.Warn("health server unavailable, continuing without probes", "error", err)
		return
	}
	s.logger.Warn("health server stopped", "error", err)
}

// listen loads TLS material when configured and binds the main listener.
// Certificates are loaded first so a bad key pair never opens the port.
func (s *Server) listen(addr netip.AddrPort) (net.Listener, error) {
	var tlsConfig *tls.Config
	if s.cfg.TLS.Enabled() {
		var err error
		if tlsConfig, err = s.loadTLS(); err != nil {
			return nil, err
		}
	}

	var lc net.ListenConfig
	raw, err := lc.Listen(context.Background(), "tcp", addr.String())
	if err != nil {
		return nil, &BindError{Role: RoleMain, Addr: addr.String(), Err: err}
	}
	if tlsConfig == nil {
		return raw, nil
	}

	return tlsx.NewListener(raw, tlsConfig, tlsx.ListenerOptions{
		HandshakeTimeout: s.cfg.TLS.HandshakeTimeout,
		Logger:           s.logger,
		OnHandshake: func(r tlsx.HandshakeResult) {
			s.metrics.RecordHandshake(r.Outcome.String())
		},
	}), nil
}

func (s *Server) loadTLS() (*tls.Config, error) {
	cert, err := tlsx.LoadKeyPair(s.cfg.TLS.CertPath, s.cfg.TLS.KeyPath)
	if err != nil {
		return nil, err
	}
	tlsx.LogCertificate(s.logger, &cert)
	return tlsx.ServerConfig(cert, s.cfg.TLS.MinVersion)
}

func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Handler:           middleware.Default(s.router, s.logger, s.metrics, s.tracer),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
}

// drain clears readiness, stops accepting and waits for in-flight requests
// up to the shutdown timeout before closing what is left.
func (s *Server) drain(srv *http.Server) {
	s.readiness.MarkNotReady()
	s.setState(ShuttingDown)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("drain timed out, closing remaining connections",
			"timeout", s.cfg.ShutdownTimeout.String(),
			"error", err,
		)
		_ = srv.Close()
		return
	}
	s.logger.Info("drain complete")
}

// parseAddr requires an IP literal and a numeric port; host names are not
// resolved.
func parseAddr(role, addr string) (netip.AddrPort, error) {
	ap, err := netip.ParseAddrPort(addr)
	if err != nil {
		return netip.AddrPort{}, &AddressParseError{Role: role, Addr: addr, Err: err}
	}
	return ap, nil
}
