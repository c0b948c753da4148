package server

import (
	"log/slog"
	"os"

	"surevoucher/webcore/pkg/telemetry/health"
	"surevoucher/webcore/pkg/telemetry/metrics"
	"surevoucher/webcore/pkg/telemetry/tracing"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithReadiness shares a readiness flag with the caller. By default the
// server owns a private one, reachable through Readiness().
func WithReadiness(r *health.Readiness) Option {
	return func(s *Server) {
		s.readiness = r
	}
}

// WithMetrics sets the collector used for request and handshake metrics and
// served on /metrics. Defaults to a collector on a fresh registry built from
// the metrics section of the configuration.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithTracer starts a server span for every request on the main listener.
// Without it requests are not traced.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// WithSignals replaces the signals that trigger shutdown. Defaults to
// cli.ShutdownSignals().
func WithSignals(sigs ...os.Signal) Option {
	return func(s *Server) {
		s.signals = sigs
	}
}

// WithVersion exposes build information on the health server's /version.
func WithVersion(version, commit, buildTime string) Option {
	return func(s *Server) {
		s.healthOpts = append(s.healthOpts, health.WithVersion(version, commit, buildTime))
	}
}
