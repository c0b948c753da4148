// Package telemetry groups the observability packages of webcore.
//
// # Components
//
//   - logging: slog loggers carrying request and trace IDs
//   - metrics: Prometheus request, handshake and readiness metrics
//   - tracing: OpenTelemetry server spans exported over OTLP/gRPC
//   - health: the health server answering /healthz, /ready and /metrics
//
// # Usage
//
//	logger, _ := logging.New(logging.FromConfig(cfg.Logging))
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	tracer, _ := tracing.New(ctx, &cfg.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
// The server package wires all of them; most callers never construct them
// directly.
package telemetry
