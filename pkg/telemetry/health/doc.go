// Package health provides the auxiliary health/metrics server.
//
// # Endpoints
//
//   - GET|HEAD /healthz: liveness, always 200 "ok"
//   - GET|HEAD /ready: readiness, 200 "ok" once the main server serves and
//     200 "starting" before that or while draining
//   - GET /metrics: Prometheus exposition, when a metrics handler is set
//   - GET|HEAD /version: build information, when version info is set
//
// The server binds its own address (default 127.0.0.1:18080) and runs in its
// own goroutine. A failed bind is logged and does not affect the main server.
//
// # Usage
//
//	ready := health.NewReadiness()
//	hs := health.NewServer(ready, health.WithMetrics(collector.Handler()))
//	go hs.Run(ctx, "127.0.0.1:18080")
//
//	// once the main listener is bound
//	ready.MarkReady()
package health
