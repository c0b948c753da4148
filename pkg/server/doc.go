// Package server runs an application router behind the standard SureVoucher
// bootstrap: a plain or TLS main listener, an auxiliary health server and a
// bounded graceful shutdown.
//
// # Basic Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	logger, _ := logging.New(logging.FromConfig(cfg.Logging))
//
//	srv := server.New(router.BasicRouter(), cfg, server.WithLogger(logger))
//	if err := srv.Run(context.Background()); err != nil {
//	    return err
//	}
//
// # Lifecycle
//
// Run moves the server through
//
//	Idle → HealthStarting → Serving → ShuttingDown → Stopped
//
//  1. Both bind addresses are parsed as IP:port; a malformed one fails with
//     *AddressParseError before anything is bound.
//  2. The health server is started in the background. If its port cannot be
//     bound a warning is logged and the main server starts anyway.
//  3. TLS material is loaded when tls.cert_path and tls.key_path are set and
//     the main listener is bound. Either failure is returned.
//  4. Readiness is set and requests are served.
//  5. On the first shutdown signal (SIGINT, SIGTERM, SIGQUIT or SIGHUP),
//     context cancellation or Shutdown call, readiness is cleared and
//     in-flight requests drain for up to shutdown_timeout. Connections still
//     open after that are closed.
//  6. The health server is stopped last, so /ready reports "starting" for
//     the whole drain.
//
// # Health Endpoints
//
//	GET /healthz   200 "ok" while the process runs
//	GET /ready     200 "ok" while serving, 200 "starting" otherwise
//	GET /metrics   Prometheus exposition
//
// # Middleware
//
// The router is wrapped with request IDs, request logging, request metrics
// and panic recovery; see package middleware. WithTracer adds a server span
// per request.
package server
