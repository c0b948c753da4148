package middleware

import (
	"log/slog"
	"net/http"

	"surevoucher/webcore/pkg/telemetry/tracing"
)

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Default wraps h with the standard server stack. rec and tracer may be nil
// to skip metrics and tracing.
//
// Order (outermost to innermost):
//  1. RequestID: assign the request ID first so every later log carries it
//  2. Tracing: start the server span so logs carry the trace ID
//  3. Logging: log the final status, including recovered panics
//  4. Metrics: count every request by route pattern
//  5. Recovery: turn handler panics into 500 responses
func Default(h http.Handler, logger *slog.Logger, rec Recorder, tracer *tracing.Tracer) http.Handler {
	mws := []func(http.Handler) http.Handler{RequestID}
	if tracer != nil {
		mws = append(mws, Tracing(tracer))
	}
	mws = append(mws, Logging(logger))
	if rec != nil {
		mws = append(mws, Metrics(rec))
	}
	mws = append(mws, Recovery(logger))
	return Chain(h, mws...)
}
