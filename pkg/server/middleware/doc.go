// Package middleware provides the HTTP middleware wrapped around every
// application router served by the main server.
//
// # Middleware Chain
//
//	handler = middleware.Default(router, logger, collector, tracer)
//
// is equivalent to
//
//	handler = RequestID(Tracing(tracer)(Logging(logger)(Metrics(collector)(Recovery(logger)(router)))))
//
// # Request ID
//
// RequestID generates a UUID v4 for each request unless the client sent a
// usable X-Request-ID:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is echoed in the response header and attached to every record
// logged with the request context.
//
// # Tracing
//
// Tracing continues the caller's W3C trace (traceparent header) or starts a
// new one, names the server span after the matched chi route and echoes the
// trace ID in X-Trace-ID.
package middleware
