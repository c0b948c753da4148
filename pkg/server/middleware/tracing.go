package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"surevoucher/webcore/pkg/telemetry/logging"
	"surevoucher/webcore/pkg/telemetry/tracing"
)

// TraceIDHeader echoes the trace ID of each request.
const TraceIDHeader = "X-Trace-ID"

// Tracing starts a server span for each request, continuing the caller's
// trace when a traceparent header is present. The span is named
// "METHOD /route/{pattern}" once the router has matched.
func Tracing(t *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := t.Extract(r.Context(), r.Header)
			ctx, span := t.Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
					attribute.String("request.id", logging.GetRequestID(r.Context())),
				),
			)
			defer span.End()

			if id := tracing.TraceID(ctx); id != "" {
				w.Header().Set(TraceIDHeader, id)
			}

			r, rctx := withRouteContext(r.WithContext(ctx))
			rw := newResponseWriter(w)
			defer func() {
				if route := rctx.RoutePattern(); route != "" {
					span.SetName(r.Method + " " + route)
					span.SetAttributes(attribute.String("http.route", route))
				}
				span.SetAttributes(attribute.Int("http.response.status_code", rw.statusCode))
				if rw.statusCode >= http.StatusInternalServerError {
					span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
