package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

// newPropagator handles W3C Trace Context (traceparent, tracestate) and W3C
// Baggage.
func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// Extract returns ctx carrying the trace context found in headers. If none
// is found, ctx is returned unchanged.
func (t *Tracer) Extract(ctx context.Context, headers http.Header) context.Context {
	return t.propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context of ctx into headers, for outgoing calls:
//
//	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
//	tracer.Inject(ctx, req.Header)
func (t *Tracer) Inject(ctx context.Context, headers http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}
