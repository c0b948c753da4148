// Package tracing provides OpenTelemetry request tracing for the main server.
//
// # Configuration
//
//	tracing:
//	  enabled: true
//	  endpoint: "otel-collector:4317"   # OTLP/gRPC
//	  insecure: true
//	  service_name: "surevoucher-webcore"
//	  sampler: ratio                    # always, never, ratio
//	  sample_ratio: 0.1
//
// # Trace Context Propagation
//
// Incoming W3C Trace Context headers are honoured:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// so the server span joins the caller's trace, and a sampled parent is always
// recorded whatever the local sampler says.
//
// # Usage
//
//	tracer, err := tracing.New(ctx, &cfg.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "voucher.redeem")
//	defer span.End()
//
// With tracing disabled, New returns a noop tracer whose spans cost next to
// nothing.
package tracing
