package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"surevoucher/webcore/pkg/config"
	"surevoucher/webcore/pkg/telemetry/tracing"
)

func newTestTracer(t *testing.T) (*tracing.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	cfg := &config.TracingConfig{ServiceName: "test", Sampler: tracing.SamplerAlways}
	tracer, err := tracing.NewWithExporter(cfg, "dev", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func spanAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_NamesSpanAfterRoute(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	r := chi.NewRouter()
	r.Get("/vouchers/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	handler := RequestID(Tracing(tracer)(r))

	req := httptest.NewRequest(http.MethodGet, "/vouchers/42", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	if got := resp.Header().Get(TraceIDHeader); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("X-Trace-ID = %q, want the incoming trace ID", got)
	}

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}

	ok := spans[0]
	if ok.Name != "GET /vouchers/{id}" {
		t.Errorf("span name = %q, want %q", ok.Name, "GET /vouchers/{id}")
	}
	if ok.SpanKind != trace.SpanKindServer {
		t.Errorf("span kind = %v, want server", ok.SpanKind)
	}
	if ok.Parent.SpanID().String() != "00f067aa0ba902b7" {
		t.Errorf("parent span = %s, want 00f067aa0ba902b7", ok.Parent.SpanID())
	}
	if v, _ := spanAttr(ok.Attributes, "http.route"); v.AsString() != "/vouchers/{id}" {
		t.Errorf("http.route = %q", v.AsString())
	}
	if v, _ := spanAttr(ok.Attributes, "http.response.status_code"); v.AsInt64() != 200 {
		t.Errorf("http.response.status_code = %d, want 200", v.AsInt64())
	}
	if v, _ := spanAttr(ok.Attributes, "request.id"); v.AsString() == "" {
		t.Error("span lacks request.id")
	}
	if ok.Status.Code == codes.Error {
		t.Error("200 response marked as error")
	}

	failed := spans[1]
	if failed.Status.Code != codes.Error {
		t.Errorf("503 status = %v, want error", failed.Status.Code)
	}
	if failed.Parent.IsValid() {
		t.Error("request without traceparent should start a new trace")
	}
}

func TestDefault_LogsCarryTraceID(t *testing.T) {
	tracer, _ := newTestTracer(t)

	r := chi.NewRouter()
	r.Get("/hello", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hi"))
	})

	var buf bytes.Buffer
	handler := Default(r, jsonLogger(&buf), nil, tracer)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/hello", nil))

	traceID := resp.Header().Get(TraceIDHeader)
	if traceID == "" {
		t.Fatal("missing X-Trace-ID")
	}
	if !strings.Contains(buf.String(), `"trace_id":"`+traceID+`"`) {
		t.Errorf("completion log lacks trace_id %s: %s", traceID, buf.String())
	}
}
