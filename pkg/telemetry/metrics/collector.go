package metrics

import (
	"time"

	"surevoucher/webcore/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns the Prometheus registry served on /metrics and the metric
// families recorded by the server, its middleware and the TLS listener.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics *RequestMetrics
	tlsMetrics     *TLSMetrics
	ready          prometheus.Gauge
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
// A nil cfg uses the defaults.
//
// Example:
//
//	cfg := &config.MetricsConfig{Namespace: "surevoucher", ProcessMetrics: true}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.Default().Metrics
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	if cfg.ProcessMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.tlsMetrics = NewTLSMetrics(cfg, registry)

	c.ready = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "ready",
		Help:      "Whether the main server is accepting traffic (1) or not (0)",
	})
	registry.MustRegister(c.ready)

	return c
}

// Registry returns the underlying Prometheus registry so callers can register
// their own collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRequest records a completed HTTP request.
//
// Parameters:
//   - method: HTTP method
//   - route: matched route pattern, or "unmatched"
//   - status: response status code
//   - duration: time spent serving the request
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requestMetrics.RecordRequest(method, route, status, duration)
}

// RequestStarted increments the in-flight gauge. Pair with RequestFinished.
func (c *Collector) RequestStarted() {
	c.requestMetrics.inFlight.Inc()
}

// RequestFinished decrements the in-flight gauge.
func (c *Collector) RequestFinished() {
	c.requestMetrics.inFlight.Dec()
}

// RecordHandshake counts a TLS handshake by outcome ("established" or
// "rejected").
func (c *Collector) RecordHandshake(outcome string) {
	c.tlsMetrics.RecordHandshake(outcome)
}

// SetReady updates the readiness gauge.
func (c *Collector) SetReady(ready bool) {
	if ready {
		c.ready.Set(1)
		return
	}
	c.ready.Set(0)
}
