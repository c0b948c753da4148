package metrics

import (
	"surevoucher/webcore/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// TLSMetrics counts TLS handshakes on the main listener.
type TLSMetrics struct {
	handshakesTotal *prometheus.CounterVec
}

// NewTLSMetrics creates and registers TLS metrics with the provided registry.
func NewTLSMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TLSMetrics {
	tm := &TLSMetrics{
		handshakesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tls_handshakes_total",
				Help:      "Total number of TLS handshakes by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(tm.handshakesTotal)

	return tm
}

// RecordHandshake counts one handshake.
func (tm *TLSMetrics) RecordHandshake(outcome string) {
	tm.handshakesTotal.WithLabelValues(outcome).Inc()
}
