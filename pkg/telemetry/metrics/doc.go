// Package metrics provides Prometheus metrics collection for webcore servers.
//
// # Metrics
//
//   - http_requests_total{method,route,status}
//   - http_request_duration_seconds{method,route}
//   - http_requests_in_flight
//   - tls_handshakes_total{outcome}
//   - ready
//
// Every name is prefixed with the configured namespace (default
// "surevoucher"). Go runtime and process collectors are registered when
// process metrics are enabled.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	collector.RecordRequest("GET", "/vouchers/{id}", 200, 12*time.Millisecond)
//
//	mux.Handle("/metrics", collector.Handler())
package metrics
