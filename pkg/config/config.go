package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration structure for a webcore process.
// It carries the bind addresses of the main and health servers, optional TLS
// material, server timeouts, and the telemetry settings.
type Config struct {
	// Host is the bind host of the main server. It must be an IP literal.
	// Default: "127.0.0.1"
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the bind port of the main server (0-65535, 0 picks a free port).
	// Default: 8080
	Port int `mapstructure:"port" yaml:"port"`

	// TLS enables TLS on the main listener when both paths are set.
	TLS TLSConfig `mapstructure:"tls" yaml:"tls"`

	// HealthHost is the bind host of the health/metrics server.
	// Default: "127.0.0.1"
	HealthHost string `mapstructure:"health_host" yaml:"health_host"`

	// HealthPort is the bind port of the health/metrics server.
	// Default: 18080
	HealthPort int `mapstructure:"health_port" yaml:"health_port"`

	// ShutdownTimeout bounds the graceful drain of in-flight requests.
	// Connections still open after the timeout are closed.
	// Default: 30s
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// ReadTimeout is the maximum duration for reading an entire request.
	// Zero means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// ReadHeaderTimeout is the maximum duration for reading request headers.
	// Default: 10s
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// Default: 30s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is how long keep-alive connections wait for the next request.
	// Default: 120s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// Logging configures the process logger.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics configures the Prometheus collector served on /metrics.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Tracing configures OpenTelemetry request tracing.
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// TLSConfig holds the paths to the TLS material of the main listener.
type TLSConfig struct {
	// CertPath is the path to a PEM encoded certificate chain.
	CertPath string `mapstructure:"cert_path" yaml:"cert_path"`

	// KeyPath is the path to a PEM encoded PKCS#8 private key.
	KeyPath string `mapstructure:"key_path" yaml:"key_path"`

	// MinVersion is the minimum TLS version to accept ("1.2" or "1.3").
	// Default: "1.2"
	MinVersion string `mapstructure:"min_version" yaml:"min_version"`

	// HandshakeTimeout bounds each TLS handshake on an accepted connection.
	// Default: 10s
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout"`
}

// Enabled reports whether both certificate and key paths are configured.
func (t TLSConfig) Enabled() bool {
	return t.CertPath != "" && t.KeyPath != ""
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the output format ("json", "text", "console").
	// Default: "json"
	Format string `mapstructure:"format" yaml:"format"`

	// AddSource includes file and line in every record.
	AddSource bool `mapstructure:"add_source" yaml:"add_source"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	// Default: "surevoucher"
	Namespace string `mapstructure:"namespace" yaml:"namespace"`

	// Subsystem is an optional second prefix.
	Subsystem string `mapstructure:"subsystem" yaml:"subsystem"`

	// ProcessMetrics registers the Go runtime and process collectors.
	// Default: true
	ProcessMetrics bool `mapstructure:"process_metrics" yaml:"process_metrics"`

	// DurationBuckets are the request duration histogram buckets in seconds.
	DurationBuckets []float64 `mapstructure:"duration_buckets" yaml:"duration_buckets,omitempty"`
}

// TracingConfig configures span export over OTLP/gRPC.
type TracingConfig struct {
	// Enabled turns on span recording and export.
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP/gRPC collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure disables transport security towards the collector.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "surevoucher-webcore"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`

	// Sampler is the sampling strategy ("always", "never", "ratio").
	// Default: "always"
	Sampler string `mapstructure:"sampler" yaml:"sampler"`

	// SampleRatio is the fraction of traces kept by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
}

// Addr returns the main server address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HealthAddr returns the health server address in host:port form.
func (c *Config) HealthAddr() string {
	return net.JoinHostPort(c.HealthHost, strconv.Itoa(c.HealthPort))
}
