package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultHost              = "127.0.0.1"
	DefaultPort              = 8080
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultReadTimeout       = 30 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 120 * time.Second

	// Health server defaults
	DefaultHealthHost = "127.0.0.1"
	DefaultHealthPort = 18080

	// TLS defaults
	DefaultTLSMinVersion       = "1.2"
	DefaultTLSHandshakeTimeout = 10 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsNamespace = "surevoucher"
	DefaultProcessMetrics   = true

	// Tracing defaults
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingServiceName = "surevoucher-webcore"
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
)

// DefaultDurationBuckets are the request duration histogram buckets, in
// seconds, used when none are configured.
var DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Default returns a configuration populated with default values only.
func Default() *Config {
	cfg := &Config{
		Port:       DefaultPort,
		HealthPort: DefaultHealthPort,
		Metrics:    MetricsConfig{ProcessMetrics: DefaultProcessMetrics},
		Tracing:    TracingConfig{SampleRatio: DefaultTracingSampleRatio},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields of cfg with their defaults.
// Ports are left alone since 0 is a valid port.
func ApplyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.HealthHost == "" {
		cfg.HealthHost = DefaultHealthHost
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.TLS.MinVersion == "" {
		cfg.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.TLS.HandshakeTimeout == 0 {
		cfg.TLS.HandshakeTimeout = DefaultTLSHandshakeTimeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
}

// setDefaults registers every key with viper. Keys unknown to viper are not
// looked up in the environment, so each field needs a default here, even an
// empty one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("health_host", DefaultHealthHost)
	v.SetDefault("health_port", DefaultHealthPort)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("read_timeout", DefaultReadTimeout)
	v.SetDefault("read_header_timeout", DefaultReadHeaderTimeout)
	v.SetDefault("write_timeout", DefaultWriteTimeout)
	v.SetDefault("idle_timeout", DefaultIdleTimeout)

	v.SetDefault("tls.cert_path", "")
	v.SetDefault("tls.key_path", "")
	v.SetDefault("tls.min_version", DefaultTLSMinVersion)
	v.SetDefault("tls.handshake_timeout", DefaultTLSHandshakeTimeout)

	v.SetDefault("logging.level", DefaultLoggingLevel)
	v.SetDefault("logging.format", DefaultLoggingFormat)
	v.SetDefault("logging.add_source", false)

	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.subsystem", "")
	v.SetDefault("metrics.process_metrics", DefaultProcessMetrics)
	v.SetDefault("metrics.duration_buckets", DefaultDurationBuckets)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", DefaultTracingEndpoint)
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("tracing.timeout", DefaultTracingTimeout)
	v.SetDefault("tracing.service_name", DefaultTracingServiceName)
	v.SetDefault("tracing.sampler", DefaultTracingSampler)
	v.SetDefault("tracing.sample_ratio", DefaultTracingSampleRatio)
}
