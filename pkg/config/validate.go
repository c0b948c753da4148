package config

import (
	"fmt"
	"strings"
	"time"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "tls.cert_path").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Has reports whether a field error was recorded for field.
func (e ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Validate checks the entire configuration and returns a ValidationError
// collecting every failed rule, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(cfg)...)
	errs = append(errs, validateTLS(&cfg.TLS)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *Config) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(cfg.Host) == "" {
		errs = append(errs, FieldError{Field: "host", Message: "must not be empty"})
	}
	if err := validatePort(cfg.Port); err != "" {
		errs = append(errs, FieldError{Field: "port", Message: err})
	}
	if strings.TrimSpace(cfg.HealthHost) == "" {
		errs = append(errs, FieldError{Field: "health_host", Message: "must not be empty"})
	}
	if err := validatePort(cfg.HealthPort); err != "" {
		errs = append(errs, FieldError{Field: "health_port", Message: err})
	}

	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{Field: "shutdown_timeout", Message: "must be positive"})
	}

	timeouts := []struct {
		field string
		value time.Duration
	}{
		{"read_timeout", cfg.ReadTimeout},
		{"read_header_timeout", cfg.ReadHeaderTimeout},
		{"write_timeout", cfg.WriteTimeout},
		{"idle_timeout", cfg.IdleTimeout},
	}
	for _, t := range timeouts {
		if t.value < 0 {
			errs = append(errs, FieldError{Field: t.field, Message: "must not be negative"})
		}
	}

	return errs
}

func validatePort(port int) string {
	if port < 0 || port > 65535 {
		return fmt.Sprintf("must be between 0 and 65535, got %d", port)
	}
	return ""
}

func validateTLS(cfg *TLSConfig) []FieldError {
	var errs []FieldError

	switch {
	case cfg.CertPath != "" && cfg.KeyPath == "":
		errs = append(errs, FieldError{Field: "tls.key_path", Message: "is required when tls.cert_path is set"})
	case cfg.CertPath == "" && cfg.KeyPath != "":
		errs = append(errs, FieldError{Field: "tls.cert_path", Message: "is required when tls.key_path is set"})
	}

	switch cfg.MinVersion {
	case "1.2", "1.3":
	default:
		errs = append(errs, FieldError{
			Field:   "tls.min_version",
			Message: fmt.Sprintf("must be one of: 1.2, 1.3 (got %q)", cfg.MinVersion),
		})
	}

	if cfg.HandshakeTimeout <= 0 {
		errs = append(errs, FieldError{Field: "tls.handshake_timeout", Message: "must be positive"})
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error (got %q)", cfg.Level),
		})
	}

	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("must be one of: json, text, console (got %q)", cfg.Format),
		})
	}

	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	for i := 1; i < len(cfg.DurationBuckets); i++ {
		if cfg.DurationBuckets[i] <= cfg.DurationBuckets[i-1] {
			errs = append(errs, FieldError{Field: "metrics.duration_buckets", Message: "must be strictly increasing"})
			break
		}
	}

	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("must be one of: always, never, ratio (got %q)", cfg.Sampler),
		})
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		errs = append(errs, FieldError{Field: "tracing.sample_ratio", Message: "must be between 0.0 and 1.0"})
	}
	if cfg.Enabled && strings.TrimSpace(cfg.Endpoint) == "" {
		errs = append(errs, FieldError{Field: "tracing.endpoint", Message: "required when tracing is enabled"})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "tracing.timeout", Message: "must not be negative"})
	}

	return errs
}
