// Package config loads the webcore process configuration.
//
// Values are merged in the following order (later overrides earlier):
//
//  1. Built-in defaults (defaults.go)
//  2. An optional configuration file (YAML, JSON or TOML)
//  3. Environment variables
//  4. Validation (fails fast if invalid)
//
// # Configuration File
//
// An explicit file passed to Load or Loader.WithFile must exist. Without one,
// the loader looks for surevoucher.{yaml,yml,json,toml} in the working
// directory, $XDG_CONFIG_HOME/surevoucher (or ~/.config/surevoucher) and
// /etc/surevoucher. A missing file is not an error.
//
// # Environment Variables
//
// Variables are spelled SUREVOUCHER__KEY, with nested keys joined by "__":
//
//   - SUREVOUCHER__HOST overrides host
//   - SUREVOUCHER__PORT overrides port
//   - SUREVOUCHER__TLS__CERT_PATH overrides tls.cert_path
//   - SUREVOUCHER__HEALTH_PORT overrides health_port
//   - SUREVOUCHER__LOGGING__LEVEL overrides logging.level
//   - SUREVOUCHER__TRACING__ENABLED overrides tracing.enabled
//
// Durations use Go syntax ("30s", "2m"). A value that cannot be decoded into
// its field type, such as SUREVOUCHER__PORT=abc, fails the load.
//
// # Errors
//
// Every failure is returned as a *ConfigError. Validation failures wrap a
// ValidationError listing each offending field:
//
//	cfg, err := config.Load("")
//	var verr config.ValidationError
//	if errors.As(err, &verr) {
//	    for _, fe := range verr.Errors {
//	        fmt.Println(fe.Field, fe.Message)
//	    }
//	}
package config
