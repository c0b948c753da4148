package config

import "fmt"

// ConfigError is returned by the loader for any failure to produce a valid
// configuration: an unreadable or malformed file, a value that cannot be
// decoded into its field type, or a failed validation.
type ConfigError struct {
	// Op is the loading step that failed ("read", "decode", "validate", "save").
	Op string

	// Path is the configuration file involved, if any.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error returns the error message.
func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s %q: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
