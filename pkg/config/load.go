package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultNamespace names the configuration file and its directories.
	DefaultNamespace = "surevoucher"

	// DefaultEnvPrefix prefixes every environment variable. Variables are
	// spelled PREFIX__KEY with nested keys joined by "__", for example
	// SUREVOUCHER__TLS__CERT_PATH.
	DefaultEnvPrefix = "SUREVOUCHER"

	envSeparator = "__"
)

// Loader merges defaults, an optional configuration file and environment
// variables, in that order of increasing precedence.
type Loader struct {
	namespace string
	envPrefix string
	file      string
	paths     []string
}

// NewLoader creates a loader for the given namespace and environment prefix.
// The namespace is used as the configuration file name and directory; the
// prefix is upper-cased and joined to keys with "__".
func NewLoader(namespace, envPrefix string) *Loader {
	return &Loader{
		namespace: namespace,
		envPrefix: strings.ToUpper(envPrefix),
		paths:     searchPaths(namespace),
	}
}

// WithFile sets an explicit configuration file. The file must exist; no
// search is performed.
func (l *Loader) WithFile(path string) *Loader {
	l.file = path
	return l
}

// WithSearchPaths replaces the directories searched for a configuration file
// when no explicit file is set.
func (l *Loader) WithSearchPaths(paths ...string) *Loader {
	l.paths = paths
	return l
}

// Load produces a validated configuration. Any failure is a *ConfigError.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// SetEnvPrefix joins prefix and key with a single "_", so the prefix
	// carries one of the two separator characters.
	v.SetEnvPrefix(l.envPrefix + "_")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envSeparator))
	v.AutomaticEnv()

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName(l.namespace)
		for _, p := range l.paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, &ConfigError{Op: "read", Path: l.file, Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, &ConfigError{Op: "decode", Path: v.ConfigFileUsed(), Err: err}
	}

	if err := Validate(&cfg); err != nil {
		return nil, &ConfigError{Op: "validate", Path: v.ConfigFileUsed(), Err: err}
	}

	return &cfg, nil
}

// Load loads the configuration with the default namespace and prefix. An
// empty path searches the default locations.
func Load(path string) (*Config, error) {
	return NewLoader(DefaultNamespace, DefaultEnvPrefix).WithFile(path).Load()
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ConfigError{Op: "save", Path: path, Err: err}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return &ConfigError{Op: "save", Path: path, Err: err}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return &ConfigError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// Dir returns the per-user configuration directory for namespace.
func Dir(namespace string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, namespace)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", namespace)
}

// DefaultPath is the per-user file the loader discovers when no path is
// given: Dir(DefaultNamespace)/surevoucher.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(DefaultNamespace), DefaultNamespace+".yaml")
}

func searchPaths(namespace string) []string {
	return []string{".", Dir(namespace), filepath.Join("/etc", namespace)}
}

// decodeHooks lets files and environment variables spell durations as "30s"
// and lists of any element type as comma-separated strings.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToWeakSliceHookFunc(","),
	)
}
