package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"surevoucher/webcore/pkg/cli"
	"surevoucher/webcore/pkg/config"
	tlsx "surevoucher/webcore/pkg/security/tls"
)

// resetFlags restores every flag to its default so tests do not leak state
// through the package-level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "SureVoucher webcore "+Version) {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "version", "--output", "json")
	if err != nil {
		t.Fatalf("version --output json: %v", err)
	}
	var info versionInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if info.Version != Version || info.GitCommit != GitCommit {
		t.Errorf("info = %+v", info)
	}

	if _, err := execute(t, "version", "--output", "xml"); err == nil {
		t.Error("unknown output format should fail")
	}
}

func TestConfigShow_Precedence(t *testing.T) {
	path := writeConfig(t, "port: 9090\nhealth_port: 18181\n")
	t.Setenv("SUREVOUCHER__HEALTH_PORT", "19090")

	out, err := execute(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("invalid YAML %q: %v", out, err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090 from file", cfg.Port)
	}
	if cfg.HealthPort != 19090 {
		t.Errorf("health_port = %d, want 19090 from env", cfg.HealthPort)
	}
	if cfg.HealthHost != config.DefaultHealthHost {
		t.Errorf("health_host = %q, want default", cfg.HealthHost)
	}
}

func TestConfigShow_InvalidConfigExitCode(t *testing.T) {
	path := writeConfig(t, "port: 70000\n")

	_, err := execute(t, "config", "show", "--config", path)
	var cfgErr *config.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("config show = %v, want *config.ConfigError", err)
	}
	if code := cli.ExitCode(err); code != cli.ExitConfig {
		t.Errorf("ExitCode() = %d, want %d", code, cli.ExitConfig)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if _, err := execute(t, "config", "init", "--path", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() written file: %v", err)
	}
	if cfg.HealthPort != config.DefaultHealthPort || cfg.ShutdownTimeout != config.DefaultShutdownTimeout {
		t.Errorf("written config = %+v", cfg)
	}

	if _, err := execute(t, "config", "init", "--path", path); err == nil {
		t.Error("config init over an existing file should fail without --force")
	}
	if _, err := execute(t, "config", "init", "--path", path, "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}
}

func TestConfigInit_DefaultPathIsDiscovered(t *testing.T) {
	out, err := execute(t, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	path := config.DefaultPath()
	if !strings.Contains(out, path) {
		t.Errorf("output %q does not name %s", out, path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() written file: %v", err)
	}
	cfg.Port = 9191
	if err := config.Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	discovered, err := config.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if discovered.Port != 9191 {
		t.Errorf("discovered Port = %d, want 9191 from %s", discovered.Port, path)
	}
}

func TestRunDryRun(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")

	out, err := execute(t, "run", "--config", path, "--dry-run")
	if err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Errorf("output = %q", out)
	}
}

func TestRunRejectsHalfConfiguredTLS(t *testing.T) {
	path := writeConfig(t, "tls:\n  cert_path: cert.pem\n")

	_, err := execute(t, "run", "--config", path, "--dry-run")
	if cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("run = %v, want a configuration error", err)
	}
}

func TestCertsGenerateValidateInfo(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "certs", "generate", "--host", "localhost,127.0.0.1", "--validity", "90", "--output", dir)
	if err != nil {
		t.Fatalf("certs generate: %v", err)
	}
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if !strings.Contains(out, certPath) {
		t.Errorf("output does not name %s: %q", certPath, out)
	}

	st, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Errorf("key mode = %v, want 0600", st.Mode().Perm())
	}

	out, err = execute(t, "certs", "validate", "--cert", certPath, "--key", keyPath)
	if err != nil {
		t.Fatalf("certs validate: %v", err)
	}
	if !strings.Contains(out, "Certificate and key match") {
		t.Errorf("validate output = %q", out)
	}

	out, err = execute(t, "certs", "info", "--output", "json", certPath)
	if err != nil {
		t.Fatalf("certs info: %v", err)
	}
	var info tlsx.CertificateInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(info.DNSNames) != 1 || info.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v", info.DNSNames)
	}
	if len(info.IPAddresses) != 1 || info.IPAddresses[0] != "127.0.0.1" {
		t.Errorf("IPAddresses = %v", info.IPAddresses)
	}
}

func TestCertsValidate_MissingKey(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "certs", "generate", "--output", dir); err != nil {
		t.Fatalf("certs generate: %v", err)
	}

	_, err := execute(t, "certs", "validate",
		"--cert", filepath.Join(dir, "cert.pem"),
		"--key", filepath.Join(dir, "missing.pem"),
	)
	var keyErr *tlsx.KeyLoadError
	if !errors.As(err, &keyErr) {
		t.Errorf("certs validate = %v, want *tls.KeyLoadError", err)
	}
}
