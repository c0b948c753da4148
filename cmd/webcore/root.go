package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"surevoucher/webcore/pkg/cli"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "webcore",
	Short: "SureVoucher web server bootstrap",
	Long: `Webcore starts the SureVoucher web server: the application router on the
main listener, with optional TLS, and a health server for liveness, readiness
and Prometheus metrics.

Configuration is read from defaults, then a YAML file, then environment
variables prefixed with SUREVOUCHER__ (nested keys joined with "__").`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a status derived from the
// returned error.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: search ., $XDG_CONFIG_HOME/surevoucher, /etc/surevoucher)")
}
