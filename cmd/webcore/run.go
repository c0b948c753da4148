package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"surevoucher/webcore/pkg/cli"
	"surevoucher/webcore/pkg/config"
	"surevoucher/webcore/pkg/router"
	"surevoucher/webcore/pkg/server"
	"surevoucher/webcore/pkg/telemetry/logging"
	"surevoucher/webcore/pkg/telemetry/metrics"
	"surevoucher/webcore/pkg/telemetry/tracing"
)

// tracerShutdownTimeout bounds the final span flush on exit.
const tracerShutdownTimeout = 5 * time.Second

var runFlags struct {
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the web server",
	Long: `Start the main server and the health server and block until a shutdown
signal (SIGINT, SIGTERM, SIGQUIT or SIGHUP) arrives.

On shutdown, /ready switches to "starting", in-flight requests drain for at
most shutdown_timeout and the process exits 0.

Examples:
  # Start with default config
  webcore run

  # Start with custom config
  webcore run --config /etc/surevoucher/config.yaml

  # Serve over TLS, configured from the environment
  SUREVOUCHER__TLS__CERT_PATH=certs/cert.pem \
  SUREVOUCHER__TLS__KEY_PATH=certs/key.pem webcore run

  # Validate config without starting the server
  webcore run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	logger.Info("starting webcore",
		"version", Version,
		"addr", cfg.Addr(),
		"health_addr", cfg.HealthAddr(),
		"tls", cfg.TLS.Enabled(),
		"tracing", cfg.Tracing.Enabled,
	)

	tracer, err := tracing.New(cmd.Context(), &cfg.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	srv := server.New(router.BasicRouter(), cfg,
		server.WithLogger(logger),
		server.WithMetrics(metrics.NewCollector(&cfg.Metrics, nil)),
		server.WithTracer(tracer),
		server.WithVersion(Version, GitCommit, BuildDate),
	)
	if err := srv.Run(cmd.Context()); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
