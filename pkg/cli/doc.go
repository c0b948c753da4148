/*
Package cli provides command-line interface utilities for the webcore
command.

Output Formatting:

Command results can be printed as text, JSON or YAML:

	formatter := cli.NewFormatter(cli.FormatYAML)
	if err := formatter.FormatTo(os.Stdout, cfg); err != nil {
		return err
	}

Signal Handling:

NotifyShutdown cancels a context on SIGINT, SIGTERM, SIGQUIT or SIGHUP
(SIGINT only on Windows). The signal that arrived is the context's cause:

	ctx, stop := cli.NotifyShutdown(context.Background())
	defer stop()
	<-ctx.Done()
	var sig *cli.ShutdownSignal
	if errors.As(context.Cause(ctx), &sig) {
		log.Printf("stopping on %s", sig.Signal)
	}

Exit Codes:

ExitCode maps a command error to the process exit status; configuration
errors exit with 2, everything else with 1.
*/
package cli
