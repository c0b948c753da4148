//go:build !windows

package cli

import (
	"os"
	"syscall"
)

// ShutdownSignals returns the signals that request a graceful shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP}
}
