//go:build windows

package cli

import "os"

// ShutdownSignals returns the signals that request a graceful shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
