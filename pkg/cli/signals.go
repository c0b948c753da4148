package cli

import (
	"context"
	"os"
	"os/signal"
)

// ShutdownSignal is the cancellation cause of a context returned by
// NotifyShutdown.
type ShutdownSignal struct {
	Signal os.Signal
}

func (s *ShutdownSignal) Error() string {
	return "received signal " + s.Signal.String()
}

// NotifyShutdown returns a copy of parent that is cancelled when the first of
// sigs arrives, or ShutdownSignals() when sigs is empty. The signal is
// available through context.Cause as a *ShutdownSignal.
//
// Signals stay captured until stop is called, so a second interrupt during
// shutdown does not kill the process.
func NotifyShutdown(parent context.Context, sigs ...os.Signal) (ctx context.Context, stop context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = ShutdownSignals()
	}

	ctx, cancel := context.WithCancelCause(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, sigs...)

	go func() {
		select {
		case sig := <-sigChan:
			cancel(&ShutdownSignal{Signal: sig})
		case <-ctx.Done():
		}
	}()

	stop = func() {
		signal.Stop(sigChan)
		cancel(context.Canceled)
	}
	return ctx, stop
}
