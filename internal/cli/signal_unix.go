//go:build !windows

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// resetSignal fires each time the process receives SIGUSR1, until ctx is done.
func resetSignal(ctx context.Context) <-chan struct{} {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1)

	out := make(chan struct{})
	go func() {
		defer signal.Stop(sigs)
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigs:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
