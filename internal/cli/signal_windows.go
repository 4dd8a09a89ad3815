//go:build windows

package cli

import "context"

// resetSignal never fires on Windows, which has no SIGUSR1.
func resetSignal(ctx context.Context) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}
