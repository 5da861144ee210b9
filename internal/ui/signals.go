package ui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context canceled on the first SIGINT or SIGTERM so
// running commands can stop at their next wait. A second signal force quits.
// The returned stop func releases the signal handler.
func SignalContext(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	doneCh := make(chan struct{})
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)

		select {
		case <-sigChan:
			cancel()
		case <-doneCh:
			return
		}

		// User is impatient
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nForce quitting...\n")
			os.Exit(130)
		case <-doneCh:
		}
	}()

	stop := func() {
		close(doneCh)
		cancel()
	}
	return ctx, stop
}
