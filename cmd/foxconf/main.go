// Command foxconf builds Firefox user.js files from a catalog of privacy,
// security and performance preferences.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Build information (set by ldflags)
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{}
	root := newRootCmd(a)
	if err := root.ExecuteContext(ctx); err != nil {
		printFailure(root.ErrOrStderr(), err)
		cancel()
		os.Exit(1)
	}
}
