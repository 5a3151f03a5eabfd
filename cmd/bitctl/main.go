// Command bitctl drives a local BitBrowser service: it syncs and inspects
// profiles, opens and closes them, snapshots cookies and serves a small
// HTTP API with a DevTools relay.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gs := newGlobalState(ctx)
	if err := newRootCommand(gs).cmd.Execute(); err != nil {
		gs.logger.WithError(err).Error("Command failed")
		stop()
		os.Exit(1)
	}
}
