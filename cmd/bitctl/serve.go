package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/shehryarbajwa/bitbrowser-go/internal/api"
	"github.com/shehryarbajwa/bitbrowser-go/internal/proxy"
	"github.com/shehryarbajwa/bitbrowser-go/internal/ratelimit"
	"github.com/shehryarbajwa/bitbrowser-go/internal/snapshot"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/session"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = 10 * time.Minute
)

func getCmdServe(gs *globalState) *cobra.Command {
	var (
		listen string
		noSync bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP API and DevTools relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				gs.cfg.Listen = listen
			}
			return serve(gs, !noSync, nil)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (env BITBROWSER_LISTEN)")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "skip the initial profile sync")
	return cmd
}

// serve runs until gs.ctx is cancelled. started, when set, receives the
// bound address.
func serve(gs *globalState, initialSync bool, started chan<- string) error {
	logger := gs.logger
	cfg := gs.cfg

	c, err := gs.newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	sessions := session.NewManager(c, cfg.PageSize, logger)
	if initialSync {
		res, err := sessions.Synchronize(gs.ctx)
		if err != nil {
			// the API can still sync later
			logger.WithError(err).Warn("Initial sync failed")
		} else {
			logger.WithField("sessions", sessions.Len()).WithField("truncated", res.Truncated).Info("Initial sync done")
		}
	}

	store, err := snapshot.NewStore(c, cfg.SnapshotDir, logger)
	if err != nil {
		return err
	}
	relay := proxy.NewRelay(sessions, cfg.RelaySlots, logger)
	limiter := ratelimit.NewLimiter(cfg.RatePerHour, cfg.RateBurst)

	router := api.NewHandler(sessions).SetupRoutes(api.NewSnapshotHandler(store), relay, limiter, logger)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	logger.WithField("addr", ln.Addr().String()).Info("API listening on /v1")
	if started != nil {
		started <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case err := <-errCh:
			return err
		case <-ticker.C:
			if n := limiter.Prune(time.Hour); n > 0 {
				logger.WithField("clients", n).Debug("Pruned idle rate limit buckets")
			}
		case <-gs.ctx.Done():
			break loop
		}
	}

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(ctx)
	relay.Close()
	if err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
