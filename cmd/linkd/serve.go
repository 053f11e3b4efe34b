package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/linkd/internal/httpapi"
	"github.com/fyrsmithlabs/linkd/internal/watch"
)

// shutdownTimeout bounds graceful HTTP shutdown on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contract set and on-demand linkage over HTTP",
	Long: `Run discovery, then expose the contract set and on-demand invoice
classification over HTTP. The contracts directory is watched; discovery
reruns automatically when it changes.

Endpoints:
  GET  /health
  GET  /metrics
  GET  /api/v1/contracts
  POST /api/v1/link`,
	RunE: withRuntime(runServe),
}

func runServe(ctx context.Context, rt *runtime) error {
	srv, err := httpapi.NewServer(rt.cfg.Server, rt.logger.Named("http"))
	if err != nil {
		return err
	}

	disc, err := rt.pipe.Discover(ctx)
	if err != nil {
		return err
	}
	srv.SetDiscovery(disc)

	w, err := watch.NewWatcher(
		[]string{rt.cfg.ContractsDir},
		rt.cfg.Watch.Debounce.Duration(),
		rt.logger.Named("watch"),
	)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case <-w.Changed():
			rt.logger.Info("contracts directory changed, rerunning discovery")
			fresh, err := rt.pipe.Discover(ctx)
			if err != nil {
				// Serve the last good contract set until the input heals.
				rt.logger.Error("discovery rerun failed", zap.Error(err))
				continue
			}
			srv.SetDiscovery(fresh)

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return nil
		}
	}
}
