package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hollywoo/internal/logging"
	"hollywoo/internal/scanner"
	"hollywoo/internal/scheduler"
	"hollywoo/internal/server"
)

// shutdownTimeout bounds how long in-flight requests may take on exit
const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var queue int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with a background scan worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := a.log.WithModule("serve")

			flush, err := a.startTracing(ctx)
			if err != nil {
				return err
			}
			defer flush()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			worker := scanner.NewWorker(a.newScanner(db), queue)
			worker.Start(ctx)
			defer worker.Stop()

			logged := make(chan struct{})
			go func() {
				defer close(logged)
				logResults(a.log, worker.Results())
			}()

			if a.cfg.Scheduler.Enabled {
				sched := scheduler.New(a.cfg.Scheduler.Spec, db.Store(), worker, a.log.WithModule("scheduler"))
				if err := sched.Start(); err != nil {
					return fmt.Errorf("failed to start scheduler: %w", err)
				}
				defer sched.Stop()
			}

			srv := server.New(a.cfg.Server.Addr(), db, worker, a.reg, a.metrics, a.log.WithModule("http"))
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
				logger.Info().Msg("Received shutdown signal")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Error during server shutdown")
			}

			worker.Stop()
			<-logged
			logger.Info().Msg("Stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&queue, "queue", 16, "number of scans that may wait for the worker")
	return cmd
}

// logResults logs each finished scan until the worker closes the channel
func logResults(log *logging.Logger, results <-chan scanner.Result) {
	for res := range results {
		log.LogScan(res.RunID, res.Root, res.Stats.Duration, res.Stats.Inserted, res.Stats.Updated, res.Err)
	}
}
