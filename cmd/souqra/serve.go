package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/souqra/internal/cli"
	"github.com/aretw0/souqra/internal/retention"
	httpAdapter "github.com/aretw0/souqra/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the pipeline behind a JSON API (POST /start, /feedback/persona,
/feedback/creative, session and kit endpoints, SSE progress on /events).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, false)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetString("port")
		}

		streams := httpAdapter.NewStreamManager(logger)
		app, err := cli.Build(cmd.Context(), cfg, logger, streams.Hooks())
		if err != nil {
			return err
		}
		defer app.Close()

		opts := []httpAdapter.Option{
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
		}
		if len(cfg.Server.Origins) > 0 {
			opts = append(opts, httpAdapter.WithOrigins(cfg.Server.Origins...))
		}
		if cfg.Server.Metrics {
			opts = append(opts, httpAdapter.WithMetricsHandler(app.Metrics.Handler()))
		}
		handler, err := httpAdapter.NewHandler(app.Engine, opts...)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if cfg.Retention.Schedule != "" {
			sweeper, err := retention.New(app.Engine, cfg.Retention.MaxAge, retention.WithLogger(logger))
			if err != nil {
				return err
			}
			if err := sweeper.Start(ctx, cfg.Retention.Schedule); err != nil {
				return err
			}
			defer sweeper.Stop()
		}

		srv := &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting Souqra Server", "addr", srv.Addr, "store", cfg.Store.Driver, "llm", cfg.LLM.Provider)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("Souqra Server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides server.port)")
}
