package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tradeline-audit/internal/api"
)

var serveNoStore bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audit HTTP API",
	Long: `Starts an HTTP server exposing the analysis endpoints. With a store
configured, snapshot history and audit runs are persisted; with --no-store
only the stateless analyze, compare, and audit endpoints are served.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := initEngine()
		if err != nil {
			return err
		}

		srv := api.NewServer(engine, nil, cfg.Server, cfg.Audit.Readiness)
		if !serveNoStore {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			srv = api.NewServer(engine, st, cfg.Server, cfg.Audit.Readiness)
		}

		httpSrv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("http server listening", zap.Int("port", cfg.Server.Port))
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			zap.L().Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "serve only stateless endpoints, without persistence")
	rootCmd.AddCommand(serveCmd)
}
