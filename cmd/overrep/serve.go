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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genesetlab/overrep/internal/catalog"
	"github.com/genesetlab/overrep/internal/duckdb"
	"github.com/genesetlab/overrep/internal/enrich"
	"github.com/genesetlab/overrep/internal/metrics"
	"github.com/genesetlab/overrep/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the enrichment API over HTTP",
		Long: `Serve loads every library and background from the data directory and
exposes them through a JSON API, with Prometheus metrics on /metrics and
run history recorded in DuckDB.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, noStore)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable the DuckDB run history")

	return cmd
}

func runServe(addr string, noStore bool) error {
	if addr == "" {
		addr = cfg.Server.Addr
	}

	gin.SetMode(gin.ReleaseMode)

	cat, err := catalog.Load(cfg.DataDir, cfg.Organism, logger)
	if err != nil {
		return err
	}
	if len(cat.Libraries()) == 0 {
		logger.Warn("no term libraries loaded, run 'overrep fetch' first",
			zap.String("data_dir", cfg.DataDir))
	}

	engine := enrich.NewEngine()
	engine.SetLogger(logger)
	engine.SetWorkers(cfg.Workers)

	var store *duckdb.Store
	if !noStore {
		store, err = duckdb.Open(cfg.Server.DBPath)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer store.Close()
	}

	srv := server.New(engine, cat, store, metrics.New(), logger)
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}
