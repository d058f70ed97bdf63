package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/api"
	"github.com/reconview/ynab-reconciler/internal/application/reconcile"
	"github.com/reconview/ynab-reconciler/internal/application/service"
	"github.com/reconview/ynab-reconciler/internal/domain/matcher"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/config"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
	"github.com/reconview/ynab-reconciler/internal/observability"
)

// RunServe runs the API server.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := observability.NewLoggerWithSystem(loggingCfg, "api")

	// Initialize storage
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Wire the reconciliation stack
	ledger := ynab.NewClient(ynab.Config{
		BaseURL: cfg.YNAB.BaseURL,
		Token:   cfg.GetAPIToken("YNAB_TOKEN"),
	})
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	orchestrator := reconcile.NewOrchestrator(store, ledger, logger, metrics)
	reconcileService := service.NewReconcileService(orchestrator, logger)

	port := cfg.Server.Port
	if flags.Port != 0 {
		port = flags.Port
	}
	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = api.DefaultConfig().AllowedOrigins
	}

	apiCfg := api.Config{
		Port:           port,
		AllowedOrigins: origins,
		MatcherDefaults: matcher.Config{
			DateToleranceDays: cfg.Reconcile.DateToleranceDays,
			AmountTolerance:   cfg.Reconcile.AmountTolerance,
		},
		FlagColor: cfg.Reconcile.FlagColor,
	}

	server := api.NewServer(apiCfg, store, reconcileService, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
