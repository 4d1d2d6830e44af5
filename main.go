package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/painelfinanceiro/backend/src/config"
	"github.com/username/painelfinanceiro/backend/src/database"
	"github.com/username/painelfinanceiro/backend/src/handlers"
	"github.com/username/painelfinanceiro/backend/src/logger"
	"github.com/username/painelfinanceiro/backend/src/processors"
	"github.com/username/painelfinanceiro/backend/src/services"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("PainelFinanceiro backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations()

	rules, err := processors.LoadClassificationRules(config.Cfg.ClassificationRulesPath)
	if err != nil {
		logger.L.Error("Invalid classification rules, using defaults", "error", err)
	}

	reportCache := cache.New(config.Cfg.CacheExpiration, services.CacheCleanupInterval)

	ledgerService := services.NewLedgerService(database.DB, reportCache)
	importService := services.NewImportService(
		ledgerService,
		processors.NewClassifier(rules),
		processors.NewHierarchyProcessor(),
		processors.NewAggregationProcessor(),
	)

	router := handlers.NewRouter(config.Cfg,
		handlers.NewImportHandler(importService, config.Cfg.MaxUploadSizeBytes),
		handlers.NewHistoryHandler(ledgerService),
		handlers.NewFinanceHandler(ledgerService),
	)

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.L.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("Server shutdown failed", "error", err)
	}
	if err := database.DB.Close(); err != nil {
		logger.L.Error("Failed to close database", "error", err)
	}
	logger.L.Info("Server stopped")
}
