package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ativotrack/internal/clients/brapi"
	"ativotrack/internal/clients/clientdata"
	"ativotrack/internal/config"
	"ativotrack/internal/database"
	"ativotrack/internal/modules/analytics"
	"ativotrack/internal/modules/assets"
	"ativotrack/internal/modules/charts"
	"ativotrack/internal/modules/wallet"
	"ativotrack/internal/scheduler"
	"ativotrack/internal/server"
	"ativotrack/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		println("Failed to load configuration:", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting AtivoTrack")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Provider client with response caching
	cacheRepo := clientdata.NewRepository(db.Conn(), log)
	brapiClient := brapi.NewClient(cfg.BrapiBaseURL, cfg.BrapiToken, cacheRepo, log)

	// Repositories
	assetRepo := assets.NewAssetRepository(db.Conn(), log)
	quoteRepo := assets.NewQuoteRepository(db.Conn(), log)
	dividendRepo := assets.NewDividendRepository(db.Conn(), log)
	walletRepo := wallet.NewWalletRepository(db.Conn(), log)
	holdingRepo := wallet.NewHoldingRepository(db.Conn(), log)
	transactionRepo := wallet.NewTransactionRepository(db.Conn(), log)

	// Services
	assetService := assets.NewService(assetRepo, quoteRepo, dividendRepo, brapiClient, log)
	walletService := wallet.NewService(walletRepo, holdingRepo, transactionRepo, assetRepo, quoteRepo, log)
	analyticsService := analytics.NewService(assetRepo, quoteRepo, dividendRepo, walletRepo, holdingRepo, cfg.RiskFreeRate, log)
	chartService := charts.NewService(log)

	// Handlers
	assetHandler := assets.NewHandler(assetRepo, quoteRepo, dividendRepo, assetService, log)
	walletHandler := wallet.NewHandler(walletRepo, holdingRepo, transactionRepo, walletService, log)
	analyticsHandler := analytics.NewHandler(analyticsService, walletService, log)
	chartHandler := charts.NewHandler(analyticsService, walletService, chartService, assetRepo, quoteRepo, log)

	// Scheduler and background jobs
	sched := scheduler.New(log)
	systemHandlers := server.NewSystemHandlers(log, db, cfg.DatabasePath, sched)

	quoteSyncJob := scheduler.NewQuoteSyncJob(assetRepo, assetService, log)
	if err := sched.AddJob(cfg.QuoteSyncSchedule, quoteSyncJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register quote sync job")
	}
	systemHandlers.SetQuoteSyncJob(quoteSyncJob)

	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:             cfg.Port,
		Log:              log,
		DB:               db,
		Config:           cfg,
		DevMode:          cfg.DevMode,
		AssetHandler:     assetHandler,
		WalletHandler:    walletHandler,
		AnalyticsHandler: analyticsHandler,
		ChartHandler:     chartHandler,
		SystemHandlers:   systemHandlers,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
