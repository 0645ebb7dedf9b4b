/*
Package main is the entry point for the TeamChat delivery server.

It loads configuration, initializes the global logging system, connects to
PostgreSQL and applies migrations, wires the realtime and lifecycle
components, and handles operating system interrupt signals (SIGINT,
SIGTERM) for a graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamchat/internal/app/archive"
	"teamchat/internal/app/chat"
	"teamchat/internal/app/db"
	"teamchat/internal/app/inbox"
	"teamchat/internal/app/lifecycle"
	"teamchat/internal/app/storage"
	"teamchat/internal/app/store"
	"teamchat/internal/configs"
	"teamchat/internal/handler"
	"teamchat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("s3_configured", cfg.S3Configured()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and apply migrations.
	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	appStore := store.New(pool)
	logger := *logx.Logger()

	sink, err := archive.NewSink(ctx, *cfg, logger)
	if err != nil {
		logx.Fatal(err, "Failed to initialize archive sink")
	}

	var storageSvc *storage.Service
	if cfg.S3Configured() {
		storageSvc, err = storage.NewService(ctx, *cfg, logger)
		if err != nil {
			logx.Fatal(err, "Failed to initialize object storage")
		}
	} else {
		logx.Warn("Object store not configured. Attachment endpoints disabled.")
	}

	// Wire the realtime core and domain services.
	registry := chat.NewRegistry(appStore, logger)
	router := chat.NewRouter(registry, appStore, logger)
	chatSvc := chat.NewService(appStore, router, logger)
	tracker := inbox.NewTracker(appStore, logger)
	manager := lifecycle.NewManager(appStore, sink, cfg.ArchivePrefix, logger)

	deps := &handler.AppDeps{
		Cfg:       cfg,
		Store:     appStore,
		Registry:  registry,
		ChatSvc:   chatSvc,
		Tracker:   tracker,
		Lifecycle: manager,
		Storage:   storageSvc,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.SetupRouter(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("TeamChat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
