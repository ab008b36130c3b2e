/*
Package main is the entry point for the cardparty server.

It is responsible for loading configuration, initializing the global logging
system, opening the card database and object-storage resolver, starting the
presence supervisor, setting up the HTTP server, and gracefully handling operating
system interrupt signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
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

	"cardparty/internal/app/cards"
	"cardparty/internal/app/game"
	"cardparty/internal/app/prefs"
	"cardparty/internal/app/storage"
	"cardparty/internal/configs"
	"cardparty/internal/handler"
	"cardparty/internal/pkg/logx"
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
		Dur("ping_after", cfg.PingAfter).
		Dur("evict_after", cfg.EvictAfter).
		Msg("Configuration loaded successfully")

	// Option bounds, overridable through PREF_* environment variables
	preferences, err := prefs.LoadFromEnv()
	if err != nil {
		logx.Fatal(err, "Failed to load preference overrides")
	}

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local card sets. In development the server still runs without a reachable
	// database; card-set validation is skipped then.
	var cardStore *cards.Store
	if store, err := cards.NewStore(cfg.DatabaseDSN); err != nil {
		if cfg.Environment != "development" {
			logx.Fatal(err, "Failed to open card database")
		}
		logx.Warn("Card database unavailable, continuing without local card sets", "error", err)
	} else {
		cardStore = store
		defer cardStore.Close()
	}

	// Externally sourced card sets, only when a bucket is configured.
	var resolver storage.CardSetResolver
	if cfg.S3BucketName != "" {
		resolver, err = storage.NewCardSetResolver(storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize card-set resolver")
		}
	}

	// Presence core
	users := game.NewRegistry(cfg.ChatFloodCount, cfg.ChatFloodWindow)
	games := game.NewManager()

	supervisor := game.NewSupervisor(users, cfg.SweepInterval, cfg.PingAfter, cfg.EvictAfter)
	go supervisor.Run(ctx)

	// Setup HTTP server and routes
	deps := &handler.AppDeps{
		Config:   cfg,
		Users:    users,
		Games:    games,
		Prefs:    preferences,
		Cards:    cardStore,
		Resolver: resolver,
	}
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
		// ReadTimeout stays above PollTimeout so long polls are not cut short.
		ReadTimeout:  cfg.PollTimeout + 10*time.Second,
		WriteTimeout: cfg.PollTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Cardparty Server starting on http://localhost%s", serverAddr))
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

	games.Shutdown()

	logx.Info("Server gracefully stopped.")
}
