package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/mud-engine/internal/app"
	"github.com/jwebster45206/mud-engine/internal/config"
	"github.com/jwebster45206/mud-engine/internal/handlers"
	"github.com/jwebster45206/mud-engine/internal/logger"
	"github.com/jwebster45206/mud-engine/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting MUD Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend,
		"enhancer", cfg.Enhancer,
		"data_dir", cfg.DataDir)

	startCtx, startCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startCancel()

	game, err := app.New(startCtx, cfg, log)
	if err != nil {
		log.Error("Failed to start engine", "error", err)
		os.Exit(1)
	}
	log.Info("Engine ready", "start_world", cfg.StartWorld, "start_room", cfg.StartRoom)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(game.Repository, game.Cache, log)
	mux.Handle("/health", healthHandler)

	characterHandler := handlers.NewCharacterHandler(game.Engine, log)
	mux.Handle("/v1/characters", characterHandler)
	mux.Handle("/v1/characters/", characterHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	game.Close()
	log.Info("Server exited")
}
