package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/certify-backend/internal/app"
	"github.com/AnshRaj112/certify-backend/internal/config"
	"github.com/AnshRaj112/certify-backend/internal/logging"
	"github.com/AnshRaj112/certify-backend/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load env
	envErr := godotenv.Load()

	// Load configuration
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialise application", slog.Any("error", err))
		os.Exit(1)
	}

	srv := server.New(a)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Failed to start server", slog.Any("error", err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown", slog.Any("error", err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		logger.Error("Closing connections", slog.Any("error", err))
	}
	logger.Info("Server stopped")
}
