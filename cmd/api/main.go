package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"todo-web/configs"
	"todo-web/internal/api"
	"todo-web/internal/config"
	"todo-web/pkg/logger"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	// Inisialisasi logger
	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		log.Fatalf("Init loggers: %v", err)
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := config.NewDependencies(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Error("Failed to initialise dependencies", zap.Error(err))
		logger.SyncLoggers()
		log.Fatalf("Init dependencies: %v", err)
	}
	defer deps.Close()
	logger.SystemLogger.Info("Database and Redis connected")

	go deps.Hub.Run()

	app := api.NewApp(deps.Handler(cfg), api.Options{AuthRateLimit: cfg.AuthRateLimit})

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		deps.Hub.Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.ErrorLogger.Error("Shutdown error", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		return
	}
	<-shutdownDone
	logger.SystemLogger.Info("Application stopped")
}
