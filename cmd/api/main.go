package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookly-service/internal/app"
	"bookly-service/internal/config"
	"bookly-service/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[MAIN] invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("[MAIN] failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := app.NewServer(cfg, zl)

	// Run server in a separate goroutine so we can listen for shutdown signals
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zl.Error("server failed", zap.Error(err))
			shutdown(srv, zl)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	zl.Info("shutting down server")
	shutdown(srv, zl)
	zl.Info("server stopped gracefully")
}

func shutdown(srv *app.Server, zl *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("shutdown incomplete", zap.Error(err))
	}
}
