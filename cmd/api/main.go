package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"notes-marketplace/internal/app"
	"notes-marketplace/internal/logger"
	"notes-marketplace/internal/middleware"
	"notes-marketplace/internal/server"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := app.LoadConfig(ctx)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init("notes-api", cfg.Environment.Name, cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	if !cfg.Razorpay.RequireSignature {
		log.Warn("checkout signatures are not verified; set RAZORPAY_REQUIRE_SIGNATURE=true to reject forged confirmations")
	}
	if cfg.Razorpay.WebhookSecret == "" {
		log.Warn("RAZORPAY_WEBHOOK_SECRET is empty; webhook deliveries will be rejected")
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	opts := server.Options{
		Auth:   middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.AdminEmail),
		Logger: log,
	}
	if cfg.Storage.Driver == "disk" {
		opts.AssetDir = cfg.Storage.Dir
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	srv := server.NewServer(a.Services, a.Orchestrator, opts)

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
}
