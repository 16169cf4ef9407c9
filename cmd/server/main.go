package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sphere-team/sphere-backend/internal/config"
	"github.com/sphere-team/sphere-backend/internal/infrastructure/container"
	"github.com/sphere-team/sphere-backend/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, thresholdClamped, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if thresholdClamped {
		log.Warn("configured match threshold exceeds the supported maximum, clamped",
			zap.Float64("threshold", cfg.Matching.Threshold),
		)
	}

	app, err := container.NewContainer(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("error closing application", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
		os.Exit(1)
	}
}
