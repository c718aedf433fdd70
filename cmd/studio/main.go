// Package main содержит точку входа для сервиса аутентификации и биллинга.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MSAIGlobal/intuitv-studio/internal/app/studio"
	"github.com/MSAIGlobal/intuitv-studio/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting studio-service", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := studio.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize studio app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("studio app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("studio app stopped gracefully")
}
