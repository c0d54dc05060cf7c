package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pushdispatcher/internal/app"
	"pushdispatcher/internal/config"
	"pushdispatcher/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "critical: config load failed: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Name, cfg.Env, logger.Config{
		Level:      cfg.Logger.Level,
		Filename:   cfg.Logger.Filename,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "critical: logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("dispatcher starting",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.Env),
	)

	if err := app.RunDispatcher(ctx, cfg, log); err != nil {
		log.Error("dispatcher crashed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("shutdown complete")
}
