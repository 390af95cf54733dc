package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deusflow/aidaily/internal/app"
	"github.com/deusflow/aidaily/internal/config"
	"github.com/deusflow/aidaily/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(false).Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	log := logger.Init(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, time.Now())
	if err != nil {
		log.Error("failed to initialize pipeline", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Execute(ctx); err != nil {
		log.Error("run finished with errors", "error", err)
		a.Close()
		stop()
		os.Exit(1)
	}
}
