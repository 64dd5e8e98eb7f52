package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"contactsheet/internal/app"
	"contactsheet/internal/config"
	"contactsheet/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	application, err := app.NewApp(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
