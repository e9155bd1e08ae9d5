package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/festoofficial/festo/internal/app"
	"github.com/festoofficial/festo/internal/config"
	"github.com/festoofficial/festo/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log, "festo")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := app.Run(cfg, logger); err != nil {
		logger.Fatal("app stopped", zap.Error(err))
	}
}
