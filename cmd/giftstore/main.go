package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"giftstore/internal/config"
	"giftstore/internal/infra/db"
	httpinfra "giftstore/internal/infra/http"
	"giftstore/internal/logging"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	store, err := db.NewStore(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	if store.Enabled() {
		applied, err := db.Migrate(context.Background(), store.DB)
		if err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", "versions", applied)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpinfra.NewServer(cfg, store, logger)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
