package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stayforge/bidflow/internal/api"
	"github.com/stayforge/bidflow/internal/config"
	"github.com/stayforge/bidflow/internal/notify"
	"github.com/stayforge/bidflow/internal/observe"
	"github.com/stayforge/bidflow/internal/store"
	"github.com/stayforge/bidflow/internal/workflow"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Select store
	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		st = pg
	} else {
		logger.Info("DATABASE_URL not set, using in-memory store")
		st = store.NewMemory()
	}

	// Select notifier
	var notifier notify.Notifier = notify.NewSlog(logger)
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhook(cfg.NotifyWebhookURL)
	}

	orchestrator := workflow.New(st, notifier, observe.NewSlogObserver(logger))

	// Start API server
	apiServer := api.New(cfg, orchestrator)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
}
