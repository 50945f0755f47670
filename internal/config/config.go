package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Web Server
	Bind string

	// Database; empty selects the in-memory store
	DatabaseURL string

	// Notification dispatcher webhook; empty selects log-only delivery
	NotifyWebhookURL string
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Bind:             getEnvDefault("BIND", "0.0.0.0:8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
	}

	return cfg, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
