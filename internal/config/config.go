package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	Environment    string
	HTTPAddr       string
	Timezone       string
	TelegramToken  string
	GatewayBaseURL string
	MigrationsPath string
}

// Load reads configuration from the environment, with an optional .env
// file for local development. DB_DSN is the only required variable.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    getEnv("ENV", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		Timezone:       getEnv("TIMEZONE", "UTC"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "https://pay.example.com"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location resolves the configured timezone. Load has already validated
// it, so resolution cannot fail afterwards.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
