package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64
	LogLevel        string
	Environment     string
	CronSpecDigest  string
	MetricsAddr     string // empty disables the metrics endpoint
	Location        *time.Location
	CalibrationFile string
}

// Load reads configuration from environment variables and .env file (if present).
// godotenv.Load never overrides variables already set in the environment.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.CronSpecDigest = getEnv("CRON_SPEC_DIGEST", "0 8 * * *") // 08:00 daily

	// Unlike the others, an explicitly empty METRICS_ADDR turns metrics off.
	addr, ok := os.LookupEnv("METRICS_ADDR")
	if !ok {
		addr = ":9090"
	}
	cfg.MetricsAddr = addr

	cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.CalibrationFile = os.Getenv("CALIBRATION_FILE")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
