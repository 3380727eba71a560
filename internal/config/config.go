package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port              int
	DevMode           bool
	DatabasePath      string
	BrapiBaseURL      string
	BrapiToken        string
	RiskFreeRate      float64 // Annualized fraction used as Sharpe default
	QuoteSyncSchedule string  // Cron expression for the quote sync job
	LogLevel          string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8000),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		DatabasePath:      getEnv("DATABASE_PATH", "./data/ativos.db"),
		BrapiBaseURL:      getEnv("BRAPI_BASE_URL", "https://brapi.dev/api"),
		BrapiToken:        getEnv("BRAPI_TOKEN", ""),
		RiskFreeRate:      getEnvAsFloat("RISK_FREE_RATE", 0.10),
		QuoteSyncSchedule: getEnv("QUOTE_SYNC_SCHEDULE", "@hourly"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.RiskFreeRate < 0 {
		return fmt.Errorf("RISK_FREE_RATE must not be negative")
	}

	// Note: BRAPI_TOKEN is optional, the free tier works without it

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
