package config

import (
	"fmt"
	"os"
)

// Config holds all configuration for the relay
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Firefly III configuration
	FireflyBaseURL string
	FireflyToken   string

	// Account ids the derived proportion transactions flow between
	IncomeAccountID string
	OwedAccountID   string

	// Currency code stamped on derived transactions
	CurrencyCode string

	// Timezone used for derived transaction dates (IANA name)
	Timezone string

	// Optional durable stores. When unset the relay falls back to
	// process-local state.
	DatabaseURL   string
	RedisURL      string
	RedisPassword string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "5010"),
		Env:             getEnv("ENV", "development"),
		FireflyBaseURL:  getEnv("FIREFLY_BASE_URL", ""),
		FireflyToken:    getEnv("FIREFLY_TOKEN", ""),
		IncomeAccountID: getEnv("INCOME_ACCOUNT_ID", ""),
		OwedAccountID:   getEnv("OWED_ACCOUNT_ID", ""),
		CurrencyCode:    getEnv("CURRENCY_CODE", "USD"),
		Timezone:        getEnv("TIMEZONE", "UTC"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.FireflyBaseURL == "" {
		return fmt.Errorf("FIREFLY_BASE_URL is required")
	}

	if c.FireflyToken == "" {
		return fmt.Errorf("FIREFLY_TOKEN is required")
	}

	if c.IncomeAccountID == "" {
		return fmt.Errorf("INCOME_ACCOUNT_ID is required")
	}

	if c.OwedAccountID == "" {
		return fmt.Errorf("OWED_ACCOUNT_ID is required")
	}

	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
