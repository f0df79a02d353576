// Package config provides configuration management for the wallet sync library.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all library configuration
type Config struct {
	Gateway GatewayConfig
	Redis   RedisConfig
	Income  IncomeConfig
	Logging LoggingConfig
}

// GatewayConfig holds remote ledger API configuration
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// RequestsPerSecond paces outgoing calls; <= 0 disables pacing
	RequestsPerSecond int
	Burst             int
}

// RedisConfig holds durable local store configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// IncomeConfig holds the income counter persistence configuration
type IncomeConfig struct {
	StorageKey string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Gateway: GatewayConfig{
			BaseURL:           getEnv("LEDGER_BASE_URL", "http://localhost:8080"),
			APIKey:            getEnv("LEDGER_API_KEY", ""),
			Timeout:           getEnvAsDuration("LEDGER_TIMEOUT", 30*time.Second),
			RequestsPerSecond: getEnvAsInt("LEDGER_RPS", 0),
			Burst:             getEnvAsInt("LEDGER_BURST", 10),
		},
		Redis: RedisConfig{
			Host:           getEnv("REDIS_HOST", "localhost"),
			Port:           getEnv("REDIS_PORT", "6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
		},
		Income: IncomeConfig{
			StorageKey: getEnv("INCOME_STORAGE_KEY", "wallet:total_income"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
