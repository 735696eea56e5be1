package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"relist/internal/crypto"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka (optional; activity-event fan-out is skipped when empty)
	KafkaBrokers string
	KafkaTopic   string

	// API Configuration
	APIPort string
	APIHost string

	// Encryption key for credential bundles, 32 bytes (raw or hex).
	EncryptionKey []byte

	// Rate lookup
	RatesBaseURL string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	rawKey := os.Getenv("ENCRYPTION_KEY")
	if rawKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	key, err := crypto.ParseKey(rawKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY: %w", err)
	}

	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://relist.db"),
		KafkaBrokers:  getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "activity-events"),
		APIPort:       getEnv("API_PORT", "8080"),
		APIHost:       getEnv("API_HOST", "0.0.0.0"),
		EncryptionKey: key,
		RatesBaseURL:  getEnv("RATES_BASE_URL", "https://open.er-api.com/v6"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
