package config

import (
	"os"
	"strconv"
	"time"

	"github.com/jogardn/hoodie-store/internal/storage"
)

type Config struct {
	DB           storage.Config
	KafkaBrokers string
	Port         string
}

// Load reads configuration from the environment with development defaults.
// An empty KAFKA_BROKERS disables event publishing entirely.
func Load() Config {
	return Config{
		DB: storage.Config{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "storefront"),
			Password:     getEnv("DB_PASSWORD", "storefront"),
			Name:         getEnv("DB_NAME", "storefront"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxConns:     getEnvInt("DB_MAX_CONNS", 10),
			QueryTimeout: getEnvDuration("DB_QUERY_TIMEOUT", 60*time.Second),
		},
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		Port:         getEnv("PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
