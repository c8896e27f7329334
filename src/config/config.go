package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Quote provider settings
	QuoteCacheTTL      time.Duration
	QuoteClientTimeout time.Duration

	// Exchange rate settings
	RateFreshnessWindow time.Duration

	// Frontend URL(s) allowed by CORS
	AllowedOrigins []string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	// Try the current directory first, then the parent (common when running
	// from a checkout subdirectory).
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	Cfg = &AppConfig{
		// Core
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./divitrack.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		// Quote provider: weekly refresh cadence for fund prices,
		// matching the upstream provider cache.
		QuoteCacheTTL:      getEnvAsDuration("QUOTE_CACHE_TTL", 168*time.Hour),
		QuoteClientTimeout: getEnvAsDuration("QUOTE_CLIENT_TIMEOUT", 20*time.Second),

		// Persisted FX rates younger than this are served without a fetch.
		RateFreshnessWindow: getEnvAsDuration("RATE_FRESHNESS_WINDOW", 24*time.Hour),

		AllowedOrigins: getOrigins("ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getOrigins retrieves and parses the comma-separated list of allowed CORS origins.
func getOrigins(key, fallback string) []string {
	originsStr := getEnv(key, fallback)
	origins := strings.Split(originsStr, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	return origins
}
