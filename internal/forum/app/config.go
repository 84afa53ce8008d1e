package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // issuer claim for session tokens

	DatabaseFile string // path to SQLite database file (default: ./forum.db)
	PepperFile   string // path to password-hashing pepper file (default: ./pepper)

	ChallengeTTL time.Duration // lifetime of a password-step login challenge (default: 5m)
	SessionTTL   time.Duration // lifetime of a session token (default: 12h)

	Env       string // environment (dev, staging, prod) (default: dev)
	LogLevel  string // log level (debug, info, warn, error) (default: info)
	LogFormat string // log format (json, text) (default: json)

	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // expired-challenge sweep interval (default: 5m)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("FORUM_ISSUER", "bookforum"),
		DatabaseFile:         getEnvOrDefault("FORUM_DATABASE_FILE", "forum.db"),
		PepperFile:           getEnvOrDefault("FORUM_PEPPER_FILE", "pepper"),
		ChallengeTTL:         getEnvDurationOrDefault("FORUM_CHALLENGE_TTL", 5*time.Minute),
		SessionTTL:           getEnvDurationOrDefault("FORUM_SESSION_TTL", 12*time.Hour),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
