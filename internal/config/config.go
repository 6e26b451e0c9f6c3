package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// DatabaseURL selects the Postgres draft repository when set; empty
	// keeps the in-memory store.
	DatabaseURL string
	// RefreshAfterSeconds is the advisory polling cadence advertised on
	// list responses for clients without an SSE connection.
	RefreshAfterSeconds int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         env,
		CORSOrigins:         getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RefreshAfterSeconds: getEnvInt("REFRESH_AFTER_SECONDS", 30),
		// Debug defaults to true outside prod
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
