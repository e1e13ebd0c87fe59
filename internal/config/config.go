package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port  int
	Debug bool

	// Database
	DatabasePath string

	// Session
	SessionSecret string
	SessionMaxAge int // seconds

	// CORS
	AllowedOrigin string

	// Rate limiting for the grading endpoint
	GradeRatePerMinute int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnvInt("PORT", 8080),
		Debug:              getEnvBool("DEBUG", false),
		DatabasePath:       getEnv("DATABASE_PATH", "codedojo.db"),
		SessionSecret:      getEnv("SESSION_SECRET", "change-me-in-production"),
		SessionMaxAge:      getEnvInt("SESSION_MAX_AGE", 86400*7), // 7 days
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		GradeRatePerMinute: getEnvInt("GRADE_RATE_PER_MINUTE", 60),
	}

	// Validate required settings
	if cfg.SessionSecret == "change-me-in-production" && !cfg.Debug {
		return nil, fmt.Errorf("SESSION_SECRET must be set in production")
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
