package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all process-wide settings loaded from the environment.
type Config struct {
	Port              string
	DBPath            string
	JWTSecret         string
	TokenExpiry       time.Duration
	UploadDir         string
	AllowedOrigin     string
	StreakHorizonDays int
}

// LoadConfig reads configuration from a .env file (if present) and the
// environment, falling back to development defaults.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "habit.db"),
		JWTSecret:         getEnv("JWT_SECRET", "change_me"),
		TokenExpiry:       getDurationEnv("TOKEN_EXPIRY_MINUTES", 30) * time.Minute,
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		StreakHorizonDays: getIntEnv("STREAK_HORIZON_DAYS", 200),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.WithField("key", key).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return parsed
}

func getDurationEnv(key string, fallback int) time.Duration {
	return time.Duration(getIntEnv(key, fallback))
}
