package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port           string
	AllowedOrigins string

	// Default arena board
	BoardWidth  float64
	BoardHeight float64
	RosterSize  int
	TimeScale   float64
	SimSeed     int64
	AutoStart   bool

	// Arena lifecycle
	MaxArenas          int
	ArenaIdleSeconds   int
	JanitorPollSeconds int

	// Result reporting
	ResultWebhookURL   string
	WebhookPollSeconds int
	WebhookMaxAttempts int
	WebhookTimeout     int

	// Security
	JWTSecret     string
	TokenTTLHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/hexclash?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:           getEnv("APP_PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),

		// Default arena board
		BoardWidth:  getEnvFloat("BOARD_WIDTH", 1280),
		BoardHeight: getEnvFloat("BOARD_HEIGHT", 720),
		RosterSize:  getEnvInt("ROSTER_SIZE", 3),
		TimeScale:   getEnvFloat("TIME_SCALE", 1.0),
		SimSeed:     int64(getEnvInt("SIM_SEED", 0)),
		AutoStart:   getEnvBool("AUTO_START", true),

		// Arena lifecycle
		MaxArenas:          getEnvInt("MAX_ARENAS", 16),
		ArenaIdleSeconds:   getEnvInt("ARENA_IDLE_SECONDS", 600),
		JanitorPollSeconds: getEnvInt("JANITOR_POLL_SECONDS", 30),

		// Result reporting
		ResultWebhookURL:   getEnv("RESULT_WEBHOOK_URL", ""),
		WebhookPollSeconds: getEnvInt("WEBHOOK_POLL_SECONDS", 60),
		WebhookMaxAttempts: getEnvInt("WEBHOOK_MAX_ATTEMPTS", 5),
		WebhookTimeout:     getEnvInt("WEBHOOK_TIMEOUT", 10),

		// Security
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 24),
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
