// File: /config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	DBDriver    string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string
	SeedFile    string

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int

	// Shortlist engine
	DefaultCityLat    float64
	DefaultCityLng    float64
	ShortlistCacheTTL time.Duration
	RedisURL          string

	// Voting deadline sweeper
	DeadlineSweepInterval time.Duration

	// Lifecycle notifications
	NATSURL       string
	TelegramToken string

	// Email Configuration
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	FromEmail     string
	FromName      string
	NotifyEmailTo string
}

// Load reads configuration from the environment, after merging a local .env
// file when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		DatabaseURL: getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/gatherly?charset=utf8mb4&parseTime=True&loc=UTC"),
		JWTSecret:   getEnv("JWT_SECRET", "development-secret-change-in-production"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SeedFile:    getEnv("SEED_FILE", ""),

		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 20),

		// Chisinau city center
		DefaultCityLat:    getFloatEnv("DEFAULT_CITY_LAT", 47.0105),
		DefaultCityLng:    getFloatEnv("DEFAULT_CITY_LNG", 28.8638),
		ShortlistCacheTTL: getDurationEnv("SHORTLIST_CACHE_TTL", 30*time.Minute),
		RedisURL:          getEnv("REDIS_URL", ""),

		DeadlineSweepInterval: getDurationEnv("DEADLINE_SWEEP_INTERVAL", time.Minute),

		NATSURL:       getEnv("NATS_URL", ""),
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getIntEnv("SMTP_PORT", 2525),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		FromEmail:     getEnv("FROM_EMAIL", "noreply@gatherly.app"),
		FromName:      getEnv("FROM_NAME", "Gatherly"),
		NotifyEmailTo: getEnv("NOTIFY_EMAIL_TO", ""),
	}
}

// IsDevelopment reports whether the server runs with gin's debug mode.
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
