package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// Auth
	JWTSecret     string
	AuthIssuerURL string

	// Profile service
	OpTimeout    time.Duration
	CacheTTL     time.Duration
	RateLimit    int
	RateLimitWin time.Duration

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "devconnector"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// Auth
		JWTSecret:     getEnv("JWT_SECRET", ""),
		AuthIssuerURL: getEnv("AUTH_ISSUER_URL", ""),

		// Profile service
		OpTimeout:    time.Duration(getEnvInt("OP_TIMEOUT_SEC", 5)) * time.Second,
		CacheTTL:     time.Duration(getEnvInt("CACHE_TTL_SEC", 30)) * time.Second,
		RateLimit:    getEnvInt("RATE_LIMIT", 300),
		RateLimitWin: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SEC", 60)) * time.Second,

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
