package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Remote content API
	ContentAPIBaseURL string `json:"content_api_base_url"`

	// Stock quote proxy
	QuoteAPIBaseURL string        `json:"quote_api_base_url"`
	StockCacheTTL   time.Duration `json:"stock_cache_ttl"`

	// Optional Redis backend for the quote cache; empty means in-memory
	RedisURL    string `json:"redis_url"`
	RedisPrefix string `json:"redis_prefix"`

	// CloudFlare R2 media uploads (optional)
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2PublicURL string `json:"r2_public_url"`

	// Logging
	LogLevel string `json:"log_level"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// Remote content API
		ContentAPIBaseURL: getEnv("ATAP_API_BASE_URL", "https://atap-api-production.up.railway.app"),

		// Stock quote proxy
		QuoteAPIBaseURL: getEnv("QUOTE_API_BASE_URL", "https://query1.finance.yahoo.com"),
		StockCacheTTL:   getEnvAsDuration("STOCK_CACHE_TTL", 15*time.Minute),

		// Redis
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "atap:"),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "atap-media"),
		R2PublicURL: getEnv("R2_PUBLIC_URL", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ContentAPIBaseURL == "" {
		return fmt.Errorf("ATAP_API_BASE_URL must not be empty")
	}
	if c.StockCacheTTL <= 0 {
		return fmt.Errorf("STOCK_CACHE_TTL must be positive, got %v", c.StockCacheTTL)
	}
	return nil
}

// MediaEnabled reports whether R2 uploads are configured.
func (c *Config) MediaEnabled() bool {
	return c.R2Endpoint != "" && c.R2AccessKey != "" && c.R2SecretKey != ""
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
