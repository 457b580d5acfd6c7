package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	AdminAPIToken string

	// Provider credentials. Empty key means the provider is not wired and
	// requests routed to it fail with a configuration error.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	BFLAPIKey     string
	BFLBaseURL    string
	FalAPIKey     string
	FalBaseURL    string

	// Object storage. Backend is "s3" or "fs".
	StorageBackend       string
	StorageEndpoint      string
	StorageRegion        string
	StorageBucket        string
	StorageAccessKey     string
	StorageSecretKey     string
	StoragePublicBaseURL string
	StorageBasePath      string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ProviderTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		BFLAPIKey:     os.Getenv("BFL_API_KEY"),
		BFLBaseURL:    getEnv("BFL_BASE_URL", "https://api.bfl.ai/v1"),
		FalAPIKey:     os.Getenv("FAL_API_KEY"),
		FalBaseURL:    getEnv("FAL_BASE_URL", "https://queue.fal.run"),

		StorageBackend:       getEnv("STORAGE_BACKEND", "s3"),
		StorageEndpoint:      os.Getenv("STORAGE_ENDPOINT"),
		StorageRegion:        getEnv("STORAGE_REGION", "auto"),
		StorageBucket:        os.Getenv("STORAGE_BUCKET"),
		StorageAccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
		StoragePublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		StorageBasePath:      getEnv("STORAGE_BASE_PATH", "./data/images"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ProviderTimeout:  time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.StorageBackend {
	case "s3", "fs":
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be s3 or fs, got %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
