package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Ear classifier
	ClassifierBaseURL string

	// Reconstruction backend
	ReconstructionURL    string
	ReconstructionSecret string

	// Supabase storage
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// Auth
	JWTSecret string

	// Redis (OTP challenge state)
	RedisAddr     string
	RedisPassword string

	// Database
	DatabaseURL string

	// Local photo store
	PhotoDir string
	MediaDir string

	// Capture
	PhotoTarget int
	ScanDelay   time.Duration

	// Server
	Port        string
	Environment string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ClassifierBaseURL: getEnv("CLASSIFIER_BASE_URL", "http://localhost:8000"),

		ReconstructionURL:    getEnv("RECONSTRUCTION_URL", ""),
		ReconstructionSecret: getEnv("RECONSTRUCTION_WEBHOOK_SECRET", ""),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "ear-uploads"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		PhotoDir: getEnv("PHOTO_DIR", "data/photos"),
		MediaDir: getEnv("MEDIA_DIR", "data/media"),

		PhotoTarget: 20,
		ScanDelay:   500 * time.Millisecond,

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
