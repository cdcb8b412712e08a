package config

import (
	"fmt"
	"os"
)

type Config struct {
	// Recognition service
	LPRBaseURL string
	LPRPath    string
	LPRAuthKey string

	// Object storage
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3UseSSL          bool
	S3ForcePathStyle  bool

	// Kafka
	KafkaBrokers string
	KafkaTopic   string

	// Database
	DatabaseURL string

	// Auth
	JWTSecret string

	// Server
	Port        string
	Environment string
}

func Load() (*Config, error) {
	cfg := &Config{
		LPRBaseURL: getEnv("LPR_BASE_URL", ""),
		LPRPath:    getEnv("LPR_PATH", "/v1/analyze"),
		LPRAuthKey: getEnv("LPR_AUTH_KEY", ""),

		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3UseSSL:          getEnv("S3_USE_SSL", "true") == "true",
		S3ForcePathStyle:  getEnv("S3_FORCE_PATH_STYLE", "false") == "true",

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "vehicle-image-uploads"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LPRBaseURL == "" {
		return fmt.Errorf("LPR_BASE_URL is required")
	}
	if c.LPRAuthKey == "" {
		return fmt.Errorf("LPR_AUTH_KEY is required")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	if c.KafkaBrokers == "" {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
