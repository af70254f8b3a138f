package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort      string
	StorageDriver string // "memory" or "mongo"
	MongoURI      string
	MongoDatabase string
	RedisAddress  string // empty disables the read cache
	NATSURL       string // empty disables event publishing

	MinIOEndpoint  string // empty disables photo uploads
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	JWTSecret string

	SMTPHost     string // empty disables mail notices
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string

	OTLPEndpoint string // empty disables tracing
}

func Load() (*Config, error) {
	// .env is optional; real environments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	minioUseSSL, err := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	if err != nil {
		log.Printf("Warning: invalid MINIO_USE_SSL value, defaulting to false: %v", err)
		minioUseSSL = false
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		log.Printf("Warning: invalid SMTP_PORT value, defaulting to 587: %v", err)
		smtpPort = 587
	}

	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		StorageDriver: getEnv("STORAGE_DRIVER", "memory"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "listings"),
		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		NATSURL:       getEnv("NATS_URL", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "listing-photos"),
		MinIOUseSSL:    minioUseSSL,

		JWTSecret: getEnv("JWT_SECRET", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     smtpPort,
		SMTPEmail:    getEnv("SMTP_EMAIL", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set; it is required to sign session tokens")
	}
	if cfg.StorageDriver != "memory" && cfg.StorageDriver != "mongo" {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q, expected \"memory\" or \"mongo\"", cfg.StorageDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
