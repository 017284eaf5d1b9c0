package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Model backends
const (
	ModelBackendPMML   = "pmml"
	ModelBackendRemote = "remote"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string
	// EncryptionKey encrypts borrower identifiers at rest
	EncryptionKey []byte

	ModelBackend       string
	ModelPath          string
	ModelURL           string
	ModelTimeout       time.Duration
	ModelVersion       string
	FeaturesPath       string
	InterpretationPath string

	RedisAddr string
	CacheTTL  time.Duration

	RescoreSchedule string

	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SenderEmail   string
	RiskTeamEmail string

	CORSOrigin string
}

// NewConfig loads configuration from environment variables, seeded from a
// .env file when one exists
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8000"),
		DBConn:             getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=loan_risk sslmode=disable"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		ModelBackend:       getEnv("MODEL_BACKEND", ModelBackendPMML),
		ModelPath:          getEnv("MODEL_PATH", "artifacts/loan_default_risk_model.pmml"),
		ModelURL:           getEnv("MODEL_URL", "http://localhost:5001/invocations"),
		ModelVersion:       getEnv("MODEL_VERSION", "1.0.0"),
		FeaturesPath:       getEnv("FEATURES_PATH", "artifacts/model_features.txt"),
		InterpretationPath: getEnv("INTERPRETATION_PATH", "artifacts/risk_interpretation.txt"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RescoreSchedule:    getEnv("RESCORE_SCHEDULE", ""),
		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getEnv("SMTP_PORT", "587"),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SenderEmail:        getEnv("SENDER_EMAIL", "risk-alerts@localhost"),
		RiskTeamEmail:      getEnv("RISK_TEAM_EMAIL", ""),
		CORSOrigin:         getEnv("CORS_ORIGIN", "http://localhost:5173"),
	}

	var err error
	if cfg.ModelTimeout, err = time.ParseDuration(getEnv("MODEL_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid MODEL_TIMEOUT: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "1h")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	key := getEnv("ENCRYPTION_KEY", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
	if cfg.EncryptionKey, err = hex.DecodeString(key); err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be hex: %w", err)
	}
	if n := len(cfg.EncryptionKey); n != 16 && n != 24 && n != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be 16, 24, or 32 bytes, got %d", n)
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.FeaturesPath == "" {
		return nil, fmt.Errorf("FEATURES_PATH is required")
	}
	switch cfg.ModelBackend {
	case ModelBackendPMML:
		if cfg.ModelPath == "" {
			return nil, fmt.Errorf("MODEL_PATH is required for the pmml backend")
		}
	case ModelBackendRemote:
		if cfg.ModelURL == "" {
			return nil, fmt.Errorf("MODEL_URL is required for the remote backend")
		}
	default:
		return nil, fmt.Errorf("unknown MODEL_BACKEND %q", cfg.ModelBackend)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
