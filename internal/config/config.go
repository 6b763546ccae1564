package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Token
	TokenTTL time.Duration

	// Object storage (S3)
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	AWSBucketName      string

	// Speech providers
	AzureSpeechKey    string
	AzureSpeechRegion string
	GoogleTTSAPIKey   string
	PollyRegion       string

	// Completion API
	OpenAIAPIKey string

	// External calls
	ProviderTimeout time.Duration

	// Rate Limit
	RateLimitGeneral int

	// Request body
	MaxBodyBytes int64

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 90*24*time.Hour)
	cfg.AWSAccessKeyID = getEnvString("FS_AWS_ACCESS_KEY_ID", "")
	cfg.AWSSecretAccessKey = getEnvString("FS_AWS_SECRET_ACCESS_KEY", "")
	cfg.AWSRegion = getEnvString("AWS_REGION", "us-east-2")
	cfg.AWSBucketName = getEnvString("AWS_BUCKET_NAME", "")
	cfg.AzureSpeechKey = getEnvString("AZURE_SPEECH_KEY", "")
	cfg.AzureSpeechRegion = getEnvString("AZURE_SPEECH_REGION", "eastus")
	cfg.GoogleTTSAPIKey = getEnvString("GOOGLE_TTS_API_KEY", "")
	cfg.PollyRegion = getEnvString("POLLY_REGION", "us-east-2")
	cfg.OpenAIAPIKey = getEnvString("OPENAI_API_KEY", "")
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.MaxBodyBytes = getEnvInt64("MAX_BODY_BYTES", 200<<20)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
