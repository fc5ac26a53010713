package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Ingest   IngestConfig
	Billing  BillingConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
	RateLimit   float64 // requests per second per client
	RateBurst   int
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type LLMConfig struct {
	OpenAIKey        string
	OpenAIBaseURL    string
	AnthropicKey     string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	FallbackModel    string
	EmbeddingModel   string
	MaxRetries       int
}

type StorageConfig struct {
	Region      string
	Bucket      string
	Prefix      string
	Endpoint    string // S3-compatible endpoint override (MinIO, LocalStack)
	UploadTTL   time.Duration
	DownloadTTL time.Duration
	LedgerTTL   time.Duration
}

type IngestConfig struct {
	Mode              string // "queue" or "inline"
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	PoolSize          int
	WorkerConcurrency int
}

type BillingConfig struct {
	ProPriceID string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rateBurst, err := getEnvInt("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	rateLimit, err := getEnvFloat("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	uploadTTL, err := getEnvDuration("UPLOAD_URL_TTL", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_URL_TTL: %w", err)
	}

	downloadTTL, err := getEnvDuration("DOWNLOAD_URL_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_URL_TTL: %w", err)
	}

	ledgerTTL, err := getEnvDuration("UPLOAD_LEDGER_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_LEDGER_TTL: %w", err)
	}

	retryAttempts, err := getEnvInt("INGEST_RETRY_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_RETRY_ATTEMPTS: %w", err)
	}

	retryBase, err := getEnvDuration("INGEST_RETRY_BASE_DELAY", 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_RETRY_BASE_DELAY: %w", err)
	}

	poolSize, err := getEnvInt("INGEST_POOL_SIZE", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_POOL_SIZE: %w", err)
	}

	concurrency, err := getEnvInt("WORKER_CONCURRENCY", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        port,
			CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			Issuer:    getEnv("AUTH_JWT_ISSUER", ""),
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			FallbackModel:    getEnv("LLM_FALLBACK_MODEL", "claude-3-haiku-20240307"),
			EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			MaxRetries:       maxRetries,
		},
		Storage: StorageConfig{
			Region:      getEnv("AWS_REGION", "us-east-1"),
			Bucket:      getEnv("AWS_S3_BUCKET", ""),
			Prefix:      getEnv("AWS_S3_PREFIX", ""),
			Endpoint:    getEnv("AWS_S3_ENDPOINT", ""),
			UploadTTL:   uploadTTL,
			DownloadTTL: downloadTTL,
			LedgerTTL:   ledgerTTL,
		},
		Ingest: IngestConfig{
			Mode:              getEnv("INGEST_MODE", "queue"),
			RetryAttempts:     retryAttempts,
			RetryBaseDelay:    retryBase,
			PoolSize:          poolSize,
			WorkerConcurrency: concurrency,
		},
		Billing: BillingConfig{
			ProPriceID: getEnv("STRIPE_PRO_PRICE_ID", "price_1OlhO3JaBAm9jIPJV2bwAYib"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}
	if c.Storage.Bucket == "" {
		missing = append(missing, "AWS_S3_BUCKET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if c.Ingest.Mode != "queue" && c.Ingest.Mode != "inline" {
		return fmt.Errorf("INGEST_MODE must be queue or inline, got %q", c.Ingest.Mode)
	}
	// A retry must never outlive the credential it was issued with.
	if c.Storage.DownloadTTL <= c.Ingest.RetryBaseDelay*time.Duration(1<<max(c.Ingest.RetryAttempts-1, 0)) {
		return fmt.Errorf("DOWNLOAD_URL_TTL %s is shorter than the ingest retry backoff", c.Storage.DownloadTTL)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
