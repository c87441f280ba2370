// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// StorageConfig provides settings for the object store used for lead documents.
type StorageConfig interface {
	GetStorageDriver() string
	GetStorageBucket() string
	GetStorageEndpoint() string
	GetStorageRegion() string
	GetStorageAccessKey() string
	GetStorageSecretKey() string
	GetStorageUseSSL() bool
	GetStorageMaxFileSize() int64
	GetSignedURLTTL() time.Duration
}

// RedisConfig provides settings for the redis connection backing the cache.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// DashboardConfig provides the cache lifetimes for dashboard aggregates.
type DashboardConfig interface {
	GetTaskStatsTTL() time.Duration
	GetStatusCountsTTL() time.Duration
	GetPerformanceTTL() time.Duration
}

// TransitionConfig provides settings for the stage transition executor.
type TransitionConfig interface {
	GetTransitionTxTimeout() time.Duration
}

// SchedulerConfig provides settings for the asynq worker and scheduler.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetCacheWarmInterval() time.Duration
}

// SentryConfig provides error reporting settings.
type SentryConfig interface {
	GetSentryDSN() string
	GetEnv() string
}

// =============================================================================
// Config Struct
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	JWTAccessSecret string
	CORSAllowAll    bool
	CORSOrigins     []string
	CORSAllowCreds  bool

	StorageDriver      string
	StorageBucket      string
	StorageEndpoint    string
	StorageRegion      string
	StorageAccessKey   string
	StorageSecretKey   string
	StorageUseSSL      bool
	StorageMaxFileSize int64
	SignedURLTTL       time.Duration

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int
	CacheWarmEvery   time.Duration

	TaskStatsTTL    time.Duration
	StatusCountsTTL time.Duration
	PerformanceTTL  time.Duration

	TransitionTxTimeout time.Duration

	SentryDSN string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// StorageConfig implementation
func (c *Config) GetStorageDriver() string       { return c.StorageDriver }
func (c *Config) GetStorageBucket() string       { return c.StorageBucket }
func (c *Config) GetStorageEndpoint() string     { return c.StorageEndpoint }
func (c *Config) GetStorageRegion() string       { return c.StorageRegion }
func (c *Config) GetStorageAccessKey() string    { return c.StorageAccessKey }
func (c *Config) GetStorageSecretKey() string    { return c.StorageSecretKey }
func (c *Config) GetStorageUseSSL() bool         { return c.StorageUseSSL }
func (c *Config) GetStorageMaxFileSize() int64   { return c.StorageMaxFileSize }
func (c *Config) GetSignedURLTTL() time.Duration { return c.SignedURLTTL }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string           { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int            { return c.AsynqConcurrency }
func (c *Config) GetCacheWarmInterval() time.Duration { return c.CacheWarmEvery }

// DashboardConfig implementation
func (c *Config) GetTaskStatsTTL() time.Duration    { return c.TaskStatsTTL }
func (c *Config) GetStatusCountsTTL() time.Duration { return c.StatusCountsTTL }
func (c *Config) GetPerformanceTTL() time.Duration  { return c.PerformanceTTL }

// TransitionConfig implementation
func (c *Config) GetTransitionTxTimeout() time.Duration { return c.TransitionTxTimeout }

// SentryConfig implementation
func (c *Config) GetSentryDSN() string { return c.SentryDSN }
func (c *Config) GetEnv() string       { return c.Env }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:    corsAllowAll,
		CORSOrigins:     corsOrigins,
		CORSAllowCreds:  strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),
		StorageBucket:      getEnv("STORAGE_BUCKET", "lead-documents"),
		StorageEndpoint:    getEnv("STORAGE_ENDPOINT", ""),
		StorageRegion:      getEnv("STORAGE_REGION", "us-east-1"),
		StorageAccessKey:   getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey:   getEnv("STORAGE_SECRET_KEY", ""),
		StorageUseSSL:      strings.EqualFold(getEnv("STORAGE_USE_SSL", "false"), "true"),
		StorageMaxFileSize: mustInt64(getEnv("STORAGE_MAX_FILE_SIZE", "52428800")),
		SignedURLTTL:       mustDuration(getEnv("SIGNED_URL_TTL", "15m")),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "5"))),
		CacheWarmEvery:   mustDuration(getEnv("CACHE_WARM_INTERVAL", "5m")),

		TaskStatsTTL:    mustDuration(getEnv("CACHE_TTL_TASK_STATS", "5m")),
		StatusCountsTTL: mustDuration(getEnv("CACHE_TTL_STATUS_COUNTS", "10m")),
		PerformanceTTL:  mustDuration(getEnv("CACHE_TTL_PERFORMANCE", "10m")),

		TransitionTxTimeout: mustDuration(getEnv("TRANSITION_TX_TIMEOUT", "20s")),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.StorageDriver != "minio" && cfg.StorageDriver != "s3" {
		return nil, fmt.Errorf("STORAGE_DRIVER must be minio or s3, got %q", cfg.StorageDriver)
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.TransitionTxTimeout <= 0 {
		cfg.TransitionTxTimeout = 20 * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
