package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "clubgate/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	BaseURL         string
	ShutdownTimeout time.Duration

	JWT      JWTConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cognito  CognitoConfig
	SES      SESConfig
	Kafka    KafkaConfig
	Throttle ThrottleConfig
}

// JWTConfig configures session-token verification.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// PostgresConfig configures the relational stores. An empty DSN selects the
// in-memory stores (development mode).
type PostgresConfig struct {
	DSN string
}

// RedisConfig configures the shared Redis client used for throttling.
// An empty URL disables Redis and falls back to in-process throttling.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CognitoConfig configures the identity directory. An empty pool ID selects
// the in-memory directory (development mode).
type CognitoConfig struct {
	PoolID string
}

// SESConfig configures outbound email. An empty sender selects the logging
// sender (development mode).
type SESConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Sender          string
}

// KafkaConfig configures the optional audit event sink.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// ThrottleConfig bounds unauthenticated registration traffic per client IP.
type ThrottleConfig struct {
	Limit  int
	Window time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file is honored when present (development convenience).
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Server{
		Addr:            getEnv("CLUBGATE_ADDR", ":8080"),
		Environment:     getEnv("CLUBGATE_ENV", "development"),
		BaseURL:         getEnv("CLUBGATE_BASE_URL", "http://localhost:8080"),
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", ""),
			Issuer:     getEnv("JWT_ISSUER", "clubgate"),
			Audience:   getEnv("JWT_AUDIENCE", "clubgate"),
		},
		Postgres: PostgresConfig{
			DSN: getEnv("POSTGRES_DSN", ""),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  time.Duration(getEnvInt("REDIS_DIAL_TIMEOUT_MS", 500)) * time.Millisecond,
			ReadTimeout:  time.Duration(getEnvInt("REDIS_READ_TIMEOUT_MS", 250)) * time.Millisecond,
			WriteTimeout: time.Duration(getEnvInt("REDIS_WRITE_TIMEOUT_MS", 250)) * time.Millisecond,
		},
		Cognito: CognitoConfig{
			PoolID: getEnv("COGNITO_POOL_ID", ""),
		},
		SES: SESConfig{
			AccessKeyID:     getEnv("SES_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("SES_SECRET_ACCESS_KEY", ""),
			Region:          getEnv("SES_REGION", ""),
			Sender:          getEnv("SES_SENDER", ""),
		},
		Kafka: KafkaConfig{
			Brokers:    splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "clubgate.audit"),
		},
		Throttle: ThrottleConfig{
			Limit:  getEnvInt("THROTTLE_LIMIT", 10),
			Window: time.Duration(getEnvInt("THROTTLE_WINDOW_SECONDS", 60)) * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot run safely.
func (c Server) Validate() error {
	if c.JWT.SigningKey == "" {
		if c.Environment != "development" {
			return fmt.Errorf("JWT_SIGNING_KEY is required outside development")
		}
	}
	if c.SES.Sender != "" {
		if c.SES.AccessKeyID == "" || c.SES.SecretAccessKey == "" || c.SES.Region == "" {
			return fmt.Errorf("SES credentials and region are required when SES_SENDER is set")
		}
	}
	if c.Throttle.Limit <= 0 {
		return fmt.Errorf("THROTTLE_LIMIT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return pstrings.DedupeAndTrim(strings.Split(s, ","))
}
