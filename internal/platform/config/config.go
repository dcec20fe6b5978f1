package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
}

// Postgres captures database configuration. An empty DSN selects the
// in-memory stores.
type Postgres struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Redis captures command-dedup store configuration. An empty URL selects the
// in-process fallback.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures event sink configuration. No brokers means events stay in
// the local store only.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Gateway captures command gateway tuning.
type Gateway struct {
	InboxSize int
}

// Config is the full service configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Gateway  Gateway
}

// FromEnv builds the service config from environment variables so main stays
// lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envOr("PORTFOLIO_ADDR", ":8080"),
			ShutdownTimeout: envDuration("PORTFOLIO_SHUTDOWN_TIMEOUT", 10*time.Second),
			// Development default; override in production.
			JWTSigningKey: envOr("PORTFOLIO_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     envOr("PORTFOLIO_JWT_ISSUER", "portfolio"),
			JWTAudience:   envOr("PORTFOLIO_JWT_AUDIENCE", "portfolio-api"),
		},
		Postgres: Postgres{
			DSN:             os.Getenv("PORTFOLIO_POSTGRES_DSN"),
			MaxOpenConns:    envInt("PORTFOLIO_POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("PORTFOLIO_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("PORTFOLIO_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: Redis{
			URL:          os.Getenv("PORTFOLIO_REDIS_URL"),
			PoolSize:     envInt("PORTFOLIO_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("PORTFOLIO_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("PORTFOLIO_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("PORTFOLIO_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("PORTFOLIO_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: envList("PORTFOLIO_KAFKA_BROKERS"),
			Topic:   envOr("PORTFOLIO_KAFKA_TOPIC", "portfolio.case-events"),
		},
		Gateway: Gateway{
			InboxSize: envInt("PORTFOLIO_GATEWAY_INBOX_SIZE", 256),
		},
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
