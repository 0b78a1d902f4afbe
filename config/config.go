package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DBDriver         string
	DatabaseURL      string
	DBConnectRetries int
	DBSeed           bool

	ProductListOrder string
	FrontendURL      string

	RedisURL          string
	WorkerConcurrency int

	OTelServiceName string
	OTelEndpoint    string

	ShutdownTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DBDriver:         getEnv("DB_DRIVER", DriverPostgres),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ProductListOrder: getEnv("PRODUCT_LIST_ORDER", "id_desc"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		RedisURL:         getEnv("REDIS_URL", ""),
		OTelServiceName:  getEnv("OTEL_SERVICE_NAME", "echo-product-catalog"),
		OTelEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}

	var err error
	if cfg.DBConnectRetries, err = getEnvInt("DB_CONNECT_RETRIES", 5); err != nil {
		return nil, err
	}
	if cfg.WorkerConcurrency, err = getEnvInt("WORKER_CONCURRENCY", 10); err != nil {
		return nil, err
	}

	seed, err := strconv.ParseBool(getEnv("DB_SEED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_SEED: %w", err)
	}
	cfg.DBSeed = seed

	timeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver)
	}
	switch c.ProductListOrder {
	case "id_desc", "id_asc", "none":
	default:
		return fmt.Errorf("PRODUCT_LIST_ORDER must be one of id_desc, id_asc, none, got %q", c.ProductListOrder)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.DBConnectRetries < 1 {
		return fmt.Errorf("DB_CONNECT_RETRIES must be at least 1")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// JobsEnabled reports whether product events are published to the asynq queue.
func (c *Config) JobsEnabled() bool {
	return c.RedisURL != ""
}

func (c *Config) RedisAddr() string {
	if len(c.RedisURL) > 8 && c.RedisURL[:8] == "redis://" {
		return c.RedisURL[8:]
	}
	return c.RedisURL
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}
