package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL       string        `yaml:"database_url"`
	RedisURL          string        `yaml:"redis_url"`
	RabbitMQURL       string        `yaml:"rabbitmq_url"`
	RabbitMQPrefetch  int           `yaml:"rabbitmq_prefetch"`
	WorkerDebugMode   bool          `yaml:"worker_debug_mode"`
	ProvisionInterval time.Duration `yaml:"provision_interval"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	OTELEnabled       bool          `yaml:"otel_enabled"`
	OTELEndpoint      string        `yaml:"otel_endpoint"`
}

// Load reads configuration from an optional YAML file (TRACKPRO_CONFIG)
// with environment variables taking precedence
func Load() (*Config, error) {
	cfg := &Config{
		RabbitMQPrefetch:  1,
		ProvisionInterval: time.Hour,
		CacheTTL:          5 * time.Minute,
	}

	if path := os.Getenv("TRACKPRO_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RabbitMQPrefetch = getEnvInt("RABBITMQ_PREFETCH", cfg.RabbitMQPrefetch)
	cfg.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", cfg.WorkerDebugMode)
	cfg.ProvisionInterval = getEnvDuration("PROVISION_INTERVAL", cfg.ProvisionInterval)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for batch provisioning and milestone events")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
