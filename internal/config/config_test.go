package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("TRACKPRO_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RABBITMQ_URL", "amqp://localhost")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadRequiresRabbitMQURL(t *testing.T) {
	t.Setenv("TRACKPRO_CONFIG", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/trackpro")
	t.Setenv("RABBITMQ_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when RABBITMQ_URL is missing")
	}
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("TRACKPRO_CONFIG", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/trackpro")
	t.Setenv("RABBITMQ_URL", "amqp://localhost")
	t.Setenv("RABBITMQ_PREFETCH", "4")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.RabbitMQPrefetch != 4 {
		t.Errorf("RabbitMQPrefetch = %d, want 4", cfg.RabbitMQPrefetch)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %s, want 90s", cfg.CacheTTL)
	}
	if cfg.ProvisionInterval != time.Hour {
		t.Errorf("ProvisionInterval = %s, want default 1h", cfg.ProvisionInterval)
	}
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("database_url: postgres://file/db\nredis_url: redis://file:6379/0\nrabbitmq_url: amqp://file\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("TRACKPRO_CONFIG", path)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://env/db" {
		t.Errorf("env should override file: got %s", cfg.DatabaseURL)
	}
	if cfg.RedisURL != "redis://file:6379/0" {
		t.Errorf("file value should survive when env unset: got %s", cfg.RedisURL)
	}
	if cfg.RabbitMQURL != "amqp://file" {
		t.Errorf("RabbitMQURL = %s, want amqp://file", cfg.RabbitMQURL)
	}
}
