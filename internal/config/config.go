package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the runtime configuration for the cardwise services.
// Values come from an optional TOML file; a few of them can be overridden
// through environment variables so deployments don't need to ship a file
// just to change a port or a bucket.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	AI      AIConfig      `toml:"ai"`
	Redis   RedisConfig   `toml:"redis"`
	Catalog CatalogConfig `toml:"catalog"`
}

type ServerConfig struct {
	Port string `toml:"port"`
	// RateLimitPerMinute bounds recommend requests per client IP.
	RateLimitPerMinute int `toml:"rate_limit_per_minute"`
}

type StorageConfig struct {
	// Bucket is the GCS bucket for uploaded statement PDFs.
	Bucket string `toml:"bucket"`
	// Project and Dataset locate the BigQuery tables.
	Project string `toml:"project"`
	Dataset string `toml:"dataset"`
}

type AIConfig struct {
	// Model is the Gemini model used for recommendations and
	// statement extraction.
	Model string `toml:"model"`
	// TimeoutSeconds bounds a single outbound generation call.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type RedisConfig struct {
	// Addr enables the Redis recommendation cache when non-empty.
	Addr string `toml:"addr"`
}

type CatalogConfig struct {
	// Path overrides the embedded card catalog when non-empty.
	Path string `toml:"path"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080", RateLimitPerMinute: 30},
		Storage: StorageConfig{Dataset: "cardwise"},
		AI:      AIConfig{Model: "gemini-2.0-flash", TimeoutSeconds: 8},
	}
}

// Load reads the TOML file at path, applies environment overrides and
// returns the resulting configuration. An empty path yields defaults
// plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: reading %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parsing %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 8
	}

	return cfg, nil
}

// AITimeout returns the bounded timeout for a single generation call.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("GCS_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("BQ_PROJECT"); v != "" {
		cfg.Storage.Project = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("CARD_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
}
