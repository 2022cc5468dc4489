// Package config loads the YAML configuration of the timeline server.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/meikuraledutech/timeline/memstore"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DatabaseURLEnv overrides Database.URL when set.
const DatabaseURLEnv = "DATABASE_URL"

// Config is the server configuration.
type Config struct {
	Listen   string         `yaml:"listen"`
	Timeline TimelineConfig `yaml:"timeline"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// TimelineConfig points at the upstream timeline server.
type TimelineConfig struct {
	BaseURL   string        `yaml:"baseURL"`
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	RetryWait time.Duration `yaml:"retryWait"`
}

// DatabaseConfig selects the postgres store. An empty URL selects the
// in-memory store instead.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// CacheConfig sizes the in-memory store.
type CacheConfig struct {
	Size int `yaml:"size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads and parses the YAML configuration file at path. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Unmarshal(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Unmarshal(data)
}

// Unmarshal parses YAML data, applies defaults and the environment override
// and validates the result.
func Unmarshal(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&c)
	if url := os.Getenv(DatabaseURLEnv); url != "" {
		c.Database.URL = url
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(c *Config) {
	if c.Listen == "" {
		c.Listen = ":3000"
	}
	if c.Timeline.BaseURL == "" {
		c.Timeline.BaseURL = "http://localhost:8188"
	}
	if c.Timeline.Timeout == 0 {
		c.Timeline.Timeout = 30 * time.Second
	}
	if c.Timeline.RetryWait == 0 {
		c.Timeline.RetryWait = 100 * time.Millisecond
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = memstore.DefaultSize
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Timeline.Timeout < 0 {
		return fmt.Errorf("invalid timeline.timeout %s", c.Timeline.Timeout)
	}
	if c.Timeline.Retries < 0 {
		return fmt.Errorf("invalid timeline.retries %d", c.Timeline.Retries)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("invalid cache.size %d", c.Cache.Size)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}
