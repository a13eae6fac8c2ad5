package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Redis struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		PoolSize     int           `yaml:"pool_size"`
		MinIdleConns int           `yaml:"min_idle_conns"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"redis"`
	Hub struct {
		Namespace       string `yaml:"namespace"`
		HistoryCapacity int    `yaml:"history_capacity"`
		SnapshotTopic   string `yaml:"snapshot_topic"`
		SignalTopic     string `yaml:"signal_topic"`
	} `yaml:"hub"`
	Forwarder struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		BatchSize    int           `yaml:"batch_size"`
		PollInterval time.Duration `yaml:"poll_interval"`
		Compression  string        `yaml:"compression"`
		RequiredAcks int           `yaml:"required_acks"`
		MaxAttempts  int           `yaml:"max_attempts"`
	} `yaml:"forwarder"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("REDIS_PORT: %w", err)
		}
		c.Redis.Port = p
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("HUB_NAMESPACE"); v != "" {
		c.Hub.Namespace = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Forwarder.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Forwarder.Topic = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "console"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Hub.Namespace == "" {
		c.Hub.Namespace = "markethub"
	}
	if c.Hub.HistoryCapacity == 0 {
		c.Hub.HistoryCapacity = 1000
	}
	if c.Hub.SnapshotTopic == "" {
		c.Hub.SnapshotTopic = "market_updates"
	}
	if c.Hub.SignalTopic == "" {
		c.Hub.SignalTopic = "signals"
	}
	if c.Forwarder.BatchSize == 0 {
		c.Forwarder.BatchSize = 50
	}
	if c.Forwarder.PollInterval == 0 {
		c.Forwarder.PollInterval = 2 * time.Second
	}
	if c.Forwarder.Compression == "" {
		c.Forwarder.Compression = "gzip"
	}
	if c.Forwarder.MaxAttempts == 0 {
		c.Forwarder.MaxAttempts = 3
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Hub.HistoryCapacity < 1 {
		return fmt.Errorf("hub.history_capacity must be positive")
	}
	if strings.Contains(c.Hub.Namespace, ":") {
		return fmt.Errorf("hub.namespace must not contain ':'")
	}
	if c.Forwarder.Enabled && len(c.Forwarder.Brokers) == 0 {
		return fmt.Errorf("forwarder.brokers are required when forwarder is enabled")
	}
	if c.Forwarder.Enabled && c.Forwarder.Topic == "" {
		return fmt.Errorf("forwarder.topic is required when forwarder is enabled")
	}
	return nil
}
