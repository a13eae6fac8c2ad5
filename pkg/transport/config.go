package transport

import "time"

// Option configures the Redis session.
type Option func(*Config)

// Config holds Redis connection configuration.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// WithHost sets the Redis host.
func WithHost(host string) Option {
	return func(c *Config) {
		c.Host = host
	}
}

// WithPort sets the Redis port.
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithAddr sets host and port from a single "host:port" string.
func WithAddr(host string, port int) Option {
	return func(c *Config) {
		c.Host = host
		c.Port = port
	}
}

// WithPassword sets the Redis password.
func WithPassword(password string) Option {
	return func(c *Config) {
		c.Password = password
	}
}

// WithDB sets the Redis database number.
func WithDB(db int) Option {
	return func(c *Config) {
		c.DB = db
	}
}

// WithPool sets connection pool settings.
func WithPool(poolSize, minIdleConns int) Option {
	return func(c *Config) {
		c.PoolSize = poolSize
		c.MinIdleConns = minIdleConns
	}
}

// WithTimeouts sets dial, read and write timeouts.
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(c *Config) {
		if dial > 0 {
			c.DialTimeout = dial
		}
		if read > 0 {
			c.ReadTimeout = read
		}
		if write > 0 {
			c.WriteTimeout = write
		}
	}
}
