package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"MarketHub/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ErrNotConnected is returned when the handle has no live session. Callers
// should Reconnect or fail fast rather than retry the command as-is.
var ErrNotConnected = errors.New("transport: not connected")

// TransportError wraps a failure of a command issued on a live session.
// The whole operation may be retried by the caller.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Handle is one logical session to the backing Redis store. Construction
// attempts a single connection; a failed dial leaves the handle disconnected
// until Reconnect is called. The underlying go-redis client pools physical
// connections, so a Handle is safe for concurrent use.
type Handle struct {
	client *redis.Client
	logger *logger.Logger

	mu        sync.RWMutex
	connected bool

	dialTimeout time.Duration
}

// Dial creates a Handle and attempts one connection. On failure the handle
// is still returned, in a disconnected state, alongside the error.
func Dial(lgr *logger.Logger, opts ...Option) (*Handle, error) {
	cfg := &Config{
		Host:        "localhost",
		Port:        6379,
		PoolSize:    10,
		DialTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	h := &Handle{
		client:      client,
		logger:      lgr,
		dialTimeout: cfg.DialTimeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		lgr.Error("redis connection failed",
			logger.String("addr", client.Options().Addr),
			logger.Error(err))
		return h, &TransportError{Op: "dial", Err: err}
	}

	h.connected = true
	lgr.Info("connected to redis", logger.String("addr", client.Options().Addr))
	return h, nil
}

// IsConnected reports whether the handle has a live session.
func (h *Handle) IsConnected() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connected
}

// Reconnect re-establishes the session after a failed dial or Close.
func (h *Handle) Reconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.dialTimeout)
	defer cancel()

	if err := h.client.Ping(ctx).Err(); err != nil {
		h.logger.Error("redis reconnect failed", logger.Error(err))
		return &TransportError{Op: "reconnect", Err: err}
	}

	h.mu.Lock()
	h.connected = true
	h.mu.Unlock()

	h.logger.Info("reconnected to redis", logger.String("addr", h.client.Options().Addr))
	return nil
}

// Close terminates the session. The handle reports not-connected afterwards.
func (h *Handle) Close() error {
	h.mu.Lock()
	h.connected = false
	h.mu.Unlock()
	return h.client.Close()
}

// Do runs fn against the underlying client if the session is live. A nil
// error from fn is returned as-is; any other error is wrapped in a
// TransportError carrying op.
func (h *Handle) Do(ctx context.Context, op string, fn func(ctx context.Context, c *redis.Client) error) error {
	if !h.IsConnected() {
		return ErrNotConnected
	}
	if err := fn(ctx, h.client); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return nil
}

// Client exposes the raw client for subscription APIs that hold the
// connection beyond a single command. Returns ErrNotConnected when the
// session is down.
func (h *Handle) Client() (*redis.Client, error) {
	if !h.IsConnected() {
		return nil, ErrNotConnected
	}
	return h.client, nil
}
