package di

import (
	"fmt"

	"MarketHub/internal/handler/api"
	"MarketHub/internal/hub"
	"MarketHub/internal/usecase"
	"MarketHub/pkg/config"
	xhttp "MarketHub/pkg/http"
	pkgkafka "MarketHub/pkg/kafka"
	applogger "MarketHub/pkg/logger"
	"MarketHub/pkg/metrics"
	"MarketHub/pkg/server"
	"MarketHub/pkg/transport"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lgr, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return lgr, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideTransportHandle dials the Redis backing store. A dial failure is
// not fatal: the handle comes up disconnected and operations fail with
// ErrNotConnected until Reconnect succeeds.
func ProvideTransportHandle(cfg *config.Config, lgr *applogger.Logger) (*transport.Handle, error) {
	handle, err := transport.Dial(lgr,
		transport.WithHost(cfg.Redis.Host),
		transport.WithPort(cfg.Redis.Port),
		transport.WithPassword(cfg.Redis.Password),
		transport.WithDB(cfg.Redis.DB),
		transport.WithPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns),
		transport.WithTimeouts(cfg.Redis.DialTimeout, cfg.Redis.ReadTimeout, cfg.Redis.WriteTimeout),
	)
	if err != nil {
		if handle == nil {
			return nil, fmt.Errorf("transport: %w", err)
		}
		lgr.Warn("backing store unreachable, starting disconnected", applogger.Error(err))
	}
	return handle, nil
}

// ProvideHub creates the market data hub on the transport handle.
func ProvideHub(handle *transport.Handle, cfg *config.Config, lgr *applogger.Logger, rec *metrics.Recorder) *hub.Hub {
	return hub.New(handle, hub.Config{
		Namespace:       cfg.Hub.Namespace,
		HistoryCapacity: cfg.Hub.HistoryCapacity,
		SnapshotTopic:   cfg.Hub.SnapshotTopic,
		SignalTopic:     cfg.Hub.SignalTopic,
	}, lgr, rec)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when the forwarder
// is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Forwarder.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Forwarder.Brokers),
		pkgkafka.WithCompression(cfg.Forwarder.Compression),
		pkgkafka.WithRequiredAcks(cfg.Forwarder.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Forwarder.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalForwarder creates the queue-to-Kafka forwarder, or nil when
// no producer is configured.
func ProvideSignalForwarder(h *hub.Hub, producer *pkgkafka.Producer, cfg *config.Config, lgr *applogger.Logger) *usecase.SignalForwarder {
	if producer == nil {
		return nil
	}
	return usecase.NewSignalForwarder(h, producer,
		cfg.Forwarder.Topic,
		cfg.Forwarder.BatchSize,
		cfg.Forwarder.PollInterval,
		lgr,
	)
}

// ProvideHubHandler creates the HTTP handler for the hub API.
func ProvideHubHandler(lgr *applogger.Logger, h *hub.Hub) xhttp.Handler {
	return api.NewHubEchoHandler(lgr, h)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	h *hub.Hub,
	handler xhttp.Handler,
	forwarder *usecase.SignalForwarder,
	producer *pkgkafka.Producer,
) *server.App {
	return server.New(cfg, lgr, h, handler, forwarder, producer)
}
