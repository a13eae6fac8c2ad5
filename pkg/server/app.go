package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MarketHub/internal/hub"
	"MarketHub/internal/usecase"
	"MarketHub/pkg/config"
	xhttp "MarketHub/pkg/http"
	pkgkafka "MarketHub/pkg/kafka"
	applogger "MarketHub/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	hub       *hub.Hub
	handler   xhttp.Handler
	forwarder *usecase.SignalForwarder
	producer  *pkgkafka.Producer

	httpServer *xhttp.Server
}

// New creates a new App instance. forwarder and producer are nil when the
// Kafka forwarder is disabled.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	h *hub.Hub,
	handler xhttp.Handler,
	forwarder *usecase.SignalForwarder,
	producer *pkgkafka.Producer,
) *App {
	return &App{
		cfg:       cfg,
		logger:    lgr,
		hub:       h,
		handler:   handler,
		forwarder: forwarder,
		producer:  producer,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	if !a.hub.IsConnected() {
		a.logger.Warn("starting without a live backing store connection")
	}

	if a.forwarder != nil {
		if err := a.forwarder.Start(); err != nil {
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("namespace", a.cfg.Hub.Namespace))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.forwarder != nil {
		if err := a.forwarder.Stop(ctx); err != nil {
			a.logger.Warn("forwarder stop error", applogger.Error(err))
		}
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if err := a.hub.Close(); err != nil {
		a.logger.Warn("hub close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
