//go:build wireinject
// +build wireinject

package di

import (
	"MarketHub/pkg/config"
	"MarketHub/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Backing store
		ProvideTransportHandle,
		ProvideHub,

		// Forwarder (optional, nil when disabled)
		ProvideKafkaProducer,
		ProvideSignalForwarder,

		// HTTP surface
		ProvideHubHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
