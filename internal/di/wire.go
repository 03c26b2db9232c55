//go:build wireinject
// +build wireinject

package di

import (
	"StockCast/pkg/config"
	"StockCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideCache,

		// Repositories
		ProvideQuoteStore,
		ProvideModelStore,
		ProvideSignalPublisher,

		// Domain services
		ProvideMemoizer,
		ProvideEngineer,
		ProvideForecaster,

		// Use cases
		ProvideTuner,
		ProvidePredictor,
		ProvidePipeline,
		ProvideTuneQueue,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
