//go:build wireinject
// +build wireinject

package di

import (
	"TradeSim/pkg/config"
	"TradeSim/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideClickHouseClient,
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Analytics backend
		ProvideAnalyticsClient,
		ProvidePriceFeed,
		ProvideEvaluator,

		// Repositories
		ProvideReportStore,
		ProvideReportPublisher,

		// Use cases
		ProvideTechnicalSummaryUseCase,
		ProvideClassifyUseCase,
		ProvideKafkaSnapshotsHandler,
		ProvideWatchlistRefresher,

		// Transport
		ProvideTechnicalHandler,
		ProvideKafkaConsumer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
