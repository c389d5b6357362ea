//go:build wireinject
// +build wireinject

package di

import (
	"RetailPulse/pkg/config"
	"RetailPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,
		ProvideForecastMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,
		ProvideCacheService,

		// Repositories (with business logic)
		ProvideSalesStorage,
		ProvideSalesPublisher,
		ProvidePosFeedStream,
		ProvideHistoryProvider,
		ProvideForecastLog,
		ProvideThresholdStore,
		ProvidePerishableStore,

		// Signal ingestion
		ProvideSignalFeed,
		ProvideAdjusters,

		// Use cases
		ProvideSalesProcessor,
		ProvideSalesCollector,
		ProvideKafkaSalesHandler,
		ProvideForecaster,
		ProvideForecastEngine,
		ProvideBatchForecaster,
		ProvideThresholdCalculator,
		ProvideMarkdownPolicy,
		ProvideJobQueue,
		ProvideScheduler,

		// HTTP surface
		ProvideAPIHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
