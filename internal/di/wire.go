//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	domrepo "CoinScope/internal/domain/repository"
	"CoinScope/internal/repository"
	"CoinScope/internal/services/forecast"
	"CoinScope/internal/usecase"
	"CoinScope/pkg/config"
	"CoinScope/pkg/server"
)

var storeSet = wire.NewSet(
	ProvideLogger,
	ProvideDatabaseClient,
	ProvideOHLCStore,
	wire.Bind(new(domrepo.OHLCStore), new(*repository.SQLOHLCStore)),
)

var analyticsSet = wire.NewSet(
	storeSet,
	ProvideMetrics,
	ProvideWindowResolver,
	ProvideModelProvider,
	ProvideForecastEngine,
	wire.Bind(new(usecase.Forecaster), new(*forecast.Engine)),
	ProvideCommentaryCache,
	ProvideCommentary,
	ProvideAnalyticsUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		analyticsSet,

		// HTTP surface
		ProvideRateLimiter,
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeAnalytics wires the use case alone, for one-shot CLI commands.
func InitializeAnalytics(cfg *config.Config) (*usecase.AnalyticsUseCase, func(), error) {
	wire.Build(analyticsSet)
	return nil, nil, nil
}

// InitializeStore wires the SQL store alone, for imports and schema management.
func InitializeStore(cfg *config.Config) (*repository.SQLOHLCStore, func(), error) {
	wire.Build(storeSet)
	return nil, nil, nil
}
