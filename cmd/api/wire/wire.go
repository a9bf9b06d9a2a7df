//go:build wireinject
// +build wireinject

package wire

import (
	"catfeeder-server/internal/feeder/changefeed"
	"catfeeder-server/internal/feeder/httpapi"
	"catfeeder-server/internal/feeder/persistence"
	"catfeeder-server/internal/feeder/simulation"
	"catfeeder-server/internal/feeder/usecases"
	"catfeeder-server/internal/infra/async"

	"github.com/google/wire"
)

var ReadingRepositorySet = wire.NewSet(
	provideAppConfig,
	provideDatabase,
	persistence.NewReadingRepository,
)

func InitializeDashboardService(broker async.InternalBroker) (*usecases.SimpleDashboardService, error) {
	wire.Build(
		ReadingRepositorySet,
		provideCache,
		provideReadingRepository,
		provideLocation,
		changefeed.NewBrokerLiveFeed,
		wire.Bind(new(usecases.LiveFeed), new(*changefeed.BrokerLiveFeed)),
		provideDashboardServiceOpts,
		usecases.NewDashboardService,
	)
	return nil, nil
}

func InitializeDashboardController(service usecases.DashboardService) (*httpapi.DashboardController, error) {
	wire.Build(
		provideAppConfig,
		provideDashboardControllerOpts,
		httpapi.NewDashboardController,
	)
	return nil, nil
}

func InitializeDashboardWebSocketController(service usecases.DashboardService) (*httpapi.DashboardWebSocketController, error) {
	wire.Build(
		provideAppConfig,
		provideDashboardControllerOpts,
		httpapi.NewDashboardWebSocketController,
	)
	return nil, nil
}

func InitializeDayRolloverWorker(roller usecases.DayRoller) (*usecases.DayRolloverWorker, error) {
	wire.Build(
		provideAppConfig,
		provideLocation,
		provideRolloverWorker,
	)
	return nil, nil
}

func InitializeChangeFeedSource(broker async.InternalBroker) (async.Worker, error) {
	wire.Build(
		provideAppConfig,
		provideLocation,
		changefeed.NewNotifier,
		provideChangeFeedSource,
	)
	return nil, nil
}

func InitializeSimulatorWorker(broker async.InternalBroker) (*simulation.SimulatorWorker, error) {
	wire.Build(
		ReadingRepositorySet,
		changefeed.NewNotifier,
		provideReadingSink,
		provideFeederOpts,
		simulation.NewFeeder,
		provideSimulatorTicker,
		simulation.NewSimulatorWorker,
	)
	return nil, nil
}
