package wire

import (
	"context"
	"fmt"
	"time"

	"catfeeder-server/cmd/config"
	"catfeeder-server/internal/feeder/changefeed"
	"catfeeder-server/internal/feeder/httpapi"
	"catfeeder-server/internal/feeder/persistence"
	"catfeeder-server/internal/feeder/simulation"
	"catfeeder-server/internal/feeder/usecases"
	"catfeeder-server/internal/infra/async"
	"catfeeder-server/internal/infra/cache"
	"catfeeder-server/internal/infra/mqtt"
	"catfeeder-server/internal/infra/pubsub"
	"catfeeder-server/internal/infra/sql"
	"catfeeder-server/internal/infra/utils"

	"github.com/riferrei/srclient"
)

const (
	_memoryDatabaseName = "catfeeder"
	_cacheKeyPrefix     = "sensor_data:"
)

func provideAppConfig() config.AppConfig {
	return config.LoadConfig()
}

func provideLocation(config config.AppConfig) (*time.Location, error) {
	return utils.LoadTimezone(config.General.Timezone)
}

func provideDatabase(appConfig config.AppConfig) (sql.ORM, error) {
	switch appConfig.Database.Driver {
	case config.DatabaseDriverSQLite:
		return sql.NewMemoryORM(_memoryDatabaseName)
	case config.DatabaseDriverPostgres:
		return sql.NewPosgreORM(appConfig.Database.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", appConfig.Database.Driver)
	}
}

func provideCache(appConfig config.AppConfig) (cache.Cache, error) {
	switch appConfig.Cache.Driver {
	case config.CacheDriverNone:
		return nil, nil
	case config.CacheDriverRedis:
		redisConfig := cache.DefaultRedisConfig()
		redisConfig.Addr = appConfig.Redis.Addr
		redisConfig.Password = appConfig.Redis.Password //pragma: allowlist secret
		redisConfig.DB = appConfig.Redis.DB
		return cache.NewRedisCache(redisConfig)
	default:
		return cache.New(cache.DefaultConfig())
	}
}

// provideReadingRepository puts the past-day cache in front of the database
// unless caching is disabled.
func provideReadingRepository(appConfig config.AppConfig, repository *persistence.SimpleReadingRepository, store cache.Cache) (usecases.ReadingRepository, error) {
	if store == nil {
		return repository, nil
	}

	return persistence.NewCachedReadingRepository(repository, &persistence.CachedReadingRepositoryConfig{
		Cache:     store,
		KeyPrefix: _cacheKeyPrefix,
		TTL:       appConfig.Cache.PastDayTTL,
		Now:       time.Now,
	})
}

func provideDashboardServiceOpts(location *time.Location) usecases.DashboardServiceOpts {
	return usecases.DashboardServiceOpts{
		Location:   location,
		Now:        time.Now,
		NewBackOff: usecases.DefaultBackOff,
	}
}

func provideDashboardControllerOpts(config config.AppConfig) httpapi.DashboardControllerOpts {
	return httpapi.DashboardControllerOpts{
		LogSize: config.Dashboard.LogSize,
	}
}

func provideRolloverWorker(roller usecases.DayRoller, location *time.Location) (*usecases.DayRolloverWorker, error) {
	return usecases.NewDayRolloverWorker(roller, location, usecases.MidnightSchedule)
}

func provideMQTTClient(config config.AppConfig) (*mqtt.SimpleClient, error) {
	return mqtt.NewSimpleClient(mqtt.SimpleClientOpts{
		Broker:        config.MQTTClient.Broker,
		ClientID:      config.MQTTClient.ClientID,
		Username:      config.MQTTClient.Username,
		Password:      config.MQTTClient.Password, //pragma: allowlist secret
		PayloadFormat: config.MQTTClient.PayloadFormat,
	})
}

func provideSchemaRegistry(config config.AppConfig) pubsub.SchemaRegistry {
	if config.Kafka.Codec != changefeed.CodecConfluent {
		return nil
	}
	return srclient.CreateSchemaRegistryClient(config.Kafka.SchemaRegistry)
}

// provideChangeFeedSource only dials the backend the configured driver needs.
// A nil worker means readings are notified in process.
func provideChangeFeedSource(appConfig config.AppConfig, location *time.Location, notifier *changefeed.Notifier) (async.Worker, error) {
	opts := changefeed.SourceOpts{
		Driver:   appConfig.LiveFeed.Driver,
		Location: location,
		Notifier: notifier,
	}

	switch appConfig.LiveFeed.Driver {
	case changefeed.DriverPostgres:
		db := sql.NewPosgreDatabase(appConfig.Database.DSN)
		if err := db.Open(context.Background()); err != nil {
			return nil, err
		}
		opts.Database = db
		opts.NotifyChannel = appConfig.LiveFeed.Channel
		opts.InstallTrigger = appConfig.LiveFeed.InstallTrigger
	case changefeed.DriverMQTT:
		client, err := provideMQTTClient(appConfig)
		if err != nil {
			return nil, err
		}
		codec, err := changefeed.NewCodec(appConfig.MQTTClient.PayloadFormat, "", nil)
		if err != nil {
			return nil, err
		}
		opts.MQTTClient = client
		opts.MQTTTopic = appConfig.MQTTClient.Topic
		opts.Codec = codec
	case changefeed.DriverKafka:
		topic := pubsub.Topic(appConfig.Kafka.Topic)
		codec, err := changefeed.NewCodec(appConfig.Kafka.Codec, topic, provideSchemaRegistry(appConfig))
		if err != nil {
			return nil, err
		}
		opts.Consumer = pubsub.NewKafkaConsumer(appConfig.Kafka.Brokers, appConfig.Kafka.Group, codec)
		opts.KafkaTopic = topic
	}

	return changefeed.NewSource(opts)
}

func provideSimulatorTicker(config config.AppConfig) *time.Ticker {
	interval := config.Simulator.Interval
	if interval <= 0 {
		interval = simulation.DefaultInterval
	}
	return time.NewTicker(interval)
}

func provideFeederOpts() simulation.FeederOpts {
	return simulation.FeederOpts{
		TriggerDistance: simulation.DefaultTriggerDistance,
		Cooldown:        simulation.DefaultCooldown,
	}
}

// provideReadingSink notifies dashboards directly only when no external change
// feed will report the insert.
func provideReadingSink(appConfig config.AppConfig, repository *persistence.SimpleReadingRepository, notifier *changefeed.Notifier) simulation.ReadingSink {
	if appConfig.LiveFeed.Driver == changefeed.DriverMemory || appConfig.LiveFeed.Driver == "" {
		return simulation.NewRepositorySink(repository, notifier)
	}
	return simulation.NewRepositorySink(repository, nil)
}
