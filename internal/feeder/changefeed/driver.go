package changefeed

import (
	"errors"
	"fmt"
	"time"

	"catfeeder-server/internal/infra/async"
	"catfeeder-server/internal/infra/mqtt"
	"catfeeder-server/internal/infra/pubsub"
	"catfeeder-server/internal/infra/sql"
)

const (
	DriverPostgres = "postgres"
	DriverMQTT     = "mqtt"
	DriverKafka    = "kafka"
	// DriverMemory has no external source; the simulator notifies in process.
	DriverMemory = "memory"
)

var ErrUnknownDriver = errors.New("unknown change feed driver")

type SourceOpts struct {
	Driver   string
	Location *time.Location
	Notifier *Notifier

	Database       sql.Database
	NotifyChannel  string
	InstallTrigger bool

	MQTTClient mqtt.Client
	MQTTTopic  string
	Codec      pubsub.Codec

	Consumer   pubsub.Consumer
	KafkaTopic pubsub.Topic
}

// NewSource returns the worker for the configured driver, or nil for the
// memory driver.
func NewSource(opts SourceOpts) (async.Worker, error) {
	switch opts.Driver {
	case DriverPostgres:
		if opts.Database == nil {
			return nil, fmt.Errorf("%s driver requires a database", opts.Driver)
		}
		return NewPostgresSource(PostgresSourceOpts{
			Database:       opts.Database,
			Channel:        opts.NotifyChannel,
			Location:       opts.Location,
			Notifier:       opts.Notifier,
			InstallTrigger: opts.InstallTrigger,
		}), nil
	case DriverMQTT:
		if opts.MQTTClient == nil {
			return nil, fmt.Errorf("%s driver requires an mqtt client", opts.Driver)
		}
		return NewMQTTSource(MQTTSourceOpts{
			Client:   opts.MQTTClient,
			Topic:    opts.MQTTTopic,
			Codec:    opts.Codec,
			Location: opts.Location,
			Notifier: opts.Notifier,
		}), nil
	case DriverKafka:
		if opts.Consumer == nil {
			return nil, fmt.Errorf("%s driver requires a consumer", opts.Driver)
		}
		return NewKafkaSource(KafkaSourceOpts{
			Consumer: opts.Consumer,
			Topic:    opts.KafkaTopic,
			Location: opts.Location,
			Notifier: opts.Notifier,
		}), nil
	case "", DriverMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
