package changefeed

import (
	"context"
	"log/slog"
	"time"

	"catfeeder-server/internal/infra/async"
	"catfeeder-server/internal/infra/pubsub"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultKafkaTopic pubsub.Topic = "sensor_data"

	_sourceKafka = "kafka"
)

type KafkaSourceOpts struct {
	Consumer   pubsub.Consumer
	Topic      pubsub.Topic
	Location   *time.Location
	Notifier   *Notifier
	NewBackOff func() backoff.BackOff
}

func NewKafkaSource(opts KafkaSourceOpts) *KafkaSource {
	topic := opts.Topic
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	newBackOff := opts.NewBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}

	return &KafkaSource{
		consumer:   opts.Consumer,
		topic:      topic,
		location:   opts.Location,
		notifier:   opts.Notifier,
		newBackOff: newBackOff,
	}
}

var _ async.Worker = (*KafkaSource)(nil)

// KafkaSource reads sensor_data rows from a CDC topic.
type KafkaSource struct {
	lifecycle
	consumer   pubsub.Consumer
	topic      pubsub.Topic
	location   *time.Location
	notifier   *Notifier
	newBackOff func() backoff.BackOff
}

func (s *KafkaSource) Run(ctx context.Context, done func()) {
	slog.Debug("kafka change feed started", slog.String("topic", string(s.topic)))
	defer done()

	ctx, cancel := s.start(ctx)
	defer cancel()

	runWithRetry(ctx, _sourceKafka, s.newBackOff(), func(ctx context.Context) error {
		return s.consumer.Consume(ctx, s.topic, s.handle)
	})
	slog.Info("kafka change feed stopped")
}

// handle skips bad records instead of failing so one malformed row does not
// stall the partition.
func (s *KafkaSource) handle(ctx context.Context, key pubsub.Key, message pubsub.Message) error {
	reading, err := DecodeReading(message, s.location)
	if err != nil {
		slog.Warn("discarding kafka record", slog.String("key", string(key)), slog.Any("error", err))
		return nil
	}

	return s.notifier.Notify(ctx, _sourceKafka, reading)
}
