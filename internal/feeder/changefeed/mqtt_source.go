package changefeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"catfeeder-server/internal/infra/async"
	"catfeeder-server/internal/infra/mqtt"
	"catfeeder-server/internal/infra/pubsub"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMQTTTopic = "catfeeder/sensor_data/insert"

	_sourceMQTT = "mqtt"
	_mqttQoS    = 1
)

type MQTTSourceOpts struct {
	Client     mqtt.Client
	Topic      string
	Codec      pubsub.Codec
	Location   *time.Location
	Notifier   *Notifier
	NewBackOff func() backoff.BackOff
}

func NewMQTTSource(opts MQTTSourceOpts) *MQTTSource {
	topic := opts.Topic
	if topic == "" {
		topic = DefaultMQTTTopic
	}
	codec := opts.Codec
	if codec == nil {
		codec = pubsub.NewJSONCodec(SensorDataPayload{})
	}
	newBackOff := opts.NewBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}

	return &MQTTSource{
		client:     opts.Client,
		topic:      topic,
		codec:      codec,
		location:   opts.Location,
		notifier:   opts.Notifier,
		newBackOff: newBackOff,
	}
}

var _ async.Worker = (*MQTTSource)(nil)

// MQTTSource consumes rows that the feeder or a database bridge publishes on
// an MQTT topic.
type MQTTSource struct {
	lifecycle
	client     mqtt.Client
	topic      string
	codec      pubsub.Codec
	location   *time.Location
	notifier   *Notifier
	newBackOff func() backoff.BackOff
}

func (s *MQTTSource) Run(ctx context.Context, done func()) {
	slog.Debug("mqtt change feed started", slog.String("topic", s.topic))
	defer done()

	ctx, cancel := s.start(ctx)
	defer cancel()

	runWithRetry(ctx, _sourceMQTT, s.newBackOff(), func(ctx context.Context) error {
		err := s.client.Subscribe(s.topic, _mqttQoS, func(_ mqtt.Client, msg mqtt.Message) {
			s.handle(ctx, msg)
		})
		if err != nil {
			return fmt.Errorf("subscribing: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	if err := s.client.Unsubscribe(s.topic); err != nil {
		slog.Warn("unsubscribing mqtt change feed", slog.Any("error", err))
	}
	slog.Info("mqtt change feed stopped")
}

func (s *MQTTSource) handle(ctx context.Context, msg mqtt.Message) {
	value, err := s.codec.Decode(msg.Payload())
	if err != nil {
		slog.Warn("discarding mqtt message", slog.String("topic", msg.Topic()), slog.Any("error", err))
		return
	}

	reading, err := DecodeReading(value, s.location)
	if err != nil {
		slog.Warn("discarding mqtt message", slog.String("topic", msg.Topic()), slog.Any("error", err))
		return
	}

	if err := s.notifier.Notify(ctx, _sourceMQTT, reading); err != nil {
		slog.Error("forwarding mqtt message", slog.Any("error", err))
	}
}
