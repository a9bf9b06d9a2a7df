package changefeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/infra/async"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	InsertTopic async.BrokerTopicName = "sensor_data.insert"
	InsertEvent string                = "insert"

	_metricKeyFeedReadings = "live_feed.source_readings"
)

// Notifier hands decoded inserts to the in-process broker. Every source ends
// here so dashboards see one stream regardless of where rows come from.
type Notifier struct {
	broker  async.InternalBroker
	counter metric.Int64Counter
}

func NewNotifier(broker async.InternalBroker) *Notifier {
	meter := otel.Meter("catfeeder_server")
	counter, _ := meter.Int64Counter(
		fmt.Sprintf("%s.%s", "catfeeder_server", _metricKeyFeedReadings),
		metric.WithDescription("catfeeder_server sensor_data inserts received from the change feed"),
	)

	return &Notifier{
		broker:  broker,
		counter: counter,
	}
}

func (n *Notifier) Notify(ctx context.Context, source string, reading domain.SensorReading) error {
	n.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))

	err := n.broker.Publish(ctx, InsertTopic, async.BrokerMessage{
		Event: InsertEvent,
		Value: reading,
	})
	if errors.Is(err, async.ErrTopicNotFound) {
		slog.Debug("no live subscribers", slog.Int64("reading_id", int64(reading.ID)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("publishing insert: %w", err)
	}

	return nil
}
