package simulation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"catfeeder-server/internal/feeder/changefeed"
	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/infra/mqtt"
	"catfeeder-server/internal/infra/pubsub"
)

// ReadingSink receives every simulated reading.
type ReadingSink interface {
	Emit(ctx context.Context, reading domain.SensorReading) (domain.SensorReading, error)
}

type ReadingInserter interface {
	Insert(ctx context.Context, reading domain.SensorReading) (domain.SensorReading, error)
}

func NewRepositorySink(inserter ReadingInserter, notifier *changefeed.Notifier) *RepositorySink {
	return &RepositorySink{inserter: inserter, notifier: notifier}
}

// RepositorySink stores the reading. When a notifier is set it also plays the
// role of the database trigger, which sqlite does not have.
type RepositorySink struct {
	inserter ReadingInserter
	notifier *changefeed.Notifier
}

func (s *RepositorySink) Emit(ctx context.Context, reading domain.SensorReading) (domain.SensorReading, error) {
	stored, err := s.inserter.Insert(ctx, reading)
	if err != nil {
		return reading, fmt.Errorf("inserting reading: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, "simulator", stored); err != nil {
			return stored, err
		}
	}
	return stored, nil
}

func NewMQTTSink(client mqtt.Client, topic string) *MQTTSink {
	if topic == "" {
		topic = changefeed.DefaultMQTTTopic
	}
	return &MQTTSink{client: client, topic: topic}
}

type MQTTSink struct {
	client mqtt.Client
	topic  string
}

func (s *MQTTSink) Emit(_ context.Context, reading domain.SensorReading) (domain.SensorReading, error) {
	if err := s.client.Publish(s.topic, changefeed.FromReading(reading)); err != nil {
		return reading, fmt.Errorf("publishing to %s: %w", s.topic, err)
	}
	return reading, nil
}

func NewPublisherSink(publisher pubsub.Publisher, avro bool) *PublisherSink {
	return &PublisherSink{publisher: publisher, avro: avro}
}

// PublisherSink writes rows to a kafka topic keyed by id.
type PublisherSink struct {
	publisher pubsub.Publisher
	avro      bool
}

func (s *PublisherSink) Emit(ctx context.Context, reading domain.SensorReading) (domain.SensorReading, error) {
	var message pubsub.Message = changefeed.FromReading(reading)
	if s.avro {
		message = changefeed.ToAvroSensorData(reading)
	}

	key := pubsub.Key(strconv.FormatInt(int64(reading.ID), 10))
	if err := s.publisher.Publish(ctx, key, message); err != nil {
		return reading, fmt.Errorf("publishing reading: %w", err)
	}
	return reading, nil
}

func NewSequenceSink(start domain.ReadingID) *SequenceSink {
	return &SequenceSink{next: start}
}

// SequenceSink numbers readings that have no database to assign ids.
type SequenceSink struct {
	mu   sync.Mutex
	next domain.ReadingID
}

func (s *SequenceSink) Emit(_ context.Context, reading domain.SensorReading) (domain.SensorReading, error) {
	if reading.ID != 0 {
		return reading, nil
	}

	s.mu.Lock()
	reading.ID = s.next
	s.next++
	s.mu.Unlock()
	return reading, nil
}

// MultiSink emits to every sink in order. The first sink decides the id seen
// by the following ones.
type MultiSink []ReadingSink

func (m MultiSink) Emit(ctx context.Context, reading domain.SensorReading) (domain.SensorReading, error) {
	var errs []error
	for _, sink := range m {
		emitted, err := sink.Emit(ctx, reading)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reading = emitted
	}
	return reading, errors.Join(errs...)
}
