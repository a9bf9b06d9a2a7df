package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const (
	_memoryConsumerBuffer = 100
)

type MemoryPublisherFactory struct {
	broker *MemoryBroker
	codec  Codec
}

// NewMemoryPublisherFactory encodes with codec so consumers see the same bytes
// a kafka consumer would.
func NewMemoryPublisherFactory(broker *MemoryBroker, codec Codec) *MemoryPublisherFactory {
	return &MemoryPublisherFactory{
		broker: broker,
		codec:  codec,
	}
}

func (f *MemoryPublisherFactory) New(topic Topic) (Publisher, error) {
	return &MemoryPublisher{
		broker: f.broker,
		topic:  topic,
		codec:  f.codec,
	}, nil
}

type MemoryPublisher struct {
	broker *MemoryBroker
	topic  Topic
	codec  Codec
}

func (p *MemoryPublisher) Publish(_ context.Context, key Key, message Message) error {
	data, err := p.codec.Encode(message)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	return p.broker.Publish(p.topic, key, data)
}

type MemoryConsumerFactory struct {
	broker *MemoryBroker
	codec  Codec
}

func NewMemoryConsumerFactory(broker *MemoryBroker, codec Codec) *MemoryConsumerFactory {
	return &MemoryConsumerFactory{
		broker: broker,
		codec:  codec,
	}
}

func (f *MemoryConsumerFactory) New() Consumer {
	return &MemoryConsumer{
		broker: f.broker,
		codec:  f.codec,
	}
}

type MemoryConsumer struct {
	broker *MemoryBroker
	codec  Codec
}

func (c *MemoryConsumer) Consume(ctx context.Context, topic Topic, handler MessageHandler) error {
	records := c.broker.subscribe(topic)
	defer c.broker.unsubscribe(topic, records)

	for {
		select {
		case <-ctx.Done():
			return nil
		case record := <-records:
			value, err := c.codec.Decode(record.value)
			if err != nil {
				slog.Error("decoding memory message", slog.String("topic", string(topic)), slog.Any("error", err))
				continue
			}
			if err := handler(ctx, record.key, value); err != nil {
				slog.Error("handling memory message",
					slog.String("topic", string(topic)),
					slog.String("key", string(record.key)),
					slog.Any("error", err))
			}
		}
	}
}

type memoryRecord struct {
	key   Key
	value []byte
}

// MemoryBroker fans every record out to every consumer of the topic. Records
// published while nobody consumes are discarded.
type MemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[Topic][]chan memoryRecord
}

var (
	memoryBroker     *MemoryBroker
	memoryBrokerOnce sync.Once
)

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subscribers: make(map[Topic][]chan memoryRecord),
	}
}

func GetMemoryBroker() *MemoryBroker {
	memoryBrokerOnce.Do(func() {
		memoryBroker = NewMemoryBroker()
	})
	return memoryBroker
}

func (b *MemoryBroker) Publish(topic Topic, key Key, value []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, records := range b.subscribers[topic] {
		select {
		case records <- memoryRecord{key: key, value: value}:
		default:
			return fmt.Errorf("topic %s consumer buffer full", topic)
		}
	}

	return nil
}

func (b *MemoryBroker) ConsumerCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

func (b *MemoryBroker) subscribe(topic Topic) chan memoryRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	records := make(chan memoryRecord, _memoryConsumerBuffer)
	b.subscribers[topic] = append(b.subscribers[topic], records)
	return records
}

func (b *MemoryBroker) unsubscribe(topic Topic, records chan memoryRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers := b.subscribers[topic]
	for i, candidate := range subscribers {
		if candidate == records {
			b.subscribers[topic] = append(subscribers[:i], subscribers[i+1:]...)
			return
		}
	}
}
