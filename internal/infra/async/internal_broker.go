package async

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const _receiverBufferSize = 64

type BrokerTopicName string

type BrokerMessage struct {
	Event string
	Value any
	Span  trace.Span
	Error error
}

type InternalBroker interface {
	Subscribe(topic BrokerTopicName) (Subscription, error)
	Unsubscribe(topic BrokerTopicName, subscription Subscription) error
	Publish(ctx context.Context, topic BrokerTopicName, msg BrokerMessage) error
	Stop()
}

var _ InternalBroker = (*LocalBroker)(nil)

var ErrTopicNotFound = errors.New("topic not found")
var ErrSubscriptorNotFound = errors.New("subscriptor not found")

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{
		topics: make(map[BrokerTopicName][]*subscriptor),
	}
}

// LocalBroker fans messages out to in-process subscribers. Messages published on
// a topic reach every subscriber in publish order. A subscriber whose buffer is
// full is evicted and its receiver closed, so it never misses a message silently
// and the publisher never stalls.
type LocalBroker struct {
	mu     sync.Mutex
	topics map[BrokerTopicName][]*subscriptor
}

type subscriptor struct {
	once         sync.Once
	subscription Subscription
}

type Subscription struct {
	ID       string
	Receiver chan BrokerMessage
}

func (b *LocalBroker) Subscribe(topic BrokerTopicName) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscription := Subscription{
		ID:       uuid.NewString(),
		Receiver: make(chan BrokerMessage, _receiverBufferSize),
	}
	b.topics[topic] = append(b.topics[topic], &subscriptor{subscription: subscription})
	return subscription, nil
}

func (b *LocalBroker) Unsubscribe(topic BrokerTopicName, subscription Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscriptors, ok := b.topics[topic]
	if !ok {
		return ErrTopicNotFound
	}

	index := slices.IndexFunc(subscriptors, func(s *subscriptor) bool { return s.subscription.ID == subscription.ID })
	if index < 0 {
		return ErrSubscriptorNotFound
	}

	subscriptors[index].safeClose()
	b.topics[topic] = slices.Delete(subscriptors, index, index+1)

	return nil
}

// Publish returns ErrTopicNotFound only when nobody ever subscribed to the topic.
func (b *LocalBroker) Publish(ctx context.Context, topic BrokerTopicName, msg BrokerMessage) error {
	msg.Span = trace.SpanFromContext(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	subscriptors, ok := b.topics[topic]
	if !ok {
		return ErrTopicNotFound
	}

	kept := subscriptors[:0]
	for _, s := range subscriptors {
		select {
		case s.subscription.Receiver <- msg:
			kept = append(kept, s)
		default:
			slog.Warn("subscriber buffer full, evicting subscriber",
				slog.String("topic", string(topic)),
				slog.String("subscription_id", s.subscription.ID),
				slog.String("event", msg.Event))
			s.safeClose()
		}
	}
	clear(subscriptors[len(kept):])
	b.topics[topic] = kept

	return nil
}

func (b *LocalBroker) SubscriberCount(topic BrokerTopicName) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

func (b *LocalBroker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, subscriptors := range b.topics {
		for _, s := range subscriptors {
			s.safeClose()
		}
		b.topics[topic] = nil
	}
}

func (s *subscriptor) safeClose() {
	s.once.Do(func() {
		close(s.subscription.Receiver)
	})
}
