package changefeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/usecases"
	"catfeeder-server/internal/infra/async"
)

const _readingsBufferSize = 64

func NewBrokerLiveFeed(broker async.InternalBroker) *BrokerLiveFeed {
	return &BrokerLiveFeed{broker: broker}
}

var _ usecases.LiveFeed = (*BrokerLiveFeed)(nil)

// BrokerLiveFeed opens one broker subscription per dashboard subscription.
type BrokerLiveFeed struct {
	broker async.InternalBroker
}

func (f *BrokerLiveFeed) Subscribe(ctx context.Context) (usecases.FeedSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subscription, err := f.broker.Subscribe(InsertTopic)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", InsertTopic, err)
	}

	s := &brokerSubscription{
		broker:       f.broker,
		subscription: subscription,
		readings:     make(chan domain.SensorReading, _readingsBufferSize),
		closed:       make(chan struct{}),
	}
	go s.forward()
	return s, nil
}

type brokerSubscription struct {
	broker       async.InternalBroker
	subscription async.Subscription
	readings     chan domain.SensorReading
	closed       chan struct{}
	once         sync.Once
}

func (s *brokerSubscription) Readings() <-chan domain.SensorReading {
	return s.readings
}

func (s *brokerSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		err = s.broker.Unsubscribe(InsertTopic, s.subscription)
		if errors.Is(err, async.ErrSubscriptorNotFound) || errors.Is(err, async.ErrTopicNotFound) {
			err = nil
		}
	})
	return err
}

func (s *brokerSubscription) forward() {
	defer close(s.readings)

	for {
		select {
		case <-s.closed:
			return
		case msg, ok := <-s.subscription.Receiver:
			if !ok {
				return
			}

			reading, ok := msg.Value.(domain.SensorReading)
			if !ok {
				slog.Warn("unexpected live feed message", slog.String("event", msg.Event))
				continue
			}

			select {
			case s.readings <- reading:
			case <-s.closed:
				return
			}
		}
	}
}
