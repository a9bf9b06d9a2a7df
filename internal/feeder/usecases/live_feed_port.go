package usecases

import (
	"context"

	"catfeeder-server/internal/feeder/domain"
)

//go:generate mockgen -source=live_feed_port.go -destination=../../../test/unit/doubles/feeder/usecases/live_feed_port_mock.go -package=usecases -mock_names=LiveFeed=MockLiveFeed,FeedSubscription=MockFeedSubscription

// LiveFeed opens subscriptions to rows inserted into sensor_data.
type LiveFeed interface {
	Subscribe(ctx context.Context) (FeedSubscription, error)
}

// FeedSubscription is owned by whoever opened it and must be closed by them.
// Readings is closed when the feed drops the subscription or after Close.
type FeedSubscription interface {
	Readings() <-chan domain.SensorReading
	Close() error
}
