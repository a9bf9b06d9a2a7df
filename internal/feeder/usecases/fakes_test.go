package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/usecases"
)

var errFeedUnavailable = errors.New("feed unavailable")

type fakeFeed struct {
	mu            sync.Mutex
	failures      int
	open          []*fakeSubscription
	subscribed    int
	maxConcurrent int
}

func (f *fakeFeed) Subscribe(_ context.Context) (usecases.FeedSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failures > 0 {
		f.failures--
		return nil, errFeedUnavailable
	}

	subscription := &fakeSubscription{feed: f, readings: make(chan domain.SensorReading, 16)}
	f.open = append(f.open, subscription)
	f.subscribed++
	if len(f.open) > f.maxConcurrent {
		f.maxConcurrent = len(f.open)
	}
	return subscription, nil
}

func (f *fakeFeed) failNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = n
}

func (f *fakeFeed) Publish(reading domain.SensorReading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, subscription := range f.open {
		subscription.readings <- reading
	}
}

// Drop closes every open subscription from the feed side.
func (f *fakeFeed) Drop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, subscription := range f.open {
		close(subscription.readings)
		subscription.dropped = true
	}
	f.open = nil
}

func (f *fakeFeed) OpenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.open)
}

func (f *fakeFeed) SubscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed
}

func (f *fakeFeed) MaxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxConcurrent
}

type fakeSubscription struct {
	feed     *fakeFeed
	readings chan domain.SensorReading
	dropped  bool
}

func (s *fakeSubscription) Readings() <-chan domain.SensorReading {
	return s.readings
}

func (s *fakeSubscription) Close() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()

	if s.dropped {
		return nil
	}
	for i, open := range s.feed.open {
		if open == s {
			s.feed.open = append(s.feed.open[:i], s.feed.open[i+1:]...)
			close(s.readings)
			s.dropped = true
			return nil
		}
	}
	return nil
}

// fakeRepository serves readings by day. A gate for a day holds the query until
// it is closed.
type fakeRepository struct {
	mu       sync.Mutex
	readings map[string][]domain.SensorReading
	gates    map[string]chan struct{}
	err      error
	calls    int
	location *time.Location
}

func newFakeRepository(location *time.Location) *fakeRepository {
	return &fakeRepository{
		readings: make(map[string][]domain.SensorReading),
		gates:    make(map[string]chan struct{}),
		location: location,
	}
}

func (r *fakeRepository) Put(readings ...domain.SensorReading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reading := range readings {
		key := domain.DayOf(reading.CreatedAt, r.location).String()
		r.readings[key] = append(r.readings[key], reading)
	}
}

func (r *fakeRepository) Hold(day domain.Day) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	gate := make(chan struct{})
	r.gates[day.String()] = gate
	return gate
}

func (r *fakeRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeRepository) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *fakeRepository) FindByCreatedAtRange(ctx context.Context, from, _ time.Time) ([]domain.SensorReading, error) {
	key := domain.DayOf(from, r.location).String()

	r.mu.Lock()
	r.calls++
	gate := r.gates[key]
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.SensorReading(nil), r.readings[key]...), nil
}
