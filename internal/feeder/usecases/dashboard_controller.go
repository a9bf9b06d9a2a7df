package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/infra/async"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	_inboxSize = 16

	_metricKeyLiveReadings = "live_feed.readings"
)

type DashboardControllerOpts struct {
	Repository ReadingRepository
	Feed       LiveFeed
	Day        domain.Day
	// NewBackOff builds the retry policy used to reopen the live subscription.
	NewBackOff func() backoff.BackOff
}

func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func NewDashboardController(opts DashboardControllerOpts) *DashboardController {
	newBackOff := opts.NewBackOff
	if newBackOff == nil {
		newBackOff = DefaultBackOff
	}

	meter := otel.Meter("catfeeder_server")
	readingsCounter, _ := meter.Int64Counter(
		fmt.Sprintf("%s.%s", "catfeeder_server", _metricKeyLiveReadings),
		metric.WithDescription("catfeeder_server live readings received by dashboard sessions"),
	)

	return &DashboardController{
		id:              uuid.NewString(),
		repository:      opts.Repository,
		feed:            opts.Feed,
		state:           domain.NewDashboardState(opts.Day),
		loading:         opts.Day,
		retry:           newBackOff(),
		inbox:           make(chan any, _inboxSize),
		updates:         make(chan domain.DashboardSnapshot, 1),
		quit:            make(chan struct{}),
		stopped:         make(chan struct{}),
		readingsCounter: readingsCounter,
	}
}

var _ async.Worker = (*DashboardController)(nil)
var _ DashboardSession = (*DashboardController)(nil)

// DashboardController owns the state of one mounted dashboard. Every mutation
// happens on the Run goroutine; other goroutines talk to it through the inbox.
type DashboardController struct {
	id         string
	repository ReadingRepository
	feed       LiveFeed

	inbox   chan any
	updates chan domain.DashboardSnapshot
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once

	readingsCounter metric.Int64Counter

	// owned by the Run goroutine
	state        *domain.DashboardState
	loading      domain.Day // the state moves to this day with its fetch result
	subscription FeedSubscription
	epoch        uint64
	generation   uint64
	fetching     bool
	pending      []domain.SensorReading
	retry        backoff.BackOff
}

type selectDateMsg struct {
	day domain.Day
}

type rangeResultMsg struct {
	generation uint64
	readings   []domain.SensorReading
	err        error
}

type snapshotMsg struct {
	reply chan domain.DashboardSnapshot
}

type resubscribeMsg struct {
	epoch uint64
}

type rollOverMsg struct {
	from domain.Day
	to   domain.Day
}

func (c *DashboardController) ID() string {
	return c.id
}

func (c *DashboardController) Updates() <-chan domain.DashboardSnapshot {
	return c.updates
}

func (c *DashboardController) SelectDate(ctx context.Context, day domain.Day) error {
	if day.IsZero() {
		return domain.ErrInvalidDay
	}
	return c.post(ctx, selectDateMsg{day: day})
}

func (c *DashboardController) Snapshot(ctx context.Context) (domain.DashboardSnapshot, error) {
	reply := make(chan domain.DashboardSnapshot, 1)
	if err := c.post(ctx, snapshotMsg{reply: reply}); err != nil {
		return domain.DashboardSnapshot{}, err
	}

	select {
	case snapshot := <-reply:
		return snapshot, nil
	case <-c.stopped:
		return domain.DashboardSnapshot{}, ErrSessionClosed
	case <-ctx.Done():
		return domain.DashboardSnapshot{}, ctx.Err()
	}
}

// RollOver moves the session to the next day when it is showing the day that
// just ended.
func (c *DashboardController) RollOver(ctx context.Context, from, to domain.Day) {
	if err := c.post(ctx, rollOverMsg{from: from, to: to}); err != nil {
		slog.Debug("skipping rollover", slog.String("session_id", c.id), slog.Any("error", err))
	}
}

func (c *DashboardController) Shutdown() {
	c.once.Do(func() { close(c.quit) })
}

// Close stops the loop and waits until the live subscription is released.
// The controller must have been started with Run.
func (c *DashboardController) Close() {
	c.Shutdown()
	<-c.stopped
}

func (c *DashboardController) Run(ctx context.Context, done func()) {
	slog.Debug("dashboard controller started", slog.String("session_id", c.id))
	defer done()
	defer close(c.stopped)
	defer c.closeSubscription()

	c.changeDate(ctx, c.state.SelectedDate())

	for {
		select {
		case <-ctx.Done():
			slog.Debug("dashboard controller cancelled", slog.String("session_id", c.id))
			return
		case <-c.quit:
			slog.Debug("dashboard controller closed", slog.String("session_id", c.id))
			return
		case msg := <-c.inbox:
			c.handle(ctx, msg)
		case reading, ok := <-c.liveReadings():
			if !ok {
				c.onFeedClosed(ctx)
				continue
			}
			c.onInsert(ctx, reading)
		}
	}
}

func (c *DashboardController) post(ctx context.Context, msg any) error {
	select {
	case <-c.stopped:
		return ErrSessionClosed
	default:
	}

	select {
	case c.inbox <- msg:
		return nil
	case <-c.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *DashboardController) handle(ctx context.Context, msg any) {
	switch m := msg.(type) {
	case selectDateMsg:
		c.changeDate(ctx, m.day)
	case rangeResultMsg:
		c.onRangeResult(ctx, m)
	case snapshotMsg:
		m.reply <- c.snapshot()
	case resubscribeMsg:
		c.onResubscribe(ctx, m)
	case rollOverMsg:
		if m.from.Equal(m.to) || !c.loading.Equal(m.from) {
			return
		}
		slog.Info("following day rollover",
			slog.String("session_id", c.id),
			slog.String("from", m.from.String()),
			slog.String("to", m.to.String()))
		c.changeDate(ctx, m.to)
	default:
		slog.Warn("unknown dashboard message", slog.String("type", fmt.Sprintf("%T", msg)))
	}
}

// changeDate releases the current subscription before anything else so two
// subscriptions never coexist, then opens a new one and fetches the day. The
// state keeps showing the previous day until the fetch resolves.
func (c *DashboardController) changeDate(ctx context.Context, day domain.Day) {
	c.closeSubscription()
	c.loading = day
	c.epoch++
	c.retry.Reset()
	c.subscribe(ctx)
	c.fetchRange(ctx)
}

func (c *DashboardController) fetchRange(ctx context.Context) {
	c.generation++
	c.fetching = true
	c.pending = nil

	generation := c.generation
	day := c.loading
	go func() {
		readings, err := c.repository.FindByCreatedAtRange(ctx, day.Start(), day.End())
		if err := c.post(ctx, rangeResultMsg{generation: generation, readings: readings, err: err}); err != nil {
			slog.Debug("dropping range result", slog.String("session_id", c.id), slog.Any("error", err))
		}
	}()
}

// onRangeResult moves the state to the loaded day in one step. A failed fetch
// still switches the day, leaving it empty rather than showing the previous
// day's readings under the new date.
func (c *DashboardController) onRangeResult(ctx context.Context, msg rangeResultMsg) {
	if msg.generation != c.generation {
		slog.Debug("discarding stale range result", slog.String("session_id", c.id))
		return
	}

	c.fetching = false
	c.state.Select(c.loading)
	if msg.err != nil {
		slog.Error("fetching readings",
			slog.String("session_id", c.id),
			slog.String("date", c.loading.String()),
			slog.Any("error", msg.err))
	} else {
		c.state.Load(msg.readings)
	}

	for _, reading := range c.pending {
		c.apply(ctx, reading)
	}
	c.pending = nil
	c.publish()
}

func (c *DashboardController) onInsert(ctx context.Context, reading domain.SensorReading) {
	if c.fetching {
		c.pending = append(c.pending, reading)
		return
	}

	if c.apply(ctx, reading) {
		c.publish()
	}
}

func (c *DashboardController) apply(ctx context.Context, reading domain.SensorReading) bool {
	accepted := c.state.Append(reading)
	c.readingsCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("accepted", accepted)))
	return accepted
}

func (c *DashboardController) subscribe(ctx context.Context) bool {
	subscription, err := c.feed.Subscribe(ctx)
	if err != nil {
		slog.Warn("opening live subscription",
			slog.String("session_id", c.id),
			slog.Any("error", err))
		c.scheduleResubscribe(ctx)
		return false
	}

	c.subscription = subscription
	return true
}

func (c *DashboardController) scheduleResubscribe(ctx context.Context) {
	delay := c.retry.NextBackOff()
	if delay == backoff.Stop {
		slog.Error("giving up on live subscription", slog.String("session_id", c.id))
		return
	}

	epoch := c.epoch
	time.AfterFunc(delay, func() {
		_ = c.post(ctx, resubscribeMsg{epoch: epoch})
	})
}

// onResubscribe refetches the day after a successful retry to cover inserts
// missed while the subscription was down.
func (c *DashboardController) onResubscribe(ctx context.Context, msg resubscribeMsg) {
	if msg.epoch != c.epoch || c.subscription != nil {
		return
	}

	if !c.subscribe(ctx) {
		return
	}

	slog.Info("live subscription restored", slog.String("session_id", c.id))
	c.retry.Reset()
	c.fetchRange(ctx)
	c.publish()
}

func (c *DashboardController) onFeedClosed(ctx context.Context) {
	slog.Warn("live subscription dropped", slog.String("session_id", c.id))
	c.closeSubscription()
	c.scheduleResubscribe(ctx)
	c.publish()
}

func (c *DashboardController) closeSubscription() {
	if c.subscription == nil {
		return
	}

	if err := c.subscription.Close(); err != nil {
		slog.Warn("closing live subscription", slog.String("session_id", c.id), slog.Any("error", err))
	}
	c.subscription = nil
}

func (c *DashboardController) liveReadings() <-chan domain.SensorReading {
	if c.subscription == nil {
		return nil
	}
	return c.subscription.Readings()
}

func (c *DashboardController) snapshot() domain.DashboardSnapshot {
	return c.state.Snapshot(c.subscription != nil)
}

// publish keeps only the newest snapshot for slow consumers.
func (c *DashboardController) publish() {
	snapshot := c.snapshot()
	select {
	case <-c.updates:
	default:
	}
	c.updates <- snapshot
}
