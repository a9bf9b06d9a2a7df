package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"catfeeder-server/internal/feeder/domain"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	_metricKeyDashboardSessions = "dashboard.sessions"
)

type DashboardServiceOpts struct {
	Location   *time.Location
	Now        func() time.Time
	NewBackOff func() backoff.BackOff
}

func NewDashboardService(repository ReadingRepository, feed LiveFeed, opts DashboardServiceOpts) *SimpleDashboardService {
	location := opts.Location
	if location == nil {
		location = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	meter := otel.Meter("catfeeder_server")
	sessionsCounter, _ := meter.Int64UpDownCounter(
		fmt.Sprintf("%s.%s", "catfeeder_server", _metricKeyDashboardSessions),
		metric.WithDescription("catfeeder_server open dashboard sessions"),
	)

	return &SimpleDashboardService{
		repository:      repository,
		feed:            feed,
		location:        location,
		now:             now,
		newBackOff:      opts.NewBackOff,
		sessions:        make(map[string]*DashboardController),
		sessionsCounter: sessionsCounter,
	}
}

var _ DashboardService = (*SimpleDashboardService)(nil)
var _ DayRoller = (*SimpleDashboardService)(nil)

type SimpleDashboardService struct {
	repository ReadingRepository
	feed       LiveFeed
	location   *time.Location
	now        func() time.Time
	newBackOff func() backoff.BackOff

	mu              sync.Mutex
	sessions        map[string]*DashboardController
	sessionsCounter metric.Int64UpDownCounter
}

func (s *SimpleDashboardService) Today() domain.Day {
	return domain.Today(s.now, s.location)
}

// ParseDay treats an empty value as today.
func (s *SimpleDashboardService) ParseDay(value string) (domain.Day, error) {
	if strings.TrimSpace(value) == "" {
		return s.Today(), nil
	}
	return domain.ParseDay(value, s.location)
}

func (s *SimpleDashboardService) Load(ctx context.Context, day domain.Day) (domain.DashboardSnapshot, error) {
	state := domain.NewDashboardState(day)

	readings, err := s.repository.FindByCreatedAtRange(ctx, day.Start(), day.End())
	if err != nil {
		return state.Snapshot(false), fmt.Errorf("finding readings for %s: %w", day, err)
	}

	state.Load(readings)
	return state.Snapshot(false), nil
}

// Open starts a controller for day. The session lives until Close is called or
// ctx is cancelled.
func (s *SimpleDashboardService) Open(ctx context.Context, day domain.Day) (DashboardSession, error) {
	if day.IsZero() {
		return nil, domain.ErrInvalidDay
	}

	controller := NewDashboardController(DashboardControllerOpts{
		Repository: s.repository,
		Feed:       s.feed,
		Day:        day,
		NewBackOff: s.newBackOff,
	})

	s.mu.Lock()
	s.sessions[controller.ID()] = controller
	s.mu.Unlock()
	s.sessionsCounter.Add(ctx, 1)

	go controller.Run(ctx, func() { s.forget(controller.ID()) })

	slog.Debug("dashboard session opened",
		slog.String("session_id", controller.ID()),
		slog.String("date", day.String()))
	return controller, nil
}

func (s *SimpleDashboardService) RollOver(ctx context.Context, from, to domain.Day) {
	for _, session := range s.Sessions() {
		session.RollOver(ctx, from, to)
	}
}

func (s *SimpleDashboardService) Sessions() []*DashboardController {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]*DashboardController, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Shutdown closes every open session.
func (s *SimpleDashboardService) Shutdown() {
	for _, session := range s.Sessions() {
		session.Close()
	}
}

func (s *SimpleDashboardService) forget(id string) {
	s.mu.Lock()
	_, found := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if found {
		s.sessionsCounter.Add(context.Background(), -1)
		slog.Debug("dashboard session closed", slog.String("session_id", id))
	}
}
