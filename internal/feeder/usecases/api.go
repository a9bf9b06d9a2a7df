package usecases

import (
	"context"
	"errors"

	"catfeeder-server/internal/feeder/domain"
)

//go:generate mockgen -source=api.go -destination=../../../test/unit/doubles/feeder/usecases/api_mock.go -package=usecases -mock_names=DashboardService=MockDashboardService,DashboardSession=MockDashboardSession,DayRoller=MockDayRoller

var (
	ErrSessionClosed = errors.New("dashboard session closed")
)

type DashboardService interface {
	Today() domain.Day
	ParseDay(value string) (domain.Day, error)
	Load(ctx context.Context, day domain.Day) (domain.DashboardSnapshot, error)
	Open(ctx context.Context, day domain.Day) (DashboardSession, error)
}

// DashboardSession is one mounted dashboard: one controller loop and at most one
// live subscription.
type DashboardSession interface {
	ID() string
	SelectDate(ctx context.Context, day domain.Day) error
	Snapshot(ctx context.Context) (domain.DashboardSnapshot, error)
	Updates() <-chan domain.DashboardSnapshot
	Close()
}

type DayRoller interface {
	RollOver(ctx context.Context, from, to domain.Day)
}
