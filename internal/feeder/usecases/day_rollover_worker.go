package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/infra/async"

	"github.com/robfig/cron/v3"
)

const (
	MidnightSchedule = "0 0 * * *"
)

func NewDayRolloverWorker(roller DayRoller, location *time.Location, schedule string) (*DayRolloverWorker, error) {
	if location == nil {
		location = time.Local
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	parsed, err := parser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("parsing rollover schedule: %w", err)
	}
	if specSchedule, ok := parsed.(*cron.SpecSchedule); ok {
		specSchedule.Location = location
	}

	return &DayRolloverWorker{
		roller:   roller,
		schedule: parsed,
		location: location,
		now:      time.Now,
		quit:     make(chan struct{}),
	}, nil
}

var _ async.Worker = (*DayRolloverWorker)(nil)

// DayRolloverWorker moves sessions that follow the current day over to the new
// day when the schedule fires.
type DayRolloverWorker struct {
	roller   DayRoller
	schedule cron.Schedule
	location *time.Location
	now      func() time.Time
	quit     chan struct{}
	once     sync.Once
}

func (w *DayRolloverWorker) Run(ctx context.Context, done func()) {
	slog.Debug("day rollover worker started")
	defer done()

	for {
		now := w.now().In(w.location)
		next := w.schedule.Next(now)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("day rollover worker cancelled")
			return
		case <-w.quit:
			timer.Stop()
			slog.Info("day rollover worker stopped")
			return
		case <-timer.C:
			from := domain.DayOf(next.Add(-time.Nanosecond), w.location)
			to := domain.DayOf(next, w.location)
			slog.Debug("day rollover", slog.String("from", from.String()), slog.String("to", to.String()))
			w.roller.RollOver(ctx, from, to)
		}
	}
}

func (w *DayRolloverWorker) Shutdown() {
	w.once.Do(func() { close(w.quit) })
}
