package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"catfeeder-server/internal/infra/async"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultInterval = 2 * time.Second

	_metricKeySimulatedReadings = "simulator.readings"
)

func NewSimulatorWorker(ticker *time.Ticker, feeder *Feeder, sink ReadingSink) *SimulatorWorker {
	meter := otel.Meter("catfeeder_server")
	counter, _ := meter.Int64Counter(
		fmt.Sprintf("%s.%s", "catfeeder_server", _metricKeySimulatedReadings),
		metric.WithDescription("catfeeder_server simulated sensor readings"),
	)

	return &SimulatorWorker{
		ticker:  ticker,
		feeder:  feeder,
		sink:    sink,
		now:     time.Now,
		counter: counter,
		quit:    make(chan struct{}),
	}
}

var _ async.Worker = (*SimulatorWorker)(nil)

type SimulatorWorker struct {
	ticker  *time.Ticker
	feeder  *Feeder
	sink    ReadingSink
	now     func() time.Time
	counter metric.Int64Counter
	quit    chan struct{}
	once    sync.Once
}

func (w *SimulatorWorker) Run(ctx context.Context, done func()) {
	slog.Debug("simulator worker started")
	defer done()

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulator worker cancelled")
			return
		case <-w.quit:
			slog.Info("simulator worker stopped")
			return
		case <-w.ticker.C:
			w.emit(ctx)
		}
	}
}

func (w *SimulatorWorker) emit(ctx context.Context) {
	reading := w.feeder.Next(w.now())

	stored, err := w.sink.Emit(ctx, reading)
	if err != nil {
		slog.Error("emitting simulated reading", slog.Any("error", err))
		return
	}

	w.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("servo_status", stored.ServoStatus.String())))
	slog.Debug("simulated reading",
		slog.Int64("id", int64(stored.ID)),
		slog.String("servo_status", stored.ServoStatus.String()),
		slog.Float64("distance", stored.Distance))
}

func (w *SimulatorWorker) Shutdown() {
	w.once.Do(func() {
		w.ticker.Stop()
		close(w.quit)
	})
}
