package simulation_test

import (
	"context"
	"sync"
	"time"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/simulation"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type recordingSink struct {
	mu       sync.Mutex
	readings []domain.SensorReading
}

func (s *recordingSink) Emit(_ context.Context, reading domain.SensorReading) (domain.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reading.ID = domain.ReadingID(len(s.readings) + 1)
	s.readings = append(s.readings, reading)
	return reading, nil
}

func (s *recordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings)
}

var _ = ginkgo.Describe("SimulatorWorker", func() {
	ginkgo.It("should emit a reading per tick until shut down", func() {
		sink := &recordingSink{}
		worker := simulation.NewSimulatorWorker(time.NewTicker(10*time.Millisecond), simulation.NewFeeder(simulation.FeederOpts{}), sink)

		finished := make(chan struct{})
		go worker.Run(context.Background(), func() { close(finished) })

		gomega.Eventually(sink.Count).Should(gomega.BeNumerically(">=", 3))

		worker.Shutdown()
		worker.Shutdown()
		gomega.Eventually(finished).Should(gomega.BeClosed())
	})

	ginkgo.It("should stop with the context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		worker := simulation.NewSimulatorWorker(time.NewTicker(time.Hour), simulation.NewFeeder(simulation.FeederOpts{}), &recordingSink{})

		finished := make(chan struct{})
		go worker.Run(ctx, func() { close(finished) })

		cancel()
		gomega.Eventually(finished).Should(gomega.BeClosed())
	})
})
