package domain_test

import (
	"time"

	"catfeeder-server/internal/feeder/domain"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DashboardState", func() {
	var (
		location *time.Location
		day      domain.Day
		state    *domain.DashboardState
	)

	at := func(hour, minute int) time.Time {
		return time.Date(2026, time.October, 16, hour, minute, 0, 0, location)
	}

	BeforeEach(func() {
		location = time.FixedZone("WIB", 7*60*60)
		day = domain.NewDay(2026, time.October, 16, location)
		state = domain.NewDashboardState(day)
	})

	When("nothing has been loaded", func() {
		It("should start disconnected and empty", func() {
			snapshot := state.Snapshot(false)

			Expect(snapshot.Connected).To(BeFalse())
			Expect(snapshot.IsEmpty()).To(BeTrue())
			Expect(snapshot.Latest).To(BeNil())
			Expect(snapshot.FeedCount).To(BeZero())
			Expect(snapshot.SelectedDate.String()).To(Equal("2026-10-16"))
		})
	})

	When("a range result with two feed events is loaded", func() {
		BeforeEach(func() {
			state.Load([]domain.SensorReading{
				{ID: 1, CreatedAt: at(8, 0), Distance: 12.5, ServoStatus: domain.ServoStatusOpen},
				{ID: 2, CreatedAt: at(8, 15), Distance: 30, ServoStatus: domain.ServoStatusClosed},
				{ID: 3, CreatedAt: at(14, 0), Distance: 9.1, ServoStatus: domain.ServoStatusOpen},
			})
		})

		It("should derive the feed count, histogram and latest reading", func() {
			snapshot := state.Snapshot(true)
			hourly := snapshot.Hourly()

			Expect(snapshot.FeedCount).To(Equal(2))
			Expect(snapshot.Connected).To(BeTrue())
			Expect(snapshot.Latest).NotTo(BeNil())
			Expect(snapshot.Latest.ID).To(Equal(domain.ReadingID(3)))
			Expect(hourly[8]).To(Equal(1))
			Expect(hourly[14]).To(Equal(1))
			Expect(hourly.Total()).To(Equal(2))
			for hour, count := range hourly {
				if hour != 8 && hour != 14 {
					Expect(count).To(BeZero(), "hour %d", hour)
				}
			}
		})

		It("should keep the feed count when a cooldown insert arrives", func() {
			appended := state.Append(domain.SensorReading{ID: 4, CreatedAt: at(14, 1), Distance: 8, ServoStatus: domain.ServoStatusCooldown})

			snapshot := state.Snapshot(true)
			Expect(appended).To(BeTrue())
			Expect(snapshot.FeedCount).To(Equal(2))
			Expect(snapshot.Latest.ID).To(Equal(domain.ReadingID(4)))
			Expect(snapshot.Connected).To(BeTrue())
		})

		It("should count an open insert once", func() {
			state.Append(domain.SensorReading{ID: 4, CreatedAt: at(15, 0), ServoStatus: domain.ServoStatusOpen})

			Expect(state.FeedCount()).To(Equal(3))
		})

		It("should drop a redelivered reading", func() {
			appended := state.Append(domain.SensorReading{ID: 3, CreatedAt: at(14, 0), ServoStatus: domain.ServoStatusOpen})

			Expect(appended).To(BeFalse())
			Expect(state.FeedCount()).To(Equal(2))
			Expect(state.Readings()).To(HaveLen(3))
		})

		It("should ignore inserts stamped on another day", func() {
			appended := state.Append(domain.SensorReading{ID: 9, CreatedAt: at(8, 0).Add(24 * time.Hour), ServoStatus: domain.ServoStatusOpen})

			Expect(appended).To(BeFalse())
			Expect(state.FeedCount()).To(Equal(2))
		})

		It("should discard the previous sequence when another day is selected", func() {
			state.Select(day.Next())

			snapshot := state.Snapshot(true)
			Expect(snapshot.SelectedDate.Equal(day.Next())).To(BeTrue())
			Expect(snapshot.IsEmpty()).To(BeTrue())
			Expect(snapshot.FeedCount).To(BeZero())
			Expect(snapshot.Latest).To(BeNil())
			Expect(snapshot.Hourly().Total()).To(BeZero())
			Expect(snapshot.Connected).To(BeTrue())
		})

		It("should keep the sequence when the same day is selected again", func() {
			state.Select(day)

			Expect(state.Readings()).To(HaveLen(3))
			Expect(state.FeedCount()).To(Equal(2))
		})

		It("should accept a reading id again after the day changes", func() {
			state.Select(day.Next())

			appended := state.Append(domain.SensorReading{ID: 1, CreatedAt: at(8, 0).Add(24 * time.Hour), ServoStatus: domain.ServoStatusOpen})

			Expect(appended).To(BeTrue())
			Expect(state.FeedCount()).To(Equal(1))
		})
	})

	When("an empty range result is loaded", func() {
		It("should stay disconnected", func() {
			state.Load([]domain.SensorReading{})

			Expect(state.Connected()).To(BeFalse())
			Expect(state.FeedCount()).To(BeZero())
		})
	})

	When("the first live insert arrives", func() {
		It("should become connected", func() {
			state.Append(domain.SensorReading{ID: 1, CreatedAt: at(0, 0), ServoStatus: domain.ServoStatusClosed})

			Expect(state.Connected()).To(BeTrue())
		})
	})

	Context("snapshots", func() {
		It("should not share the reading slice with the state", func() {
			state.Load([]domain.SensorReading{{ID: 1, CreatedAt: at(1, 0), ServoStatus: domain.ServoStatusOpen}})
			snapshot := state.Snapshot(false)

			state.Append(domain.SensorReading{ID: 2, CreatedAt: at(2, 0), ServoStatus: domain.ServoStatusOpen})

			Expect(snapshot.Readings).To(HaveLen(1))
			Expect(snapshot.FeedCount).To(Equal(1))
		})
	})
})

var _ = Describe("feed count invariant", func() {
	It("should equal the number of open readings for any mix of statuses", func() {
		location := time.UTC
		day := domain.NewDay(2026, time.January, 1, location)
		statuses := []domain.ServoStatus{
			domain.ServoStatusOpen,
			domain.ServoStatusClosed,
			domain.ServoStatusCooldown,
			domain.ServoStatus("JAMMED"),
		}

		for size := 0; size < 40; size++ {
			state := domain.NewDashboardState(day)
			readings := make([]domain.SensorReading, 0, size)
			open := 0
			for i := 0; i < size; i++ {
				status := statuses[(i*7+size)%len(statuses)]
				if status == domain.ServoStatusOpen {
					open++
				}
				readings = append(readings, domain.SensorReading{
					ID:          domain.ReadingID(i + 1),
					CreatedAt:   day.Start().Add(time.Duration(i*30) * time.Minute),
					ServoStatus: status,
				})
			}
			state.Load(readings[:size/2])
			for _, reading := range readings[size/2:] {
				state.Append(reading)
			}

			snapshot := state.Snapshot(false)
			Expect(snapshot.FeedCount).To(Equal(open))
			Expect(snapshot.Hourly().Total()).To(Equal(snapshot.FeedCount))
		}
	})
})
