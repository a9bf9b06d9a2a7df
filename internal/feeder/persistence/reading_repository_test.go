package persistence_test

import (
	"context"
	"time"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/persistence"
	"catfeeder-server/internal/infra/sql"

	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var wib = time.FixedZone("WIB", 7*60*60)

var _ = ginkgo.Describe("ReadingRepository", func() {
	var (
		repository *persistence.SimpleReadingRepository
		ctx        context.Context
		day        domain.Day
	)

	insert := func(createdAt time.Time, status domain.ServoStatus) domain.SensorReading {
		reading, err := repository.Insert(ctx, domain.SensorReading{
			CreatedAt:   createdAt,
			Distance:    10.5,
			ServoStatus: status,
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return reading
	}

	ginkgo.BeforeEach(func() {
		orm, err := sql.NewMemoryORM(uuid.NewString())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		repository, err = persistence.NewReadingRepository(orm)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		ctx = context.Background()
		day = domain.NewDay(2026, time.October, 15, wib)
	})

	ginkgo.It("should assign ids on insert", func() {
		first := insert(day.Start().Add(time.Hour), domain.ServoStatusClosed)
		second := insert(day.Start().Add(2*time.Hour), domain.ServoStatusOpen)

		gomega.Expect(first.ID).NotTo(gomega.BeZero())
		gomega.Expect(second.ID).To(gomega.BeNumerically(">", first.ID))

		count, err := repository.Count(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(count).To(gomega.Equal(int64(2)))
	})

	ginkgo.It("should return the day ordered by creation time with inclusive bounds", func() {
		insert(day.Start().Add(-time.Second), domain.ServoStatusOpen)
		late := insert(day.Start().Add(20*time.Hour), domain.ServoStatusCooldown)
		first := insert(day.Start(), domain.ServoStatusClosed)
		last := insert(day.Next().Start().Add(-time.Second), domain.ServoStatusOpen)
		insert(day.Next().Start(), domain.ServoStatusOpen)

		readings, err := repository.FindByCreatedAtRange(ctx, day.Start(), day.End())

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(readings).To(gomega.HaveLen(3))
		gomega.Expect(readings[0].ID).To(gomega.Equal(first.ID))
		gomega.Expect(readings[1].ID).To(gomega.Equal(late.ID))
		gomega.Expect(readings[2].ID).To(gomega.Equal(last.ID))
		gomega.Expect(readings[1].ServoStatus).To(gomega.Equal(domain.ServoStatusCooldown))
		gomega.Expect(readings[2].CreatedAt.Equal(day.Next().Start().Add(-time.Second))).To(gomega.BeTrue())
	})

	ginkgo.It("should return an empty slice for a day without rows", func() {
		readings, err := repository.FindByCreatedAtRange(ctx, day.Start(), day.End())

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(readings).To(gomega.BeEmpty())
	})
})
