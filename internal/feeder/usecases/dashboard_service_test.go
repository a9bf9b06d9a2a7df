package usecases_test

import (
	"context"
	"errors"
	"time"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/usecases"
	mockusecases "catfeeder-server/test/unit/doubles/feeder/usecases"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("DashboardService", func() {
	var (
		ctrl           *gomock.Controller
		mockRepository *mockusecases.MockReadingRepository
		feed           *fakeFeed
		service        *usecases.SimpleDashboardService
		ctx            context.Context
		now            time.Time
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockRepository = mockusecases.NewMockReadingRepository(ctrl)
		feed = &fakeFeed{}
		ctx = context.Background()
		now = time.Date(2026, time.October, 15, 23, 30, 0, 0, time.UTC)
		service = usecases.NewDashboardService(mockRepository, feed, usecases.DashboardServiceOpts{
			Location:   wib,
			Now:        func() time.Time { return now },
			NewBackOff: fastBackOff,
		})
	})

	ginkgo.AfterEach(func() {
		service.Shutdown()
		ctrl.Finish()
	})

	ginkgo.Context("Today", func() {
		ginkgo.It("should use the dashboard time zone", func() {
			gomega.Expect(service.Today().String()).To(gomega.Equal("2026-10-16"))
		})
	})

	ginkgo.Context("ParseDay", func() {
		ginkgo.It("should default to today", func() {
			day, err := service.ParseDay("")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(day.Equal(service.Today())).To(gomega.BeTrue())
		})

		ginkgo.It("should reject malformed dates", func() {
			_, err := service.ParseDay("16/10/2026")
			gomega.Expect(err).To(gomega.MatchError(domain.ErrInvalidDay))
		})
	})

	ginkgo.Context("Load", func() {
		ginkgo.It("should query the whole day", func() {
			day := domain.NewDay(2026, time.October, 15, wib)
			readings := []domain.SensorReading{
				reading(1, day, time.Hour, domain.ServoStatusOpen),
				reading(2, day, 2*time.Hour, domain.ServoStatusClosed),
			}
			mockRepository.EXPECT().
				FindByCreatedAtRange(gomock.Any(), day.Start(), day.End()).
				Return(readings, nil)

			snapshot, err := service.Load(ctx, day)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(snapshot.Readings).To(gomega.HaveLen(2))
			gomega.Expect(snapshot.FeedCount).To(gomega.Equal(1))
			gomega.Expect(snapshot.Connected).To(gomega.BeTrue())
			gomega.Expect(snapshot.Subscribed).To(gomega.BeFalse())
		})

		ginkgo.It("should wrap repository errors", func() {
			cause := errors.New("database is down")
			mockRepository.EXPECT().FindByCreatedAtRange(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, cause)

			snapshot, err := service.Load(ctx, service.Today())

			gomega.Expect(err).To(gomega.MatchError(cause))
			gomega.Expect(snapshot.IsEmpty()).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("Open", func() {
		ginkgo.BeforeEach(func() {
			mockRepository.EXPECT().
				FindByCreatedAtRange(gomock.Any(), gomock.Any(), gomock.Any()).
				Return([]domain.SensorReading{}, nil).
				AnyTimes()
		})

		ginkgo.It("should track sessions until they close", func() {
			first, err := service.Open(ctx, service.Today())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			second, err := service.Open(ctx, service.Today())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(first.ID()).NotTo(gomega.Equal(second.ID()))
			gomega.Expect(service.Sessions()).To(gomega.HaveLen(2))
			gomega.Eventually(feed.OpenCount).Should(gomega.Equal(2))

			first.Close()

			gomega.Eventually(service.Sessions).Should(gomega.HaveLen(1))
			gomega.Expect(feed.OpenCount()).To(gomega.Equal(1))
		})

		ginkgo.It("should reject a zero day", func() {
			_, err := service.Open(ctx, domain.Day{})
			gomega.Expect(err).To(gomega.MatchError(domain.ErrInvalidDay))
		})

		ginkgo.It("should forget sessions when their context ends", func() {
			sessionCtx, cancel := context.WithCancel(ctx)
			_, err := service.Open(sessionCtx, service.Today())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			cancel()

			gomega.Eventually(service.Sessions).Should(gomega.BeEmpty())
			gomega.Eventually(feed.OpenCount).Should(gomega.Equal(0))
		})

		ginkgo.It("should roll over only sessions on the ended day", func() {
			today := service.Today()
			yesterday := domain.NewDay(2026, time.October, 15, wib)

			following, err := service.Open(ctx, yesterday)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			pinned, err := service.Open(ctx, domain.NewDay(2026, time.October, 1, wib))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			service.RollOver(ctx, yesterday, today)

			gomega.Eventually(func() string {
				snapshot, _ := following.Snapshot(ctx)
				return snapshot.SelectedDate.String()
			}).Should(gomega.Equal("2026-10-16"))
			snapshot, err := pinned.Snapshot(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(snapshot.SelectedDate.String()).To(gomega.Equal("2026-10-01"))
		})
	})
})

var _ = ginkgo.Describe("DayRolloverWorker", func() {
	var (
		ctrl       *gomock.Controller
		mockRoller *mockusecases.MockDayRoller
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockRoller = mockusecases.NewMockDayRoller(ctrl)
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.It("should reject an invalid schedule", func() {
		_, err := usecases.NewDayRolloverWorker(mockRoller, wib, "every midnight")
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should call the roller when the schedule fires", func() {
		fired := make(chan domain.Day, 4)
		mockRoller.EXPECT().
			RollOver(gomock.Any(), gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, _ domain.Day, to domain.Day) { fired <- to }).
			MinTimes(1)

		worker, err := usecases.NewDayRolloverWorker(mockRoller, wib, "* * * * * *")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		stopped := make(chan struct{})
		go worker.Run(context.Background(), func() { close(stopped) })

		var to domain.Day
		gomega.Eventually(fired, 3*time.Second).Should(gomega.Receive(&to))
		gomega.Expect(to.Location()).To(gomega.Equal(wib))

		worker.Shutdown()
		gomega.Eventually(stopped).Should(gomega.BeClosed())
	})
})
