package changefeed_test

import (
	"context"
	"time"

	"catfeeder-server/internal/feeder/changefeed"
	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/infra/async"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("BrokerLiveFeed", func() {
	var (
		ctx      context.Context
		broker   *async.LocalBroker
		feed     *changefeed.BrokerLiveFeed
		notifier *changefeed.Notifier
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		broker = async.NewLocalBroker()
		feed = changefeed.NewBrokerLiveFeed(broker)
		notifier = changefeed.NewNotifier(broker)
	})

	ginkgo.It("should deliver notified readings to every subscription", func() {
		first, err := feed.Subscribe(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		second, err := feed.Subscribe(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		reading := domain.SensorReading{ID: 1, CreatedAt: time.Now(), ServoStatus: domain.ServoStatusOpen}
		gomega.Expect(notifier.Notify(ctx, "test", reading)).To(gomega.Succeed())

		gomega.Eventually(first.Readings()).Should(gomega.Receive(gomega.Equal(reading)))
		gomega.Eventually(second.Readings()).Should(gomega.Receive(gomega.Equal(reading)))
	})

	ginkgo.It("should release the broker subscription on close", func() {
		subscription, err := feed.Subscribe(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(broker.SubscriberCount(changefeed.InsertTopic)).To(gomega.Equal(1))

		gomega.Expect(subscription.Close()).To(gomega.Succeed())
		gomega.Expect(subscription.Close()).To(gomega.Succeed())

		gomega.Expect(broker.SubscriberCount(changefeed.InsertTopic)).To(gomega.Equal(0))
		gomega.Eventually(subscription.Readings()).Should(gomega.BeClosed())
	})

	ginkgo.It("should close readings when the broker stops", func() {
		subscription, err := feed.Subscribe(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		broker.Stop()

		gomega.Eventually(subscription.Readings()).Should(gomega.BeClosed())
		gomega.Expect(subscription.Close()).To(gomega.Succeed())
	})

	ginkgo.It("should close readings of a subscription that stops draining", func() {
		subscription, err := feed.Subscribe(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		for i := 1; i <= 200; i++ {
			reading := domain.SensorReading{ID: domain.ReadingID(i), CreatedAt: time.Now(), ServoStatus: domain.ServoStatusClosed}
			gomega.Expect(notifier.Notify(ctx, "test", reading)).To(gomega.Succeed())
		}

		gomega.Expect(broker.SubscriberCount(changefeed.InsertTopic)).To(gomega.Equal(0))
		gomega.Eventually(func() bool {
			for {
				select {
				case _, ok := <-subscription.Readings():
					if !ok {
						return true
					}
				default:
					return false
				}
			}
		}).Should(gomega.BeTrue())
		gomega.Expect(subscription.Close()).To(gomega.Succeed())
	})

	ginkgo.It("should not notify anyone when nobody listens", func() {
		gomega.Expect(notifier.Notify(ctx, "test", domain.SensorReading{ID: 1})).To(gomega.Succeed())
	})

	ginkgo.It("should refuse to subscribe with a cancelled context", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := feed.Subscribe(cancelled)
		gomega.Expect(err).To(gomega.MatchError(context.Canceled))
	})
})
