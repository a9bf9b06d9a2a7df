package simulation_test

import (
	"context"
	"errors"
	"time"

	"catfeeder-server/internal/feeder/changefeed"
	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/persistence"
	"catfeeder-server/internal/feeder/simulation"
	"catfeeder-server/internal/infra/async"
	"catfeeder-server/internal/infra/pubsub"
	"catfeeder-server/internal/infra/sql"
	mockmqtt "catfeeder-server/test/unit/doubles/infra/mqtt"

	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type failingSink struct{}

func (failingSink) Emit(_ context.Context, reading domain.SensorReading) (domain.SensorReading, error) {
	return reading, errors.New("sink down")
}

var _ = ginkgo.Describe("Sinks", func() {
	var (
		ctx     context.Context
		reading domain.SensorReading
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		reading = domain.SensorReading{
			CreatedAt:   time.Date(2026, time.October, 16, 8, 0, 0, 0, time.UTC),
			Distance:    4,
			ServoStatus: domain.ServoStatusOpen,
		}
	})

	ginkgo.Context("RepositorySink", func() {
		ginkgo.It("should store and announce readings", func() {
			orm, err := sql.NewMemoryORM(uuid.NewString())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			repository, err := persistence.NewReadingRepository(orm)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			broker := async.NewLocalBroker()
			subscription, err := changefeed.NewBrokerLiveFeed(broker).Subscribe(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			defer subscription.Close()

			sink := simulation.NewRepositorySink(repository, changefeed.NewNotifier(broker))
			stored, err := sink.Emit(ctx, reading)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(stored.ID).NotTo(gomega.BeZero())

			var received domain.SensorReading
			gomega.Eventually(subscription.Readings()).Should(gomega.Receive(&received))
			gomega.Expect(received.ID).To(gomega.Equal(stored.ID))

			count, err := repository.Count(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(int64(1)))
		})
	})

	ginkgo.Context("MQTTSink", func() {
		ginkgo.It("should publish the row payload", func() {
			ctrl := gomock.NewController(ginkgo.GinkgoT())
			client := mockmqtt.NewMockClient(ctrl)
			client.EXPECT().Publish(changefeed.DefaultMQTTTopic, changefeed.FromReading(reading)).Return(nil)

			_, err := simulation.NewMQTTSink(client, "").Emit(ctx, reading)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})
	})

	ginkgo.Context("PublisherSink", func() {
		ginkgo.It("should publish keyed by id", func() {
			broker := pubsub.NewMemoryBroker()
			codec := pubsub.NewJSONCodec(changefeed.SensorDataPayload{})
			publisher, err := pubsub.NewMemoryPublisherFactory(broker, codec).New(changefeed.DefaultKafkaTopic)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			keys := make(chan pubsub.Key, 1)
			consumeCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				_ = pubsub.NewMemoryConsumerFactory(broker, codec).New().Consume(consumeCtx, changefeed.DefaultKafkaTopic,
					func(_ context.Context, key pubsub.Key, _ pubsub.Message) error {
						keys <- key
						return nil
					})
			}()
			gomega.Eventually(func() int { return broker.ConsumerCount(changefeed.DefaultKafkaTopic) }).Should(gomega.Equal(1))

			reading.ID = 15
			_, err = simulation.NewPublisherSink(publisher, false).Emit(ctx, reading)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Eventually(keys).Should(gomega.Receive(gomega.Equal(pubsub.Key("15"))))
		})
	})

	ginkgo.Context("SequenceSink", func() {
		ginkgo.It("should number readings without an id", func() {
			sink := simulation.NewSequenceSink(100)

			first, err := sink.Emit(ctx, reading)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			second, _ := sink.Emit(ctx, reading)

			gomega.Expect(first.ID).To(gomega.Equal(domain.ReadingID(100)))
			gomega.Expect(second.ID).To(gomega.Equal(domain.ReadingID(101)))
		})

		ginkgo.It("should keep an existing id", func() {
			withID := reading
			withID.ID = 7

			emitted, err := simulation.NewSequenceSink(100).Emit(ctx, withID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(emitted.ID).To(gomega.Equal(domain.ReadingID(7)))
		})
	})

	ginkgo.Context("MultiSink", func() {
		ginkgo.It("should keep going after a failure and report it", func() {
			ctrl := gomock.NewController(ginkgo.GinkgoT())
			client := mockmqtt.NewMockClient(ctrl)
			client.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

			sink := simulation.MultiSink{failingSink{}, simulation.NewMQTTSink(client, "")}
			_, err := sink.Emit(ctx, reading)
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("sink down")))
		})
	})
})
