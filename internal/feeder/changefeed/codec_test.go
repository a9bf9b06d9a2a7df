package changefeed_test

import (
	"time"

	"catfeeder-server/internal/feeder/changefeed"
	"catfeeder-server/internal/feeder/domain"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/riferrei/srclient"
)

var _ = ginkgo.Describe("NewCodec", func() {
	reading := domain.SensorReading{
		ID:          42,
		CreatedAt:   time.Date(2026, time.October, 16, 7, 30, 0, 0, time.UTC),
		Distance:    12.5,
		ServoStatus: domain.ServoStatusOpen,
	}

	ginkgo.DescribeTable("round trips a reading",
		func(name string, value func() any) {
			codec, err := changefeed.NewCodec(name, changefeed.DefaultKafkaTopic, srclient.CreateMockSchemaRegistryClient("mock://registry"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			data, err := codec.Encode(value())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			decoded, err := codec.Decode(data)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			result, err := changefeed.DecodeReading(decoded, time.UTC)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.ID).To(gomega.Equal(reading.ID))
			gomega.Expect(result.CreatedAt.Equal(reading.CreatedAt)).To(gomega.BeTrue())
			gomega.Expect(result.Distance).To(gomega.Equal(reading.Distance))
			gomega.Expect(result.ServoStatus).To(gomega.Equal(reading.ServoStatus))
		},
		ginkgo.Entry("json", changefeed.CodecJSON, func() any { return changefeed.FromReading(reading) }),
		ginkgo.Entry("msgpack", changefeed.CodecMsgpack, func() any { return changefeed.FromReading(reading) }),
		ginkgo.Entry("connect", changefeed.CodecConnect, func() any { return changefeed.FromReading(reading) }),
		ginkgo.Entry("avro", changefeed.CodecAvro, func() any { return changefeed.ToAvroSensorData(reading) }),
		ginkgo.Entry("confluent", changefeed.CodecConfluent, func() any { return changefeed.ToAvroSensorData(reading) }),
	)

	ginkgo.It("should reject unknown codecs", func() {
		_, err := changefeed.NewCodec("xml", changefeed.DefaultKafkaTopic, nil)
		gomega.Expect(err).To(gomega.MatchError(changefeed.ErrUnknownCodec))
	})

	ginkgo.It("should require a registry for confluent", func() {
		_, err := changefeed.NewCodec(changefeed.CodecConfluent, changefeed.DefaultKafkaTopic, nil)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
