package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"catfeeder-server/internal/feeder/changefeed"
	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/persistence"
	"catfeeder-server/internal/feeder/simulation"
	"catfeeder-server/internal/infra/mqtt"
	"catfeeder-server/internal/infra/pubsub"
	"catfeeder-server/internal/infra/sql"

	"github.com/riferrei/srclient"
	"github.com/spf13/pflag"
)

const (
	sinkPostgres = "postgres"
	sinkMQTT     = "mqtt"
	sinkKafka    = "kafka"
)

var (
	sink           = pflag.String("sink", sinkMQTT, "where readings go: postgres, mqtt or kafka")
	interval       = pflag.Duration("interval", simulation.DefaultInterval, "time between readings")
	triggerCM      = pflag.Float64("trigger", simulation.DefaultTriggerDistance, "distance in cm that opens the servo")
	dsn            = pflag.String("dsn", "host=localhost user=postgres dbname=catfeeder port=5432 sslmode=disable", "postgres dsn")
	mqttBroker     = pflag.String("mqtt-broker", "tcp://localhost:1883", "mqtt broker url")
	mqttTopic      = pflag.String("mqtt-topic", changefeed.DefaultMQTTTopic, "mqtt topic")
	mqttFormat     = pflag.String("mqtt-format", mqtt.PayloadFormatJSON, "mqtt payload format: json or msgpack")
	watch          = pflag.Bool("watch", false, "also log what arrives on the mqtt topic")
	kafkaBrokers   = pflag.StringSlice("kafka-brokers", []string{"localhost:19092"}, "kafka brokers")
	kafkaTopic     = pflag.String("kafka-topic", string(changefeed.DefaultKafkaTopic), "kafka topic")
	kafkaCodec     = pflag.String("kafka-codec", changefeed.CodecJSON, "kafka codec: json, msgpack, connect, avro or confluent")
	schemaRegistry = pflag.String("schema-registry", "http://localhost:8081", "schema registry url for the confluent codec")
)

func main() {
	pflag.Parse()

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{AddSource: true, Level: slog.LevelDebug})),
	)
	slog.Info("feeder simulator starting", slog.String("sink", *sink), slog.Duration("interval", *interval))

	readingSink, closeSink, err := newSink()
	if err != nil {
		slog.Error("creating sink", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeSink()

	feeder := simulation.NewFeeder(simulation.FeederOpts{TriggerDistance: *triggerCM})
	worker := simulation.NewSimulatorWorker(time.NewTicker(*interval), feeder, readingSink)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go worker.Run(ctx, wg.Done)

	signalChannel := make(chan os.Signal, 2)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)

	<-signalChannel
	worker.Shutdown()
	cancel()
	wg.Wait()
	slog.Info("good bye!!!")
}

func newSink() (simulation.ReadingSink, func(), error) {
	switch *sink {
	case sinkPostgres:
		orm, err := sql.NewPosgreORM(*dsn)
		if err != nil {
			return nil, nil, err
		}
		repository, err := persistence.NewReadingRepository(orm)
		if err != nil {
			return nil, nil, err
		}
		return simulation.NewRepositorySink(repository, nil), func() {}, nil

	case sinkMQTT:
		client, err := mqtt.NewSimpleClient(mqtt.SimpleClientOpts{
			Broker:        *mqttBroker,
			ClientID:      fmt.Sprintf("catfeeder-demo-%d", os.Getpid()),
			PayloadFormat: *mqttFormat,
		})
		if err != nil {
			return nil, nil, err
		}
		if *watch {
			if err := client.Subscribe(*mqttTopic, 0, logMessage); err != nil {
				return nil, nil, err
			}
		}
		return simulation.MultiSink{
			simulation.NewSequenceSink(firstID()),
			simulation.NewMQTTSink(client, *mqttTopic),
		}, client.Disconnect, nil

	case sinkKafka:
		var registry pubsub.SchemaRegistry
		if *kafkaCodec == changefeed.CodecConfluent {
			registry = srclient.CreateSchemaRegistryClient(*schemaRegistry)
		}
		topic := pubsub.Topic(*kafkaTopic)
		codec, err := changefeed.NewCodec(*kafkaCodec, topic, registry)
		if err != nil {
			return nil, nil, err
		}
		publisher, err := pubsub.NewKafkaPublisher(*kafkaBrokers, topic, codec)
		if err != nil {
			return nil, nil, err
		}
		avro := *kafkaCodec == changefeed.CodecAvro || *kafkaCodec == changefeed.CodecConfluent
		return simulation.MultiSink{
				simulation.NewSequenceSink(firstID()),
				simulation.NewPublisherSink(publisher, avro),
			}, func() {
				if err := publisher.Close(); err != nil {
					slog.Warn("closing publisher", slog.Any("error", err))
				}
			}, nil

	default:
		return nil, nil, fmt.Errorf("unknown sink %q", *sink)
	}
}

// firstID keeps ids unique across demo restarts without a database.
func firstID() domain.ReadingID {
	return domain.ReadingID(time.Now().UnixMilli())
}

func logMessage(_ mqtt.Client, msg mqtt.Message) {
	slog.Info("message received",
		slog.String("topic", msg.Topic()),
		slog.Uint64("message_id", uint64(msg.MessageID())),
		slog.String("payload", string(msg.Payload())),
	)
}
