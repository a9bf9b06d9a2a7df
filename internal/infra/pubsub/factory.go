package pubsub

// Factory picks the memory broker for local runs and kafka otherwise.
type Factory struct {
	publisherFactory PublisherFactory
	consumerFactory  ConsumerFactory
}

type FactoryOptions struct {
	Environment   string
	KafkaBrokers  []string
	ConsumerGroup string
	Codec         Codec
}

func NewFactory(opts FactoryOptions) *Factory {
	if opts.Environment == "local" {
		broker := GetMemoryBroker()
		return &Factory{
			publisherFactory: NewMemoryPublisherFactory(broker, opts.Codec),
			consumerFactory:  NewMemoryConsumerFactory(broker, opts.Codec),
		}
	}

	return &Factory{
		publisherFactory: NewKafkaPublisherFactory(KafkaPublisherFactoryOptions{
			Brokers: opts.KafkaBrokers,
			Codec:   opts.Codec,
		}),
		consumerFactory: NewKafkaConsumerFactory(opts.KafkaBrokers, opts.ConsumerGroup, opts.Codec),
	}
}

func (f *Factory) GetPublisherFactory() PublisherFactory {
	return f.publisherFactory
}

func (f *Factory) GetConsumerFactory() ConsumerFactory {
	return f.consumerFactory
}

func (f *Factory) NewPublisher(topic Topic) (Publisher, error) {
	return f.publisherFactory.New(topic)
}

func (f *Factory) NewConsumer() Consumer {
	return f.consumerFactory.New()
}
