package pubsub

import "fmt"

var _ PublisherFactory = (*KafkaPublisherFactory)(nil)

type KafkaPublisherFactoryOptions struct {
	Brokers []string
	Codec   Codec
}

func NewKafkaPublisherFactory(opts KafkaPublisherFactoryOptions) *KafkaPublisherFactory {
	return &KafkaPublisherFactory{
		brokers: opts.Brokers,
		codec:   opts.Codec,
	}
}

type KafkaPublisherFactory struct {
	brokers []string
	codec   Codec
}

func (f *KafkaPublisherFactory) New(topic Topic) (Publisher, error) {
	publisher, err := NewKafkaPublisher(f.brokers, topic, f.codec)
	if err != nil {
		return nil, fmt.Errorf("creating publisher: %w", err)
	}

	return publisher, nil
}

func NewKafkaConsumerFactory(brokers []string, group string, codec Codec) *KafkaConsumerFactory {
	return &KafkaConsumerFactory{
		brokers: brokers,
		group:   group,
		codec:   codec,
	}
}

var _ ConsumerFactory = (*KafkaConsumerFactory)(nil)

type KafkaConsumerFactory struct {
	brokers []string
	group   string
	codec   Codec
}

func (f *KafkaConsumerFactory) New() Consumer {
	return NewKafkaConsumer(f.brokers, f.group, f.codec)
}
