package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lovoo/goka"
)

const (
	maxRetries int = 10
)

type publisherKey struct {
	brokers   string
	topic     string
	codecType string
}

type publisherInstance struct {
	publisher *SimpleKafkaPublisher
	once      sync.Once
	err       error
}

// emitters are shared per brokers, topic and codec
var (
	publishersMap   = make(map[publisherKey]*publisherInstance)
	publishersMutex sync.Mutex
)

func NewKafkaPublisher(brokers []string, topic Topic, codec Codec) (*SimpleKafkaPublisher, error) {
	key := publisherKey{
		brokers:   strings.Join(brokers, ","),
		topic:     string(topic),
		codecType: fmt.Sprintf("%T", codec),
	}

	publishersMutex.Lock()
	instance, exists := publishersMap[key]
	if !exists {
		instance = &publisherInstance{}
		publishersMap[key] = instance
	}
	publishersMutex.Unlock()

	instance.once.Do(func() {
		slog.Debug("creating kafka publisher",
			slog.String("topic", key.topic),
			slog.String("codec", key.codecType))

		for try := 0; try < maxRetries; try++ {
			slog.Debug("connecting to kafka brokers", slog.String("brokers", key.brokers))
			e, err := goka.NewEmitter(brokers, goka.Stream(topic), codec)
			if err != nil {
				slog.Warn("creating kafka emitter", slog.Int("try", try+1), slog.Any("error", err))
				time.Sleep(5 * time.Second)
				continue
			}

			instance.publisher = &SimpleKafkaPublisher{e}
			return
		}

		instance.err = fmt.Errorf("impossible to connect to kafka brokers after %d retries", maxRetries)
	})

	if instance.err != nil {
		return nil, instance.err
	}

	return instance.publisher, nil
}

var _ Publisher = (*SimpleKafkaPublisher)(nil)

type SimpleKafkaPublisher struct {
	emitter *goka.Emitter
}

func (p *SimpleKafkaPublisher) Publish(_ context.Context, key Key, message Message) error {
	slog.Debug("publishing message", slog.String("key", string(key)))
	err := p.emitter.EmitSync(string(key), message)
	if err != nil {
		slog.Error("emitting message", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (p *SimpleKafkaPublisher) Close() error {
	return p.emitter.Finish()
}

func NewKafkaConsumer(brokers []string, group string, codec Codec) *SimpleKafkaConsumer {
	return &SimpleKafkaConsumer{
		brokers: brokers,
		group:   goka.Group(group),
		codec:   codec,
	}
}

var _ Consumer = (*SimpleKafkaConsumer)(nil)

type SimpleKafkaConsumer struct {
	brokers []string
	group   goka.Group
	codec   Codec
}

// Consume runs a goka processor for topic until ctx is done. Handler errors are
// logged and the message is skipped.
func (c *SimpleKafkaConsumer) Consume(ctx context.Context, topic Topic, handler MessageHandler) error {
	cb := func(gctx goka.Context, msg any) {
		key := Key(gctx.Key())
		if err := handler(gctx.Context(), key, msg); err != nil {
			slog.Error("handling kafka message",
				slog.String("topic", string(topic)),
				slog.String("key", string(key)),
				slog.Any("error", err))
		}
	}

	gg := goka.DefineGroup(
		c.group,
		goka.Input(goka.Stream(topic), c.codec, cb),
	)
	p, err := goka.NewProcessor(c.brokers, gg)
	if err != nil {
		return fmt.Errorf("creating processor: %w", err)
	}

	slog.Info("consuming kafka topic", slog.String("topic", string(topic)), slog.String("group", string(c.group)))
	return p.Run(ctx)
}
