package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	_defaultQoS      = 1 // At least once
	_defaultRetained = false
	_operationWait   = 5 * time.Second

	PayloadFormatJSON    = "json"
	PayloadFormatMsgpack = "msgpack"
)

//go:generate mockgen -source=client.go -destination=../../../test/unit/doubles/infra/mqtt/client_mock.go -package=mqtt -mock_names=Client=MockClient

type Client interface {
	Subscribe(topic string, qos byte, callback MessageHandler) error
	Unsubscribe(topic string) error
	Publish(topic string, msg any) error

	Disconnect()
}

type MessageHandler func(Client, Message)

type Message interface {
	Topic() string
	MessageID() uint16
	Payload() []byte
	Ack()
}

type SimpleClientOpts struct {
	Broker        string
	ClientID      string
	Username      string
	Password      string
	PayloadFormat string
}

// pahoClient is the part of paho.Client the wrapper relies on.
type pahoClient interface {
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

type subscription struct {
	topic    string
	qos      byte
	callback MessageHandler
}

func NewSimpleClient(opts SimpleClientOpts) (*SimpleClient, error) {
	marshal, err := payloadMarshaler(opts.PayloadFormat)
	if err != nil {
		return nil, err
	}

	simpleClient := &SimpleClient{
		subscriptions: make(map[string]subscription),
		marshal:       marshal,
	}

	onConnectHandler := func(client paho.Client) {
		slog.Info("connected to MQTT broker", slog.String("broker", opts.Broker))
		simpleClient.resubscribeAll(client)
	}

	onConnectionLostHandler := func(_ paho.Client, err error) {
		slog.Error("connection lost to MQTT broker", slog.Any("error", err))
	}

	pahoOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetOnConnectHandler(onConnectHandler).
		SetAutoReconnect(true).
		SetConnectionLostHandler(onConnectionLostHandler).
		SetKeepAlive(10 * time.Second).
		SetConnectTimeout(5 * time.Second)

	client := paho.NewClient(pahoOpts)
	token := client.Connect()
	if !token.WaitTimeout(_operationWait) {
		return nil, fmt.Errorf("connecting to %s: timeout", opts.Broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("connecting to %s: %w", opts.Broker, token.Error())
	}

	simpleClient.client = client
	return simpleClient, nil
}

func newSimpleClientWith(client pahoClient, format string) (*SimpleClient, error) {
	marshal, err := payloadMarshaler(format)
	if err != nil {
		return nil, err
	}

	return &SimpleClient{
		client:        client,
		subscriptions: make(map[string]subscription),
		marshal:       marshal,
	}, nil
}

var _ Client = (*SimpleClient)(nil)

type SimpleClient struct {
	client        pahoClient
	subscriptions map[string]subscription
	marshal       func(any) ([]byte, error)
	mu            sync.RWMutex
}

// resubscribeAll re-establishes all subscriptions after reconnection
func (c *SimpleClient) resubscribeAll(client pahoClient) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.subscriptions) == 0 {
		slog.Debug("no subscriptions to restore")
		return
	}

	slog.Info("restoring MQTT subscriptions after reconnection", slog.Int("count", len(c.subscriptions)))

	for topic, sub := range c.subscriptions {
		token := client.Subscribe(sub.topic, sub.qos, c.wrap(sub.callback))
		token.WaitTimeout(_operationWait)
		if token.Error() != nil {
			slog.Error("failed to restore subscription after reconnection",
				slog.String("topic", topic), slog.Any("error", token.Error()))
		} else {
			slog.Debug("subscription restored", slog.String("topic", topic))
		}
	}
}

func (c *SimpleClient) wrap(callback MessageHandler) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		callback(c, msg)
	}
}

func (c *SimpleClient) Subscribe(topic string, qos byte, callback MessageHandler) error {
	c.mu.Lock()
	c.subscriptions[topic] = subscription{
		topic:    topic,
		qos:      qos,
		callback: callback,
	}
	c.mu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrap(callback))
	token.WaitTimeout(_operationWait)
	if token.Error() != nil {
		c.mu.Lock()
		delete(c.subscriptions, topic)
		c.mu.Unlock()
		return fmt.Errorf("subscribing to topic %s: %w", topic, token.Error())
	}

	slog.Info("subscribed to MQTT topic", slog.String("topic", topic), slog.Int("qos", int(qos)))
	return nil
}

func (c *SimpleClient) Unsubscribe(topic string) error {
	c.mu.Lock()
	delete(c.subscriptions, topic)
	c.mu.Unlock()

	token := c.client.Unsubscribe(topic)
	token.WaitTimeout(_operationWait)
	if token.Error() != nil {
		return fmt.Errorf("unsubscribing from topic %s: %w", topic, token.Error())
	}

	return nil
}

func (c *SimpleClient) Disconnect() {
	c.mu.Lock()
	c.subscriptions = make(map[string]subscription)
	c.mu.Unlock()

	waitForInMilliseconds := 5 * 1000
	c.client.Disconnect(uint(waitForInMilliseconds))
}

// Publish sends raw byte slices untouched and marshals anything else with the
// configured payload format.
func (c *SimpleClient) Publish(topic string, msg any) error {
	payload, ok := msg.([]byte)
	if !ok {
		var err error
		payload, err = c.marshal(msg)
		if err != nil {
			return fmt.Errorf("marshaling message: %w", err)
		}
	}

	token := c.client.Publish(topic, _defaultQoS, _defaultRetained, payload)
	token.WaitTimeout(_operationWait)
	if token.Error() != nil {
		return fmt.Errorf("publishing to topic %s: %w", topic, token.Error())
	}

	return nil
}

func payloadMarshaler(format string) (func(any) ([]byte, error), error) {
	switch format {
	case "", PayloadFormatJSON:
		return json.Marshal, nil
	case PayloadFormatMsgpack:
		return msgpack.Marshal, nil
	default:
		return nil, fmt.Errorf("unknown payload format %q", format)
	}
}
