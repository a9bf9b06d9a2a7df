package changefeed

import (
	"errors"
	"fmt"
	"time"

	"catfeeder-server/internal/infra/pubsub"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	CodecJSON      = "json"
	CodecMsgpack   = "msgpack"
	CodecConnect   = "connect"
	CodecAvro      = "avro"
	CodecConfluent = "confluent"

	_schemaSubjectSuffix = "-value"
)

var ErrUnknownCodec = errors.New("unknown change feed codec")

// NewCodec builds the codec used on kafka topics and MQTT payloads. The
// registry is only needed for the confluent codec.
func NewCodec(name string, topic pubsub.Topic, registry pubsub.SchemaRegistry) (pubsub.Codec, error) {
	switch name {
	case "", CodecJSON:
		return pubsub.NewJSONCodec(SensorDataPayload{}), nil
	case CodecMsgpack:
		return &MsgpackCodec{}, nil
	case CodecConnect:
		return pubsub.NewSchemaCodec(SensorDataPayload{}), nil
	case CodecAvro:
		codec, err := pubsub.NewAvroCodec(SensorDataAvroSchema, AvroSensorData{})
		if err != nil {
			return nil, err
		}
		return codec, nil
	case CodecConfluent:
		if registry == nil {
			return nil, fmt.Errorf("confluent codec requires a schema registry")
		}
		codec, err := pubsub.NewConfluentAvroCodec(pubsub.ConfluentAvroCodecOpts{
			Subject:        string(topic) + _schemaSubjectSuffix,
			Schema:         SensorDataAvroSchema,
			SchemaRegistry: registry,
			Converter:      avroNativeConverter{},
		})
		if err != nil {
			return nil, err
		}
		return codec, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

var _ pubsub.Codec = (*MsgpackCodec)(nil)

type MsgpackCodec struct{}

func (c *MsgpackCodec) Encode(value any) ([]byte, error) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshaling msgpack: %w", err)
	}
	return data, nil
}

func (c *MsgpackCodec) Decode(data []byte) (any, error) {
	var payload SensorDataPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshaling msgpack: %w", err)
	}
	return &payload, nil
}

var _ pubsub.NativeConverter = avroNativeConverter{}

type avroNativeConverter struct{}

func (avroNativeConverter) ToNative(value any) (map[string]any, error) {
	var data AvroSensorData
	switch v := value.(type) {
	case AvroSensorData:
		data = v
	case *AvroSensorData:
		data = *v
	case SensorDataPayload:
		data = AvroSensorData{ID: v.ID, CreatedAt: v.CreatedAt.Time, Distance: v.Distance, ServoStatus: v.ServoStatus}
	default:
		return nil, fmt.Errorf("%w: cannot encode %T", ErrInvalidPayload, value)
	}

	return map[string]any{
		"id":           data.ID,
		"created_at":   data.CreatedAt,
		"distance":     data.Distance,
		"servo_status": data.ServoStatus,
	}, nil
}

func (avroNativeConverter) FromNative(native map[string]any) (any, error) {
	id, ok := native["id"].(int64)
	if !ok {
		return nil, fmt.Errorf("%w: id", ErrInvalidPayload)
	}
	createdAt, ok := native["created_at"].(time.Time)
	if !ok {
		return nil, fmt.Errorf("%w: created_at", ErrInvalidPayload)
	}
	distance, _ := native["distance"].(float64)
	servoStatus, _ := native["servo_status"].(string)

	return &AvroSensorData{
		ID:          id,
		CreatedAt:   createdAt,
		Distance:    distance,
		ServoStatus: servoStatus,
	}, nil
}
