package pubsub

import (
	"fmt"

	"github.com/hamba/avro/v2"
)

// AvroCodec encodes plain Avro binary with a schema known at build time.
type AvroCodec struct {
	prototype any
	schema    avro.Schema
}

var _ Codec = (*AvroCodec)(nil)

func NewAvroCodec(schema string, prototype any) (*AvroCodec, error) {
	parsed, err := avro.Parse(schema)
	if err != nil {
		return nil, fmt.Errorf("parsing avro schema: %w", err)
	}

	return &AvroCodec{
		prototype: prototype,
		schema:    parsed,
	}, nil
}

func (c *AvroCodec) Encode(value any) ([]byte, error) {
	data, err := avro.Marshal(c.schema, value)
	if err != nil {
		return nil, fmt.Errorf("marshaling to Avro: %w", err)
	}

	return data, nil
}

func (c *AvroCodec) Decode(data []byte) (any, error) {
	instance := newInstance(c.prototype)
	err := avro.Unmarshal(c.schema, data, instance)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling from Avro: %w", err)
	}

	return instance, nil
}
