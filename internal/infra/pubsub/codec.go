package pubsub

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Codec matches goka.Codec so the same value is handed to emitters and
// processors.
type Codec interface {
	Encode(value any) (data []byte, err error)
	Decode(data []byte) (value any, err error)
}

func NewJSONCodec(prototype any) *JSONCodec {
	return &JSONCodec{prototype}
}

var _ Codec = &JSONCodec{}

// JSONCodec decodes into a new pointer of the prototype type.
type JSONCodec struct {
	prototype any
}

func (c *JSONCodec) Encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshaling data: %w", err)
	}

	return data, nil
}

func (c *JSONCodec) Decode(data []byte) (any, error) {
	instance := newInstance(c.prototype)
	err := json.Unmarshal(data, instance)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling data: %w", err)
	}

	return instance, nil
}

func newInstance(prototype any) any {
	pt := reflect.TypeOf(prototype)
	if pt.Kind() == reflect.Ptr {
		pt = pt.Elem()
	}
	return reflect.New(pt).Interface()
}
