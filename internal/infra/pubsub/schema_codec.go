package pubsub

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

const (
	connectTimestampName = "org.apache.kafka.connect.data.Timestamp"
)

// SchemaMessage is the Kafka Connect JSON converter envelope.
type SchemaMessage struct {
	Schema  map[string]any  `json:"schema"`
	Payload json.RawMessage `json:"payload"`
}

// SchemaCodec reads and writes messages produced by Kafka Connect with
// schemas.enable=true. Plain JSON without the envelope is accepted on decode.
type SchemaCodec struct {
	prototype any
	schema    map[string]any
}

var _ Codec = (*SchemaCodec)(nil)

func NewSchemaCodec(prototype any) *SchemaCodec {
	return &SchemaCodec{
		prototype: prototype,
		schema:    inferSchema(reflect.TypeOf(prototype)),
	}
}

func (c *SchemaCodec) Schema() map[string]any {
	return c.schema
}

func (c *SchemaCodec) Encode(value any) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	data, err := json.Marshal(SchemaMessage{Schema: c.schema, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshaling schema message: %w", err)
	}

	return data, nil
}

func (c *SchemaCodec) Decode(data []byte) (any, error) {
	payload := json.RawMessage(data)

	var schemaMessage SchemaMessage
	if err := json.Unmarshal(data, &schemaMessage); err == nil && schemaMessage.Schema != nil && len(schemaMessage.Payload) > 0 {
		payload = schemaMessage.Payload
	}

	instance := newInstance(c.prototype)
	if err := json.Unmarshal(payload, instance); err != nil {
		return nil, fmt.Errorf("unmarshaling payload: %w", err)
	}

	return instance, nil
}

var jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

func inferSchema(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	schema := map[string]any{
		"type":     "struct",
		"optional": false,
		"name":     t.Name(),
	}

	fields := []map[string]any{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			jsonTag := field.Tag.Get("json")
			if jsonTag == "" || jsonTag == "-" {
				continue
			}

			fieldName := strings.Split(jsonTag, ",")[0]
			if fieldName == "" {
				fieldName = field.Name
			}

			fieldDef := inferFieldSchema(field.Type)
			fieldDef["field"] = fieldName
			fieldDef["optional"] = strings.Contains(jsonTag, "omitempty") || field.Type.Kind() == reflect.Ptr
			fields = append(fields, fieldDef)
		}
	}

	schema["fields"] = fields
	return schema
}

func inferFieldSchema(t reflect.Type) map[string]any {
	if t == reflect.TypeOf(time.Time{}) {
		return map[string]any{"type": "int64", "name": connectTimestampName}
	}
	if t.Implements(jsonMarshalerType) {
		return map[string]any{"type": "string"}
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int8:
		return map[string]any{"type": "int8"}
	case reflect.Int16, reflect.Uint8:
		return map[string]any{"type": "int16"}
	case reflect.Int32, reflect.Uint16:
		return map[string]any{"type": "int32"}
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "int64"}
	case reflect.Float32:
		return map[string]any{"type": "float"}
	case reflect.Float64:
		return map[string]any{"type": "double"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "bytes"}
		}
		return map[string]any{"type": "array", "items": inferFieldSchema(t.Elem())}
	case reflect.Ptr:
		return inferFieldSchema(t.Elem())
	case reflect.Struct:
		return inferSchema(t)
	default:
		return map[string]any{"type": "string"}
	}
}
