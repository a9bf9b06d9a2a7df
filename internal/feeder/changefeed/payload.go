package changefeed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"catfeeder-server/internal/feeder/domain"

	"github.com/vmihailenco/msgpack/v5"
)

var ErrInvalidPayload = errors.New("invalid sensor_data payload")

// layouts produced by row_to_json for timestamptz and timestamp columns
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp accepts RFC 3339 strings, zone-less timestamps and epoch
// milliseconds. A zone-less value is read in the dashboard location.
type Timestamp struct {
	time.Time
	naive bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func ParseTimestamp(value string) (Timestamp, error) {
	for i, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			naive := i == 1 || i == len(timestampLayouts)-1
			return Timestamp{Time: parsed, naive: naive}, nil
		}
	}

	if millis, err := strconv.ParseInt(value, 10, 64); err == nil {
		return Timestamp{Time: time.UnixMilli(millis).UTC()}, nil
	}

	return Timestamp{}, fmt.Errorf("%w: created_at %q", ErrInvalidPayload, value)
}

// Resolve reads zone-less values in location.
func (t Timestamp) Resolve(location *time.Location) time.Time {
	if !t.naive || location == nil {
		return t.Time
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), location)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: created_at is null", ErrInvalidPayload)
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		var millis int64
		if err := json.Unmarshal(data, &millis); err != nil {
			return fmt.Errorf("%w: created_at %s", ErrInvalidPayload, data)
		}
		*t = Timestamp{Time: time.UnixMilli(millis).UTC()}
		return nil
	}

	parsed, err := ParseTimestamp(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

var _ msgpack.CustomEncoder = Timestamp{}
var _ msgpack.CustomDecoder = (*Timestamp)(nil)

func (t Timestamp) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeTime(t.Time)
}

func (t *Timestamp) DecodeMsgpack(dec *msgpack.Decoder) error {
	value, err := dec.DecodeInterface()
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case time.Time:
		*t = Timestamp{Time: v}
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return err
		}
		*t = parsed
	case int64:
		*t = Timestamp{Time: time.UnixMilli(v).UTC()}
	case uint64:
		*t = Timestamp{Time: time.UnixMilli(int64(v)).UTC()}
	default:
		return fmt.Errorf("%w: created_at of type %T", ErrInvalidPayload, value)
	}
	return nil
}

// SensorDataPayload is a sensor_data row as it travels over NOTIFY, MQTT and
// JSON kafka topics.
type SensorDataPayload struct {
	ID          int64     `json:"id" msgpack:"id"`
	CreatedAt   Timestamp `json:"created_at" msgpack:"created_at"`
	Distance    float64   `json:"distance" msgpack:"distance"`
	ServoStatus string    `json:"servo_status" msgpack:"servo_status"`
}

func FromReading(reading domain.SensorReading) SensorDataPayload {
	return SensorDataPayload{
		ID:          int64(reading.ID),
		CreatedAt:   NewTimestamp(reading.CreatedAt),
		Distance:    reading.Distance,
		ServoStatus: reading.ServoStatus.String(),
	}
}

// ToDomain keeps unknown servo statuses; they simply never count as feeds.
func (p SensorDataPayload) ToDomain(location *time.Location) (domain.SensorReading, error) {
	if p.ID == 0 {
		return domain.SensorReading{}, fmt.Errorf("%w: missing id", ErrInvalidPayload)
	}
	if p.CreatedAt.IsZero() {
		return domain.SensorReading{}, fmt.Errorf("%w: missing created_at", ErrInvalidPayload)
	}

	status, _ := domain.ParseServoStatus(p.ServoStatus)
	return domain.SensorReading{
		ID:          domain.ReadingID(p.ID),
		CreatedAt:   p.CreatedAt.Resolve(location),
		Distance:    p.Distance,
		ServoStatus: status,
	}, nil
}

const SensorDataAvroSchema = `{
	"type": "record",
	"name": "SensorData",
	"namespace": "catfeeder",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-micros"}},
		{"name": "distance", "type": "double"},
		{"name": "servo_status", "type": "string"}
	]
}`

type AvroSensorData struct {
	ID          int64     `avro:"id"`
	CreatedAt   time.Time `avro:"created_at"`
	Distance    float64   `avro:"distance"`
	ServoStatus string    `avro:"servo_status"`
}

func (a AvroSensorData) ToPayload() SensorDataPayload {
	return SensorDataPayload{
		ID:          a.ID,
		CreatedAt:   NewTimestamp(a.CreatedAt),
		Distance:    a.Distance,
		ServoStatus: a.ServoStatus,
	}
}

func ToAvroSensorData(reading domain.SensorReading) AvroSensorData {
	return AvroSensorData{
		ID:          int64(reading.ID),
		CreatedAt:   reading.CreatedAt,
		Distance:    reading.Distance,
		ServoStatus: reading.ServoStatus.String(),
	}
}

// DecodeReading turns any value produced by the feed codecs into a reading.
func DecodeReading(value any, location *time.Location) (domain.SensorReading, error) {
	switch v := value.(type) {
	case *SensorDataPayload:
		return v.ToDomain(location)
	case SensorDataPayload:
		return v.ToDomain(location)
	case *AvroSensorData:
		return v.ToPayload().ToDomain(location)
	case AvroSensorData:
		return v.ToPayload().ToDomain(location)
	case domain.SensorReading:
		return v, nil
	default:
		return domain.SensorReading{}, fmt.Errorf("%w: unexpected value %T", ErrInvalidPayload, value)
	}
}
