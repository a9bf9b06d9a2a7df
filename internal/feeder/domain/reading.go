package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidServoStatus = errors.New("invalid servo status")

type ServoStatus string

const (
	ServoStatusOpen     ServoStatus = "OPEN"
	ServoStatusClosed   ServoStatus = "CLOSED"
	ServoStatusCooldown ServoStatus = "COOLDOWN"
)

func ParseServoStatus(value string) (ServoStatus, error) {
	status := ServoStatus(strings.ToUpper(strings.TrimSpace(value)))
	if !status.IsKnown() {
		return status, fmt.Errorf("%w: %q", ErrInvalidServoStatus, value)
	}

	return status, nil
}

func (s ServoStatus) IsKnown() bool {
	switch s {
	case ServoStatusOpen, ServoStatusClosed, ServoStatusCooldown:
		return true
	default:
		return false
	}
}

func (s ServoStatus) String() string {
	return string(s)
}

type ReadingID int64

// SensorReading is one feeder sample as persisted in sensor_data. Values are
// never mutated once they leave the database.
type SensorReading struct {
	ID          ReadingID
	CreatedAt   time.Time
	Distance    float64
	ServoStatus ServoStatus
}

// IsFeedEvent reports whether the reading counts toward the daily feed total.
func (r SensorReading) IsFeedEvent() bool {
	return r.ServoStatus == ServoStatusOpen
}

func CountFeedEvents(readings []SensorReading) int {
	count := 0
	for _, reading := range readings {
		if reading.IsFeedEvent() {
			count++
		}
	}
	return count
}
