package internal

import (
	"time"

	"catfeeder-server/internal/feeder/domain"
)

type SensorData struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time `json:"created_at" gorm:"index;not null"`
	Distance    float64   `json:"distance"`
	ServoStatus string    `json:"servo_status" gorm:"type:varchar(16)"`
}

func (SensorData) TableName() string {
	return "sensor_data"
}

// ToDomain keeps unknown servo statuses as they are so the dashboard can still
// show the raw value.
func (s SensorData) ToDomain() domain.SensorReading {
	status, _ := domain.ParseServoStatus(s.ServoStatus)
	return domain.SensorReading{
		ID:          domain.ReadingID(s.ID),
		CreatedAt:   s.CreatedAt,
		Distance:    s.Distance,
		ServoStatus: status,
	}
}

func FromSensorReading(value domain.SensorReading) SensorData {
	createdAt := value.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return SensorData{
		ID:          int64(value.ID),
		CreatedAt:   createdAt.UTC(),
		Distance:    value.Distance,
		ServoStatus: value.ServoStatus.String(),
	}
}
