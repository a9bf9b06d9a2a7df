package usecases

import (
	"context"
	"time"

	"catfeeder-server/internal/feeder/domain"
)

//go:generate mockgen -source=repository_port.go -destination=../../../test/unit/doubles/feeder/usecases/repository_port_mock.go -package=usecases -mock_names=ReadingRepository=MockReadingRepository

// ReadingRepository answers range queries over sensor_data. Results are ordered
// by created_at ascending and both bounds are inclusive.
type ReadingRepository interface {
	FindByCreatedAtRange(ctx context.Context, from, to time.Time) ([]domain.SensorReading, error)
}
