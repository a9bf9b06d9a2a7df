package persistence

import (
	"context"
	"fmt"
	"time"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/persistence/internal"
	"catfeeder-server/internal/feeder/usecases"
	"catfeeder-server/internal/infra/sql"
)

func NewReadingRepository(orm sql.ORM) (*SimpleReadingRepository, error) {
	err := orm.AutoMigrate(&internal.SensorData{})
	if err != nil {
		return nil, fmt.Errorf("auto migrating: %w", err)
	}

	return &SimpleReadingRepository{
		orm: orm,
	}, nil
}

var _ usecases.ReadingRepository = (*SimpleReadingRepository)(nil)

type SimpleReadingRepository struct {
	orm sql.ORM
}

// FindByCreatedAtRange compares in UTC since that is how rows are written.
func (s *SimpleReadingRepository) FindByCreatedAtRange(ctx context.Context, from, to time.Time) ([]domain.SensorReading, error) {
	var entities []internal.SensorData
	err := s.orm.
		WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", from.UTC(), to.UTC()).
		Order("created_at ASC, id ASC").
		Find(&entities).
		Error()

	if err != nil {
		return nil, fmt.Errorf("database query: %w", err)
	}

	result := make([]domain.SensorReading, len(entities))
	for i, entity := range entities {
		result[i] = entity.ToDomain()
	}

	return result, nil
}

// Insert stores a reading and returns it with the id assigned by the database.
func (s *SimpleReadingRepository) Insert(ctx context.Context, reading domain.SensorReading) (domain.SensorReading, error) {
	entity := internal.FromSensorReading(reading)
	err := s.orm.
		WithContext(ctx).
		Create(&entity).
		Error()

	if err != nil {
		return domain.SensorReading{}, fmt.Errorf("database insert: %w", err)
	}

	return entity.ToDomain(), nil
}

func (s *SimpleReadingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.orm.
		WithContext(ctx).
		Model(&internal.SensorData{}).
		Count(&count).
		Error()

	if err != nil {
		return 0, fmt.Errorf("database count: %w", err)
	}

	return count, nil
}
