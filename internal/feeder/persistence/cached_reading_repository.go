package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/usecases"
	"catfeeder-server/internal/infra/cache"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	_defaultPastDayTTL = 24 * time.Hour
)

type CachedReadingRepositoryConfig struct {
	Cache     cache.Cache
	KeyPrefix string
	TTL       time.Duration
	Now       func() time.Time
}

func DefaultCachedReadingRepositoryConfig() *CachedReadingRepositoryConfig {
	return &CachedReadingRepositoryConfig{
		KeyPrefix: "sensor_data:",
		TTL:       _defaultPastDayTTL,
		Now:       time.Now,
	}
}

// NewCachedReadingRepository caches ranges that ended before the current day.
// Those can no longer receive inserts, so the result is stable. Anything that
// touches today goes straight to next.
func NewCachedReadingRepository(next usecases.ReadingRepository, config *CachedReadingRepositoryConfig) (*CachedReadingRepository, error) {
	if config == nil {
		config = DefaultCachedReadingRepositoryConfig()
	}
	if config.Cache == nil {
		return nil, fmt.Errorf("cache instance is required")
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &CachedReadingRepository{
		next:      next,
		cache:     config.Cache,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
		now:       config.Now,
	}, nil
}

var _ usecases.ReadingRepository = (*CachedReadingRepository)(nil)

type CachedReadingRepository struct {
	next      usecases.ReadingRepository
	cache     cache.Cache
	keyPrefix string
	ttl       time.Duration
	now       func() time.Time
}

type cachedReading struct {
	ID          int64   `msgpack:"id"`
	CreatedAt   int64   `msgpack:"created_at"`
	Distance    float64 `msgpack:"distance"`
	ServoStatus string  `msgpack:"servo_status"`
}

func (c *CachedReadingRepository) FindByCreatedAtRange(ctx context.Context, from, to time.Time) ([]domain.SensorReading, error) {
	if !c.isSettled(to) {
		return c.next.FindByCreatedAtRange(ctx, from, to)
	}

	key := c.makeKey(from, to)
	data, err := c.cache.GetOrSet(ctx, key, c.ttl, func() ([]byte, error) {
		readings, err := c.next.FindByCreatedAtRange(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return encodeReadings(readings)
	})
	if err != nil {
		return nil, err
	}

	readings, err := decodeReadings(data, from.Location())
	if err != nil {
		slog.Warn("discarding cached readings", slog.String("cache_key", key), slog.Any("error", err))
		c.cache.Delete(ctx, key)
		return c.next.FindByCreatedAtRange(ctx, from, to)
	}

	return readings, nil
}

func (c *CachedReadingRepository) isSettled(to time.Time) bool {
	startOfToday := domain.DayOf(c.now(), to.Location()).Start()
	return to.Before(startOfToday)
}

func (c *CachedReadingRepository) makeKey(from, to time.Time) string {
	return fmt.Sprintf("%s%d:%d", c.keyPrefix, from.UnixNano(), to.UnixNano())
}

func encodeReadings(readings []domain.SensorReading) ([]byte, error) {
	values := make([]cachedReading, len(readings))
	for i, reading := range readings {
		values[i] = cachedReading{
			ID:          int64(reading.ID),
			CreatedAt:   reading.CreatedAt.UnixNano(),
			Distance:    reading.Distance,
			ServoStatus: reading.ServoStatus.String(),
		}
	}

	data, err := msgpack.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encoding readings: %w", err)
	}
	return data, nil
}

func decodeReadings(data []byte, location *time.Location) ([]domain.SensorReading, error) {
	var values []cachedReading
	if err := msgpack.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decoding readings: %w", err)
	}

	readings := make([]domain.SensorReading, len(values))
	for i, value := range values {
		readings[i] = domain.SensorReading{
			ID:          domain.ReadingID(value.ID),
			CreatedAt:   time.Unix(0, value.CreatedAt).In(location),
			Distance:    value.Distance,
			ServoStatus: domain.ServoStatus(value.ServoStatus),
		}
	}
	return readings, nil
}
