package domain

import (
	"errors"
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

var ErrInvalidDay = errors.New("invalid day")

// Day is a calendar date bound to the time zone the dashboard renders in.
type Day struct {
	year     int
	month    time.Month
	day      int
	location *time.Location
}

func NewDay(year int, month time.Month, day int, location *time.Location) Day {
	if location == nil {
		location = time.Local
	}
	normalized := time.Date(year, month, day, 0, 0, 0, 0, location)
	return Day{
		year:     normalized.Year(),
		month:    normalized.Month(),
		day:      normalized.Day(),
		location: location,
	}
}

func DayOf(t time.Time, location *time.Location) Day {
	if location == nil {
		location = time.Local
	}
	local := t.In(location)
	return NewDay(local.Year(), local.Month(), local.Day(), location)
}

func Today(now func() time.Time, location *time.Location) Day {
	return DayOf(now(), location)
}

func ParseDay(value string, location *time.Location) (Day, error) {
	if location == nil {
		location = time.Local
	}
	parsed, err := time.ParseInLocation(DayLayout, value, location)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, value)
	}

	return NewDay(parsed.Year(), parsed.Month(), parsed.Day(), location), nil
}

func (d Day) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

func (d Day) Location() *time.Location {
	if d.location == nil {
		return time.Local
	}
	return d.location
}

// Start is 00:00:00 of the day.
func (d Day) Start() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, d.Location())
}

// End is the last representable instant of the day, so readings stamped inside
// the final second are still part of it.
func (d Day) End() time.Time {
	return d.Next().Start().Add(-time.Nanosecond)
}

func (d Day) Next() Day {
	return NewDay(d.year, d.month, d.day+1, d.Location())
}

func (d Day) Contains(t time.Time) bool {
	return !t.Before(d.Start()) && !t.After(d.End())
}

func (d Day) Equal(other Day) bool {
	return d.year == other.year && d.month == other.month && d.day == other.day
}

func (d Day) String() string {
	return d.Start().Format(DayLayout)
}
