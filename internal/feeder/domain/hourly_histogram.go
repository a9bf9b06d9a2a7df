package domain

import "time"

const HoursPerDay = 24

// HourlyHistogram holds the number of feed events per local hour of day.
type HourlyHistogram [HoursPerDay]int

func NewHourlyHistogram(readings []SensorReading, location *time.Location) HourlyHistogram {
	if location == nil {
		location = time.Local
	}

	var histogram HourlyHistogram
	for _, reading := range readings {
		if !reading.IsFeedEvent() {
			continue
		}
		histogram[reading.CreatedAt.In(location).Hour()]++
	}

	return histogram
}

func (h HourlyHistogram) Total() int {
	total := 0
	for _, count := range h {
		total += count
	}
	return total
}

// Peak returns the busiest hour and its count. Ties resolve to the earliest hour.
func (h HourlyHistogram) Peak() (int, int) {
	hour, peak := 0, 0
	for i, count := range h {
		if count > peak {
			hour, peak = i, count
		}
	}
	return hour, peak
}
