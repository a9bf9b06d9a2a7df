package domain

import "slices"

// DashboardState is the in-memory view of one selected day. The feed count is
// never stored: it is always derived from the held readings.
type DashboardState struct {
	selectedDate Day
	readings     []SensorReading
	known        map[ReadingID]struct{}
	connected    bool
}

func NewDashboardState(selectedDate Day) *DashboardState {
	return &DashboardState{
		selectedDate: selectedDate,
		readings:     make([]SensorReading, 0),
		known:        make(map[ReadingID]struct{}),
	}
}

func (s *DashboardState) SelectedDate() Day {
	return s.selectedDate
}

// Select switches the selected date. Moving to another day drops the held
// readings so nothing from the previous day is reported under the new one.
// Connected is kept.
func (s *DashboardState) Select(day Day) {
	if s.selectedDate.Equal(day) {
		return
	}

	s.selectedDate = day
	s.readings = make([]SensorReading, 0)
	s.known = make(map[ReadingID]struct{})
}

// Load replaces the held sequence with a range query result.
func (s *DashboardState) Load(readings []SensorReading) {
	s.readings = make([]SensorReading, 0, len(readings))
	s.known = make(map[ReadingID]struct{}, len(readings))
	for _, reading := range readings {
		s.readings = append(s.readings, reading)
		s.known[reading.ID] = struct{}{}
	}

	if len(readings) > 0 {
		s.connected = true
	}
}

// Append extends the sequence with a live insert. It returns false when the
// reading was dropped, either because its id is already held or because it
// belongs to another day.
func (s *DashboardState) Append(reading SensorReading) bool {
	if !s.selectedDate.Contains(reading.CreatedAt) {
		return false
	}
	if _, ok := s.known[reading.ID]; ok {
		return false
	}

	s.readings = append(s.readings, reading)
	s.known[reading.ID] = struct{}{}
	s.connected = true
	return true
}

func (s *DashboardState) Readings() []SensorReading {
	return slices.Clone(s.readings)
}

func (s *DashboardState) Latest() (SensorReading, bool) {
	if len(s.readings) == 0 {
		return SensorReading{}, false
	}
	return s.readings[len(s.readings)-1], true
}

func (s *DashboardState) FeedCount() int {
	return CountFeedEvents(s.readings)
}

func (s *DashboardState) Connected() bool {
	return s.connected
}

func (s *DashboardState) Snapshot(subscribed bool) DashboardSnapshot {
	snapshot := DashboardSnapshot{
		SelectedDate: s.selectedDate,
		Readings:     s.Readings(),
		FeedCount:    s.FeedCount(),
		Connected:    s.connected,
		Subscribed:   subscribed,
	}
	if latest, ok := s.Latest(); ok {
		snapshot.Latest = &latest
	}

	return snapshot
}

// DashboardSnapshot is a detached copy of the state handed to readers.
type DashboardSnapshot struct {
	SelectedDate Day
	Readings     []SensorReading
	Latest       *SensorReading
	FeedCount    int
	Connected    bool
	Subscribed   bool
}

func (s DashboardSnapshot) IsEmpty() bool {
	return len(s.Readings) == 0
}

func (s DashboardSnapshot) Hourly() HourlyHistogram {
	return NewHourlyHistogram(s.Readings, s.SelectedDate.Location())
}
