package internal

import (
	"fmt"
	"strconv"
	"time"

	"catfeeder-server/internal/feeder/domain"
)

const (
	DefaultLogSize = 50

	_timeLayout = "15:04:05"
)

const (
	ConnectionOnline  = "Online"
	ConnectionOffline = "Offline"

	WaitingStatus     = "WAITING..."
	NoDataDescription = "No data received today yet."
	EmptyLogMessage   = "No data for this day yet..."
	MissingValue      = "--"
	MissingTime       = "-"
)

type StatusView struct {
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type ReadingView struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Time        string    `json:"time"`
	Distance    float64   `json:"distance"`
	ServoStatus string    `json:"servo_status"`
	Color       string    `json:"color"`
}

type HourView struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardView is everything the page renders, already formatted.
type DashboardView struct {
	SelectedDate string        `json:"selected_date"`
	Connected    bool          `json:"connected"`
	Subscribed   bool          `json:"subscribed"`
	Connection   string        `json:"connection"`
	FeedCount    int           `json:"feed_count"`
	Distance     string        `json:"distance"`
	LastUpdate   string        `json:"last_update"`
	Status       StatusView    `json:"status"`
	Hourly       []HourView    `json:"hourly"`
	Log          []ReadingView `json:"log"`
	Empty        bool          `json:"empty"`
	EmptyMessage string        `json:"empty_message,omitempty"`
	Chart        ChartView     `json:"chart"`
}

func StatusColor(status domain.ServoStatus) string {
	switch status {
	case domain.ServoStatusOpen:
		return "status-open"
	case domain.ServoStatusClosed:
		return "status-closed"
	case domain.ServoStatusCooldown:
		return "status-cooldown"
	default:
		return "status-unknown"
	}
}

// StatusDescription is empty for statuses the device is not known to send.
func StatusDescription(status domain.ServoStatus) string {
	switch status {
	case domain.ServoStatusOpen:
		return "Dispensing food..."
	case domain.ServoStatusClosed:
		return "Standby. Waiting for the cat."
	case domain.ServoStatusCooldown:
		return "Cooling down (5 seconds)."
	default:
		return ""
	}
}

func FormatTime(t time.Time, location *time.Location) string {
	if location != nil {
		t = t.In(location)
	}
	return t.Format(_timeLayout)
}

func FormatDistance(distance float64) string {
	return strconv.FormatFloat(distance, 'f', -1, 64)
}

func NewReadingView(reading domain.SensorReading, location *time.Location) ReadingView {
	return ReadingView{
		ID:          int64(reading.ID),
		CreatedAt:   reading.CreatedAt,
		Time:        FormatTime(reading.CreatedAt, location),
		Distance:    reading.Distance,
		ServoStatus: reading.ServoStatus.String(),
		Color:       StatusColor(reading.ServoStatus),
	}
}

// NewDashboardView renders the newest logSize readings first.
func NewDashboardView(snapshot domain.DashboardSnapshot, logSize int) DashboardView {
	if logSize <= 0 {
		logSize = DefaultLogSize
	}
	location := snapshot.SelectedDate.Location()

	view := DashboardView{
		SelectedDate: snapshot.SelectedDate.String(),
		Connected:    snapshot.Connected,
		Subscribed:   snapshot.Subscribed,
		Connection:   ConnectionOffline,
		FeedCount:    snapshot.FeedCount,
		Distance:     MissingValue,
		LastUpdate:   MissingTime,
		Status: StatusView{
			Label:       WaitingStatus,
			Color:       StatusColor(""),
			Description: NoDataDescription,
		},
		Empty: snapshot.IsEmpty(),
	}
	if snapshot.Connected {
		view.Connection = ConnectionOnline
	}

	if latest := snapshot.Latest; latest != nil {
		view.Distance = FormatDistance(latest.Distance)
		view.LastUpdate = FormatTime(latest.CreatedAt, location)
		view.Status = StatusView{
			Label:       latest.ServoStatus.String(),
			Color:       StatusColor(latest.ServoStatus),
			Description: StatusDescription(latest.ServoStatus),
		}
	}

	histogram := snapshot.Hourly()
	view.Hourly = make([]HourView, len(histogram))
	for hour, count := range histogram {
		view.Hourly[hour] = HourView{Hour: hour, Label: fmt.Sprintf("%d:00", hour), Count: count}
	}
	view.Chart = NewChartView(histogram)

	size := min(logSize, len(snapshot.Readings))
	view.Log = make([]ReadingView, 0, size)
	for i := len(snapshot.Readings) - 1; i >= 0 && len(view.Log) < size; i-- {
		view.Log = append(view.Log, NewReadingView(snapshot.Readings[i], location))
	}
	if view.Empty {
		view.EmptyMessage = EmptyLogMessage
	}

	return view
}
