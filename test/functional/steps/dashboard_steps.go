package steps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"
)

func (fc *FeatureContext) theFollowingReadingsOn(date string, table *godog.Table) error {
	header := table.Rows[0]
	columns := make(map[string]int, len(header.Cells))
	for i, cell := range header.Cells {
		columns[cell.Value] = i
	}

	for _, row := range table.Rows[1:] {
		distance, err := strconv.ParseFloat(row.Cells[columns["distance"]].Value, 64)
		if err != nil {
			return err
		}
		clock := row.Cells[columns["time"]].Value
		status := row.Cells[columns["status"]].Value
		if err := fc.apiDriver.InsertReading(context.Background(), date, clock, distance, status); err != nil {
			return err
		}
	}
	return nil
}

func (fc *FeatureContext) iGetTheDashboardFor(date string) error {
	response, err := fc.apiDriver.GetDashboard(date)
	if err != nil {
		return err
	}
	fc.response = response

	if response.StatusCode == 200 {
		var data map[string]any
		fc.require.NoError(fc.decodeBody(response.Body, &data))
		fc.responseData = data
	}
	return nil
}

func (fc *FeatureContext) iOpenTheDashboardPage() error {
	response, err := fc.apiDriver.GetDashboardPage()
	if err != nil {
		return err
	}
	fc.response = response
	fc.require.Contains(response.Header.Get("Content-Type"), "text/html")
	return nil
}

func (fc *FeatureContext) theFeedCountShouldBe(count int) error {
	fc.require.NotNil(fc.responseData, "no dashboard received")
	fc.require.EqualValues(count, fc.responseData["feed_count"])
	return nil
}

func (fc *FeatureContext) hourShouldHaveFeeds(hour, count int) error {
	hourly, ok := fc.responseData["hourly"].([]any)
	fc.require.True(ok, "hourly should be a list")
	fc.require.Len(hourly, 24)

	bucket := hourly[hour].(map[string]any)
	fc.require.EqualValues(hour, bucket["hour"])
	fc.require.EqualValues(count, bucket["count"])
	return nil
}

func (fc *FeatureContext) theLastUpdateShouldBe(value string) error {
	fc.require.Equal(value, fc.responseData["last_update"])
	return nil
}

func (fc *FeatureContext) theStatusLabelShouldBe(label string) error {
	status, ok := fc.responseData["status"].(map[string]any)
	fc.require.True(ok, "status should be an object")
	fc.require.Equal(label, status["label"])
	return nil
}

func (fc *FeatureContext) theDashboardShouldBeEmpty() error {
	fc.require.Equal(true, fc.responseData["empty"])
	fc.require.NotEmpty(fc.responseData["empty_message"])
	fc.require.Empty(fc.responseData["log"])
	return nil
}

func (fc *FeatureContext) theDashboardShouldBeConnected() error {
	fc.require.Equal(true, fc.responseData["connected"])
	fc.require.Equal("Online", fc.responseData["connection"])
	return nil
}

func (fc *FeatureContext) iOpenTheDashboardSocketFor(date string) error {
	socket, _, err := fc.apiDriver.DialDashboard(date)
	if err != nil {
		return err
	}
	fc.socket = socket
	return nil
}

func (fc *FeatureContext) aReadingArrivesOn(clock string, distance float64, status, date string) error {
	return fc.apiDriver.InsertReading(context.Background(), date, clock, distance, status)
}

func (fc *FeatureContext) iSelectTheDateOnTheSocket(date string) error {
	return fc.socket.SelectDate(date)
}

func (fc *FeatureContext) iSendAMessageOnTheSocket(messageType string) error {
	return fc.socket.Send(fmt.Sprintf(`{"type":%q}`, messageType))
}

func (fc *FeatureContext) iEventuallyReceiveTheDashboardForWithFeeds(date string, count int) error {
	return fc.eventuallyReceive(func(message map[string]any) bool {
		data, ok := message["data"].(map[string]any)
		return ok && data["selected_date"] == date && data["feed_count"] == float64(count)
	})
}

func (fc *FeatureContext) iEventuallyReceiveTheDashboardWithStatus(label string) error {
	return fc.eventuallyReceive(func(message map[string]any) bool {
		data, ok := message["data"].(map[string]any)
		if !ok {
			return false
		}
		status, ok := data["status"].(map[string]any)
		return ok && status["label"] == label
	})
}

func (fc *FeatureContext) iEventuallyReceiveAnErrorMessage() error {
	return fc.eventuallyReceive(func(message map[string]any) bool {
		return message["type"] == "error" && message["message"] != ""
	})
}

// eventuallyReceive reads socket messages until one matches. Matching state
// messages become the current response data.
func (fc *FeatureContext) eventuallyReceive(match func(map[string]any) bool) error {
	fc.require.NotNil(fc.socket, "socket not open")

	deadline := time.Now().Add(_eventuallyTimeout)
	var last map[string]any
	for time.Now().Before(deadline) {
		message, err := fc.socket.Next(time.Until(deadline))
		if err != nil {
			break
		}
		last = message
		if match(message) {
			if data, ok := message["data"].(map[string]any); ok {
				fc.responseData = data
			}
			return nil
		}
	}

	return fmt.Errorf("no matching message before timeout, last received: %v", last)
}
