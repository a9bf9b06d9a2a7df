package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catfeeder-server/internal/feeder/domain"

	"github.com/gorilla/websocket"
)

type APIDriver struct {
	server *Server
	client *http.Client
}

func NewAPIDriver(server *Server) *APIDriver {
	return &APIDriver{
		server: server,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *APIDriver) GetHealthz() (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/healthz", d.server.URL))
}

func (d *APIDriver) GetDashboard(date string) (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/v1/dashboard?date=%s", d.server.URL, url.QueryEscape(date)))
}

func (d *APIDriver) GetDashboardPage() (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/", d.server.URL))
}

// InsertReading stores a row the way the device would and announces it on the
// live feed.
func (d *APIDriver) InsertReading(ctx context.Context, date, clock string, distance float64, status string) error {
	createdAt, err := time.ParseInLocation("2006-01-02 15:04", fmt.Sprintf("%s %s", date, clock), d.server.Location())
	if err != nil {
		return err
	}

	_, err = d.server.Sink().Emit(ctx, domain.SensorReading{
		CreatedAt:   createdAt,
		Distance:    distance,
		ServoStatus: domain.ServoStatus(status),
	})
	return err
}

func (d *APIDriver) DialDashboard(date string) (*DashboardSocket, *http.Response, error) {
	wsURL := strings.Replace(d.server.URL, "http", "ws", 1) + "/ws/dashboard"
	if date != "" {
		wsURL += "?date=" + url.QueryEscape(date)
	}

	conn, response, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, response, err
	}
	return &DashboardSocket{conn: conn}, response, nil
}

type DashboardSocket struct {
	conn *websocket.Conn
}

func (s *DashboardSocket) SelectDate(date string) error {
	return s.conn.WriteJSON(map[string]string{"type": "select_date", "date": date})
}

func (s *DashboardSocket) Send(raw string) error {
	return s.conn.WriteMessage(websocket.TextMessage, []byte(raw))
}

// Next returns the next server message decoded as a generic map.
func (s *DashboardSocket) Next(timeout time.Duration) (map[string]any, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	_, payload, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var message map[string]any
	if err := json.Unmarshal(payload, &message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *DashboardSocket) Close() error {
	return s.conn.Close()
}
