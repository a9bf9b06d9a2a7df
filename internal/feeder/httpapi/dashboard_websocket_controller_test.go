package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"catfeeder-server/internal/feeder/changefeed"
	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/httpapi"
	"catfeeder-server/internal/feeder/persistence"
	"catfeeder-server/internal/feeder/usecases"
	"catfeeder-server/internal/infra/async"
	"catfeeder-server/internal/infra/sql"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type serverMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Data    struct {
		SelectedDate string `json:"selected_date"`
		FeedCount    int    `json:"feed_count"`
		Connected    bool   `json:"connected"`
		Subscribed   bool   `json:"subscribed"`
		Log          []struct {
			ID int64 `json:"id"`
		} `json:"log"`
	} `json:"data"`
}

var _ = ginkgo.Describe("DashboardWebSocketController", func() {
	var (
		ctx        context.Context
		repository *persistence.SimpleReadingRepository
		notifier   *changefeed.Notifier
		service    *usecases.SimpleDashboardService
		controller *httpapi.DashboardWebSocketController
		server     *httptest.Server
		today      domain.Day
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		now := time.Date(2026, time.October, 16, 10, 0, 0, 0, wib)
		today = domain.DayOf(now, wib)

		orm, err := sql.NewMemoryORM(uuid.NewString())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		repository, err = persistence.NewReadingRepository(orm)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		broker := async.NewLocalBroker()
		notifier = changefeed.NewNotifier(broker)
		service = usecases.NewDashboardService(repository, changefeed.NewBrokerLiveFeed(broker), usecases.DashboardServiceOpts{
			Location: wib,
			Now:      func() time.Time { return now },
		})

		controller = httpapi.NewDashboardWebSocketController(service, httpapi.DashboardControllerOpts{})
		router := http.NewServeMux()
		controller.AddRoutes(router)
		server = httptest.NewServer(router)
	})

	ginkgo.AfterEach(func() {
		controller.Shutdown()
		server.Close()
		service.Shutdown()
	})

	dial := func(query string) *websocket.Conn {
		url := strings.Replace(server.URL, "http", "ws", 1) + "/ws/dashboard" + query
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return conn
	}

	// next reads until a message satisfies match.
	next := func(conn *websocket.Conn, match func(serverMessage) bool) serverMessage {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			conn.SetReadDeadline(deadline)
			var msg serverMessage
			gomega.Expect(conn.ReadJSON(&msg)).To(gomega.Succeed())
			if match(msg) {
				return msg
			}
		}
		ginkgo.Fail("no matching message")
		return serverMessage{}
	}

	insert := func(at time.Time, status domain.ServoStatus) domain.SensorReading {
		reading, err := repository.Insert(ctx, domain.SensorReading{CreatedAt: at, Distance: 6, ServoStatus: status})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return reading
	}

	ginkgo.It("should push the loaded day and then live inserts", func() {
		insert(today.Start().Add(8*time.Hour), domain.ServoStatusOpen)

		conn := dial("")
		defer conn.Close()

		loaded := next(conn, func(m serverMessage) bool { return m.Type == "dashboard_state" && m.Data.FeedCount == 1 })
		gomega.Expect(loaded.Data.SelectedDate).To(gomega.Equal("2026-10-16"))
		gomega.Expect(loaded.Data.Connected).To(gomega.BeTrue())

		gomega.Eventually(func() int { return len(service.Sessions()) }).Should(gomega.Equal(1))
		live := insert(today.Start().Add(9*time.Hour), domain.ServoStatusOpen)
		gomega.Expect(notifier.Notify(ctx, "test", live)).To(gomega.Succeed())

		updated := next(conn, func(m serverMessage) bool { return m.Data.FeedCount == 2 })
		gomega.Expect(updated.Data.Log[0].ID).To(gomega.Equal(int64(live.ID)))
	})

	ginkgo.It("should switch days on select_date", func() {
		insert(today.Start().Add(-16*time.Hour), domain.ServoStatusOpen)
		insert(today.Start().Add(-15*time.Hour), domain.ServoStatusOpen)

		conn := dial("?date=2026-10-16")
		defer conn.Close()
		next(conn, func(m serverMessage) bool { return m.Type == "dashboard_state" })

		gomega.Expect(conn.WriteJSON(map[string]string{"type": "select_date", "date": "2026-10-15"})).To(gomega.Succeed())

		msg := next(conn, func(m serverMessage) bool { return m.Data.SelectedDate == "2026-10-15" && m.Data.FeedCount == 2 })
		gomega.Expect(msg.Data.Log).To(gomega.HaveLen(2))
	})

	ginkgo.It("should report bad client messages without closing", func() {
		conn := dial("")
		defer conn.Close()
		next(conn, func(m serverMessage) bool { return m.Type == "dashboard_state" })

		gomega.Expect(conn.WriteJSON(map[string]string{"type": "select_date", "date": "tomorrow"})).To(gomega.Succeed())
		msg := next(conn, func(m serverMessage) bool { return m.Type == "error" })
		gomega.Expect(msg.Message).To(gomega.ContainSubstring("invalid date"))

		gomega.Expect(conn.WriteJSON(map[string]string{"type": "refresh"})).To(gomega.Succeed())
		msg = next(conn, func(m serverMessage) bool { return m.Type == "error" })
		gomega.Expect(msg.Message).To(gomega.ContainSubstring("unknown message type"))
	})

	ginkgo.It("should reject a malformed date before upgrading", func() {
		resp, err := http.Get(server.URL + "/ws/dashboard?date=not-a-date")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		defer resp.Body.Close()
		gomega.Expect(resp.StatusCode).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.It("should close the session when the client leaves", func() {
		conn := dial("")
		next(conn, func(m serverMessage) bool { return m.Type == "dashboard_state" })
		gomega.Eventually(func() int { return len(service.Sessions()) }).Should(gomega.Equal(1))

		conn.Close()

		gomega.Eventually(func() int { return len(service.Sessions()) }).Should(gomega.Equal(0))
	})

	ginkgo.It("should refuse new sockets once shut down", func() {
		conn := dial("")
		next(conn, func(m serverMessage) bool { return m.Type == "dashboard_state" })

		controller.Shutdown()

		gomega.Eventually(func() int { return len(service.Sessions()) }).Should(gomega.Equal(0))
		url := strings.Replace(server.URL, "http", "ws", 1) + "/ws/dashboard"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		gomega.Expect(err).To(gomega.MatchError(websocket.ErrBadHandshake))
		gomega.Expect(resp.StatusCode).To(gomega.Equal(http.StatusServiceUnavailable))
		conn.Close()
	})
})
