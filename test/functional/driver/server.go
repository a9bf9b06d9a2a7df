package driver

import (
	"fmt"
	"net/http/httptest"
	"time"

	"catfeeder-server/internal/feeder/changefeed"
	"catfeeder-server/internal/feeder/httpapi"
	"catfeeder-server/internal/feeder/persistence"
	"catfeeder-server/internal/feeder/simulation"
	"catfeeder-server/internal/feeder/usecases"
	"catfeeder-server/internal/infra/async"
	"catfeeder-server/internal/infra/httpserver"
	"catfeeder-server/internal/infra/sql"

	"github.com/google/uuid"
)

// Server runs the dashboard stack in process on sqlite with the memory feed.
// Today is pinned so scenarios can name dates.
type Server struct {
	URL string

	http      *httptest.Server
	broker    *async.LocalBroker
	service   *usecases.SimpleDashboardService
	websocket *httpapi.DashboardWebSocketController
	sink      simulation.ReadingSink
	location  *time.Location
}

func StartServer(location *time.Location, now time.Time) (*Server, error) {
	orm, err := sql.NewMemoryORM(fmt.Sprintf("functional_%s", uuid.NewString()))
	if err != nil {
		return nil, err
	}
	repository, err := persistence.NewReadingRepository(orm)
	if err != nil {
		return nil, err
	}

	broker := async.NewLocalBroker()
	notifier := changefeed.NewNotifier(broker)
	service := usecases.NewDashboardService(repository, changefeed.NewBrokerLiveFeed(broker), usecases.DashboardServiceOpts{
		Location: location,
		Now:      func() time.Time { return now },
	})

	opts := httpapi.DashboardControllerOpts{}
	websocket := httpapi.NewDashboardWebSocketController(service, opts)
	server := httpserver.NewServer(httpserver.ServerConfig{},
		httpapi.NewDashboardController(service, opts),
		websocket,
	)

	httpServer := httptest.NewServer(server.Handler())
	return &Server{
		URL:       httpServer.URL,
		http:      httpServer,
		broker:    broker,
		service:   service,
		websocket: websocket,
		sink:      simulation.NewRepositorySink(repository, notifier),
		location:  location,
	}, nil
}

func (s *Server) Location() *time.Location {
	return s.location
}

func (s *Server) Sink() simulation.ReadingSink {
	return s.sink
}

func (s *Server) Stop() {
	s.websocket.Shutdown()
	s.service.Shutdown()
	s.http.Close()
	s.broker.Stop()
}
