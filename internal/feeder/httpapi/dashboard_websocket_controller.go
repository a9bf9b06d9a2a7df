package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"catfeeder-server/internal/feeder/httpapi/internal"
	"catfeeder-server/internal/feeder/usecases"
	"catfeeder-server/internal/infra/httpserver"

	"github.com/gorilla/websocket"
)

const (
	_pingPeriod   = 54 * time.Second
	_pongWait     = 60 * time.Second
	_writeWait    = 10 * time.Second
	_readLimit    = 512
	_clientBuffer = 4
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DashboardWebSocketController binds every socket to one dashboard session.
type DashboardWebSocketController struct {
	service usecases.DashboardService
	logSize int
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func NewDashboardWebSocketController(service usecases.DashboardService, opts DashboardControllerOpts) *DashboardWebSocketController {
	logSize := opts.LogSize
	if logSize <= 0 {
		logSize = internal.DefaultLogSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &DashboardWebSocketController{
		service: service,
		logSize: logSize,
		ctx:     ctx,
		cancel:  cancel,
	}
}

var _ httpserver.Controller = (*DashboardWebSocketController)(nil)

func (wsc *DashboardWebSocketController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /ws/dashboard", wsc.handleWebSocket())
}

func (wsc *DashboardWebSocketController) handleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := wsc.service.ParseDay(httpserver.GetQueryParam(r, "date"))
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}

		if !wsc.track() {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		defer wsc.wg.Done()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithCancel(wsc.ctx)
		defer cancel()

		session, err := wsc.service.Open(ctx, day)
		if err != nil {
			slog.Error("opening dashboard session", slog.Any("error", err))
			conn.SetWriteDeadline(time.Now().Add(_writeWait))
			conn.WriteJSON(internal.NewErrorMessage("failed to open dashboard"))
			conn.Close()
			return
		}

		slog.Info("dashboard websocket connected",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("session_id", session.ID()),
			slog.String("date", day.String()))

		errs := make(chan string, _clientBuffer)
		go wsc.readClient(ctx, cancel, conn, session, errs)
		wsc.writeClient(ctx, conn, session, errs)

		session.Close()
		conn.Close()
		slog.Info("dashboard websocket disconnected", slog.String("session_id", session.ID()))
	}
}

// readClient turns client messages into session commands. Replies go through
// errs since only writeClient may write to conn.
func (wsc *DashboardWebSocketController) readClient(
	ctx context.Context,
	cancel context.CancelFunc,
	conn *websocket.Conn,
	session usecases.DashboardSession,
	errs chan<- string,
) {
	defer cancel()

	conn.SetReadLimit(_readLimit)
	conn.SetReadDeadline(time.Now().Add(_pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(_pongWait))
		return nil
	})

	for {
		var msg internal.ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", slog.String("error", err.Error()))
			} else {
				slog.Debug("websocket connection closed", slog.String("error", err.Error()))
			}
			return
		}

		switch msg.Type {
		case internal.MessageTypeSelectDate:
			day, err := wsc.service.ParseDay(msg.Date)
			if err != nil {
				wsc.reply(ctx, errs, "invalid date "+msg.Date)
				continue
			}
			if err := session.SelectDate(ctx, day); err != nil {
				slog.Warn("selecting date", slog.String("session_id", session.ID()), slog.Any("error", err))
				return
			}
		default:
			wsc.reply(ctx, errs, "unknown message type "+msg.Type)
		}
	}
}

func (wsc *DashboardWebSocketController) reply(ctx context.Context, errs chan<- string, message string) {
	select {
	case errs <- message:
	case <-ctx.Done():
	}
}

func (wsc *DashboardWebSocketController) writeClient(
	ctx context.Context,
	conn *websocket.Conn,
	session usecases.DashboardSession,
	errs <-chan string,
) {
	ticker := time.NewTicker(_pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(_writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case snapshot := <-session.Updates():
			view := internal.NewDashboardView(snapshot, wsc.logSize)
			if !wsc.write(conn, internal.NewStateMessage(view)) {
				return
			}
		case message := <-errs:
			if !wsc.write(conn, internal.NewErrorMessage(message)) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(_writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (wsc *DashboardWebSocketController) write(conn *websocket.Conn, message internal.ServerMessage) bool {
	conn.SetWriteDeadline(time.Now().Add(_writeWait))
	if err := conn.WriteJSON(message); err != nil {
		slog.Error("failed to write dashboard message", slog.String("error", err.Error()))
		return false
	}
	return true
}

// track registers a connection unless Shutdown already started.
func (wsc *DashboardWebSocketController) track() bool {
	wsc.mu.Lock()
	defer wsc.mu.Unlock()

	if wsc.closing {
		return false
	}
	wsc.wg.Add(1)
	return true
}

// Shutdown closes every socket and waits for their sessions to end. Sockets
// requested afterwards are refused.
func (wsc *DashboardWebSocketController) Shutdown() {
	slog.Info("shutting down dashboard websocket controller")
	wsc.mu.Lock()
	wsc.closing = true
	wsc.mu.Unlock()

	wsc.cancel()
	wsc.wg.Wait()
}
