package httpapi

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"catfeeder-server/internal/feeder/domain"
	"catfeeder-server/internal/feeder/httpapi/internal"
	"catfeeder-server/internal/feeder/usecases"
	"catfeeder-server/internal/infra/httpserver"

	"go.opentelemetry.io/otel/attribute"
)

const (
	loadDashboardErrMessage = "failed to load dashboard"
	invalidDateErrMessage   = "invalid date, expected YYYY-MM-DD"
)

//go:embed templates/*.html
var templatesFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))

type DashboardControllerOpts struct {
	LogSize int
}

func NewDashboardController(service usecases.DashboardService, opts DashboardControllerOpts) *DashboardController {
	logSize := opts.LogSize
	if logSize <= 0 {
		logSize = internal.DefaultLogSize
	}

	return &DashboardController{
		service: service,
		logSize: logSize,
	}
}

var _ httpserver.Controller = &DashboardController{}

type DashboardController struct {
	service usecases.DashboardService
	logSize int
}

func (c *DashboardController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /{$}", c.page())
	router.Handle("GET /v1/dashboard", c.snapshot())
}

// page renders the dashboard server side; the embedded script then keeps it
// live over the websocket.
func (c *DashboardController) page() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, status := c.load(r)
		if status != http.StatusOK {
			http.Error(w, http.StatusText(status), status)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := dashboardTemplate.Execute(w, view); err != nil {
			slog.Error("rendering dashboard", slog.Any("error", err))
		}
	}
}

func (c *DashboardController) snapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, status := c.load(r)
		switch status {
		case http.StatusOK:
			httpserver.ReplyJSONResponse(w, http.StatusOK, view)
		case http.StatusBadRequest:
			httpserver.ReplyWithError(w, status, invalidDateErrMessage)
		default:
			httpserver.ReplyWithError(w, status, loadDashboardErrMessage)
		}
	}
}

// load answers with the empty view when the query fails, matching what a
// live session shows in that case.
func (c *DashboardController) load(r *http.Request) (internal.DashboardView, int) {
	span := httpserver.GetSpanFromContext(r)

	day, err := c.service.ParseDay(httpserver.GetQueryParam(r, "date"))
	if err != nil {
		return internal.DashboardView{}, http.StatusBadRequest
	}
	span.SetAttributes(attribute.String("dashboard.date", day.String()))

	snapshot, err := c.service.Load(r.Context(), day)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDay) {
			return internal.DashboardView{}, http.StatusBadRequest
		}
		slog.Error("loading dashboard", slog.String("date", day.String()), slog.Any("error", err))
	}
	if snapshot.SelectedDate.IsZero() {
		snapshot.SelectedDate = day
	}

	return internal.NewDashboardView(snapshot, c.logSize), http.StatusOK
}
