package httpserver

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// httpMetrics are the request instruments shared by every server in the process.
type httpMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

var (
	metricsMu   sync.Mutex
	instruments *httpMetrics

	// dates, uuids and numeric ids collapse to _id to keep endpoint cardinality bounded
	idSegmentRegex = regexp.MustCompile(`/([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|\d{4}-\d{2}-\d{2}|\d+)(/|$)`)
)

func ResetMetricsForTesting() {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	instruments = nil
}

func IsMetricsInitialized() bool {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	return instruments != nil
}

func metricName(key string) string {
	return fmt.Sprintf("%s.%s", "catfeeder_server", key)
}

func loadHTTPMetrics() *httpMetrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if instruments != nil {
		return instruments
	}

	meter := otel.GetMeterProvider().Meter("catfeeder-server")
	m := &httpMetrics{}

	var err error
	m.duration, err = meter.Float64Histogram(
		metricName("http.request.duration.seconds"),
		metric.WithDescription("catfeeder_server time to answer dashboard and health requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		panic(err)
	}

	m.total, err = meter.Int64Counter(
		metricName("http.requests.total"),
		metric.WithDescription("catfeeder_server requests served, websocket upgrades included"),
	)
	if err != nil {
		panic(err)
	}

	m.active, err = meter.Int64UpDownCounter(
		metricName("http.requests.active"),
		metric.WithDescription("catfeeder_server requests in flight, open dashboard sockets included"),
	)
	if err != nil {
		panic(err)
	}

	instruments = m
	return m
}

// MetricsMiddleware records request counts and latencies per normalized
// endpoint. Hijacked requests are dashboard sockets: they are counted but not
// timed, since their duration is the socket lifetime.
func MetricsMiddleware() func(http.Handler) http.Handler {
	m := loadHTTPMetrics()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			endpoint := attribute.String("http.endpoint", normalizeEndpoint(r.URL.Path))
			method := attribute.String("http.method", r.Method)
			inFlight := metric.WithAttributes(method, endpoint)

			m.active.Add(ctx, 1, inFlight)
			defer m.active.Add(ctx, -1, inFlight)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			status := wrapped.statusCode
			if wrapped.hijacked {
				status = http.StatusSwitchingProtocols
			}
			done := metric.WithAttributes(method, endpoint, attribute.Int("http.status_code", status))

			m.total.Add(ctx, 1, done)
			if !wrapped.hijacked {
				m.duration.Record(ctx, time.Since(start).Seconds(), done)
			}
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	hijacked   bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
	}

	conn, buf, err := hijacker.Hijack()
	if err == nil {
		rw.hijacked = true
	}
	return conn, buf, err
}

func normalizeEndpoint(path string) string {
	if path == "" || path == "/" {
		return "root"
	}

	normalized := path
	for idSegmentRegex.MatchString(normalized) {
		normalized = idSegmentRegex.ReplaceAllString(normalized, "/_id$2")
	}
	return normalized
}
