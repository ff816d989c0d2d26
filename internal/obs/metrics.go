package obs

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// AttendanceEvents counts recorded clock events by type and source.
	AttendanceEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_events_total",
			Help: "Attendance events recorded.",
		},
		[]string{"type", "source"},
	)

	// InvitationTransitions counts invitation state changes.
	InvitationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invitation_transitions_total",
			Help: "Invitation status transitions.",
		},
		[]string{"status"},
	)
)

// Init registers metrics in the default registry.  Safe to call twice.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, AttendanceEvents, InvitationTransitions)
	})
}

// Handler exposes the default registry for /metrics.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// Instrument records request count, latency and in-flight gauge.  The route
// template (c.Path) is used as the path label to keep cardinality bounded.
func Instrument() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpInFlight.Inc()
			defer httpInFlight.Dec()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method
			httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(method, path, status).Inc()
			return nil
		}
	}
}

// RequestLogger writes one JSON line per request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			res := c.Response()
			LogJSON(map[string]any{
				"level":       "info",
				"msg":         "http_request",
				"request_id":  res.Header().Get(echo.HeaderXRequestID),
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"status":      res.Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   c.RealIP(),
			})
			return nil
		}
	}
}
