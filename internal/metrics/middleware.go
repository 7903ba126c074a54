package metrics

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP Prometheus metrics. The tool label is empty outside /tools/{name}.
var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "tool"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "tool", "status"},
	)
)

// Middleware records HTTP request duration and count. Tool names outside
// knownTools are reported as "unknown" so arbitrary paths cannot grow the label set.
func Middleware(knownTools ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route, tool := labelsFor(r, knownTools)
			httpRequestDuration.WithLabelValues(r.Method, route, tool).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, route, tool, strconv.Itoa(status)).Inc()
		})
	}
}

// labelsFor derives the route pattern and tool name after routing ran.
func labelsFor(r *http.Request, knownTools []string) (route, tool string) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unknown", ""
	}
	route = rctx.RoutePattern()

	name := rctx.URLParam("name")
	if name == "" {
		return route, ""
	}
	if slices.Contains(knownTools, name) {
		return route, name
	}
	return route, "unknown"
}
