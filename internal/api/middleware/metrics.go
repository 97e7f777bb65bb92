package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status_code"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Number of HTTP requests currently being served.",
	})
)

// MetricsMiddleware labels requests by route pattern, never by raw path, so
// customer ids do not explode label cardinality.
func MetricsMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpRequestsInFlight.Inc()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				httpRequestsInFlight.Dec()
				duration := time.Since(start)
				statusCode := strconv.Itoa(ww.Status())

				routePattern := unmatchedRoute
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					routePattern = rctx.RoutePattern()
				}

				httpRequestsTotal.WithLabelValues(r.Method, routePattern, statusCode).Inc()
				httpRequestDuration.WithLabelValues(r.Method, routePattern, statusCode).Observe(duration.Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
