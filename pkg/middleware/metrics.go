package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unmatchedRoute = "unmatched"

// requestLabels identify a request series: service, method, route, status.
var requestLabels = []string{"service", "method", "route", "status"}

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "journalist",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by route pattern and status.",
	}, requestLabels)

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "journalist",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, requestLabels)

	responseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "journalist",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "Size of HTTP response bodies.",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"service", "route"})

	requestsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "journalist",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being served.",
	}, []string{"service"})
)

// PrometheusMetrics observes every request under its chi route pattern so
// that /reviews/{id} is one series no matter how many ids are fetched.
// Requests no route matched are labelled "unmatched".
func PrometheusMetrics(serviceName string) func(next http.Handler) http.Handler {
	inFlight := requestsInFlight.WithLabelValues(serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inFlight.Inc()
			defer inFlight.Dec()

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start).Seconds()

			route := matchedRoute(r)
			labels := prometheus.Labels{
				"service": serviceName,
				"method":  r.Method,
				"route":   route,
				"status":  strconv.Itoa(rec.status),
			}
			requestsTotal.With(labels).Inc()
			requestDuration.With(labels).Observe(elapsed)
			responseSize.WithLabelValues(serviceName, route).Observe(float64(rec.bytes))
		})
	}
}

// matchedRoute reads the pattern chi resolved for r once routing finished.
func matchedRoute(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return unmatchedRoute
	}
	return rctx.RoutePattern()
}
