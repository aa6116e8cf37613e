// Package metrics exposes Prometheus collectors for the HTTP layer and
// the journey coordinator.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by route pattern, method, and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convoy_http_requests_total",
		Help: "HTTP requests processed, by route, method, and status.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "convoy_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// JourneyRecomputes counts journey route recomputation passes.
	JourneyRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "convoy_journey_recomputes_total",
		Help: "Journey route recomputation passes.",
	})

	// RouteErrors counts per-member route computation failures.
	RouteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "convoy_journey_route_errors_total",
		Help: "Per-member route computation failures.",
	})

	// ActiveJourneys tracks currently active journey sessions.
	ActiveJourneys = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "convoy_journeys_active",
		Help: "Currently active journey sessions.",
	})

	// RealtimeClients tracks connected realtime feed subscribers.
	RealtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "convoy_realtime_clients",
		Help: "Connected realtime feed subscribers.",
	})
)

// Instrument records request counts and latency. It reads the chi route
// pattern after the handler runs so the label stays low-cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
