package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aisim",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aisim",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	adsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aisim",
			Subsystem: "ads",
			Name:      "generated_total",
			Help:      "Total number of ads generated",
		},
	)

	eventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aisim",
			Subsystem: "analytics",
			Name:      "events_total",
			Help:      "Total number of analytics events tracked",
		},
		[]string{"event_type"},
	)
)

// requestLogger logs every request with its route, status, and latency.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			entry := log.WithFields(logrus.Fields{
				"status":     ww.Status(),
				"method":     r.Method,
				"path":       r.URL.Path,
				"query":      r.URL.RawQuery,
				"ip":         r.RemoteAddr,
				"latency":    time.Since(start).String(),
				"user-agent": r.UserAgent(),
			})

			switch {
			case ww.Status() >= 500:
				entry.Error("Server error")
			case ww.Status() >= 400:
				entry.Warn("Client error")
			default:
				entry.Info("Request completed")
			}
		})
	}
}

// requestMetrics records per-route request counts and latency. The chi route
// pattern keeps label cardinality bounded.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
