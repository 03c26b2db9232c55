package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	applogger "StockCast/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockcast_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method", "status", "class"},
	)

	inFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stockcast_http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		},
		[]string{"route", "method"},
	)

	responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockcast_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{200, 500, 1_000, 2_000, 5_000, 10_000, 50_000, 100_000, 500_000, 1_000_000},
		},
		[]string{"route", "method", "status", "class"},
	)

	metricsOnce sync.Once
)

// Metrics records request counts, latency, and sizes. Labels use the
// URL path, which is safe here because the API surface is a handful of
// fixed routes.
func Metrics(l *applogger.Logger, slowThreshold time.Duration) func(http.Handler) http.Handler {
	metricsOnce.Do(func() {
		prometheus.MustRegister(requestsTotal, requestDuration, inFlight, responseSize)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.URL.Path
			method := r.Method

			inFlight.WithLabelValues(route, method).Inc()
			start := time.Now()

			rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			elapsed := time.Since(start)
			status := strconv.Itoa(rw.status)
			class := statusClass(rw.status)

			requestsTotal.WithLabelValues(route, method, status).Inc()
			requestDuration.WithLabelValues(route, method, status, class).Observe(elapsed.Seconds())
			responseSize.WithLabelValues(route, method, status, class).Observe(float64(rw.written))
			inFlight.WithLabelValues(route, method).Dec()

			logRequestOutcome(l, slowThreshold, route, method, status, elapsed, rw)
		})
	}
}

// logRequestOutcome logs failed requests as errors and requests over
// the slow threshold as warnings. Healthy fast requests stay quiet;
// the access log middleware covers those.
func logRequestOutcome(l *applogger.Logger, slowThreshold time.Duration, route, method, status string, elapsed time.Duration, rw *statusWriter) {
	if l == nil {
		return
	}
	fields := []applogger.Field{
		applogger.String("route", route),
		applogger.String("method", method),
		applogger.String("status", status),
		applogger.Duration("duration_ms", elapsed),
		applogger.Int("bytes", rw.written),
	}
	if rw.status >= 500 {
		l.Error("http request failed", fields...)
		return
	}
	if slowThreshold > 0 && elapsed >= slowThreshold {
		l.Warn("http request slow", fields...)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

func statusClass(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
