package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsfeed_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsfeed_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	fetchCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsfeed_fetch_cycles_total",
			Help: "Feed fetch cycles by business and outcome",
		},
		[]string{"business", "outcome"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsfeed_fetch_duration_seconds",
			Help:    "Feed fetch latency distribution",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		},
		[]string{"business"},
	)

	recordsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsfeed_records_classified_total",
			Help: "Feed records classified by domain",
		},
		[]string{"domain"},
	)

	callbacksDeduped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opsfeed_callbacks_deduped_total",
			Help: "Callback records collapsed as near-duplicates",
		},
	)

	alertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsfeed_alerts_sent_total",
			Help: "Urgent callback alerts by sink and outcome",
		},
		[]string{"sink", "outcome"},
	)

	readAcks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsfeed_read_acks_total",
			Help: "Remote read acknowledgments by outcome",
		},
		[]string{"outcome"},
	)

	rateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsfeed_rate_limit_rejections_total",
			Help: "Requests rejected by rate limiter",
		},
		[]string{"key"},
	)

	breakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "opsfeed_feed_breaker_state",
			Help: "Feed circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordFetchCycle records one fetch cycle outcome ("ok", "error", "rejected")
func RecordFetchCycle(business, outcome string, duration time.Duration) {
	fetchCycles.WithLabelValues(business, outcome).Inc()
	if outcome == "ok" {
		fetchDuration.WithLabelValues(business).Observe(duration.Seconds())
	}
}

// RecordClassified records classified records per domain
func RecordClassified(domain string, count int) {
	if count > 0 {
		recordsClassified.WithLabelValues(domain).Add(float64(count))
	}
}

// RecordDeduped records collapsed duplicate callbacks
func RecordDeduped(count int) {
	if count > 0 {
		callbacksDeduped.Add(float64(count))
	}
}

// RecordAlert records one alert delivery attempt per sink
func RecordAlert(sink, outcome string) {
	alertsSent.WithLabelValues(sink, outcome).Inc()
}

// RecordReadAck records a remote read-acknowledgment outcome
func RecordReadAck(outcome string) {
	readAcks.WithLabelValues(outcome).Inc()
}

// RecordRateLimitRejection records a rate limit rejection
func RecordRateLimitRejection(key string) {
	rateLimitRejections.WithLabelValues(key).Inc()
}

// SetBreakerState publishes the feed breaker state
func SetBreakerState(state int) {
	breakerState.Set(float64(state))
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records request metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		RecordRequest(r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}
