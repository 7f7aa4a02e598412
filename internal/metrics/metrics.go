// Package metrics exposes Prometheus collectors for the analysis service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scamwatch/sentinel/internal/fraud"
	"github.com/scamwatch/sentinel/internal/models"
)

// Batch item outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeInvalidChannel = "invalid_channel"
	OutcomeFailed         = "failed"
)

var (
	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_analyses_total",
			Help: "Total number of completed analyses",
		},
		[]string{"channel", "severity", "label"},
	)

	batchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_batch_items_total",
			Help: "Total number of batch items by outcome",
		},
		[]string{"outcome"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveAnalysis counts one finished analysis.
func ObserveAnalysis(channel models.Channel, res models.AnalysisResult) {
	analysesTotal.WithLabelValues(string(channel), string(res.Severity), string(res.Label)).Inc()
}

// ObserveBatch counts the outcome of every entry. Successful entries are
// also counted as analyses; channels is indexed like entries and may be
// shorter when the item could not be decoded.
func ObserveBatch(entries []models.BatchEntry, channels []models.Channel) {
	for i, e := range entries {
		switch {
		case e.AnalysisResult != nil:
			batchItemsTotal.WithLabelValues(OutcomeOK).Inc()
			ch := models.Channel("unknown")
			if i < len(channels) {
				ch = channels[i]
			}
			ObserveAnalysis(ch, *e.AnalysisResult)
		case e.Error == fraud.ItemErrInvalidChannel:
			batchItemsTotal.WithLabelValues(OutcomeInvalidChannel).Inc()
		default:
			batchItemsTotal.WithLabelValues(OutcomeFailed).Inc()
		}
	}
}

// Middleware records request counts and latency keyed by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "not_found"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
