// Package observability exposes Prometheus instrumentation for the API
// and the classification worker.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
	classificationsTotal *prometheus.CounterVec
	findingsTotal        *prometheus.CounterVec
	runDuration          prometheus.Histogram
	runErrors            prometheus.Counter
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adpulse_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adpulse_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		classificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adpulse_classifications_total",
			Help: "Entities classified per run, labeled by final decision.",
		}, []string{"decision"}),
		findingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adpulse_findings_total",
			Help: "Findings emitted per run, labeled by type.",
		}, []string{"type"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "adpulse_run_duration_seconds",
			Help:    "Histogram of per-client classification run durations.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		runErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adpulse_run_errors_total",
			Help: "Total per-client run failures.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adpulse_config_cache_hits_total",
			Help: "Engine config cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adpulse_config_cache_misses_total",
			Help: "Engine config cache misses.",
		}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.classificationsTotal,
		m.findingsTotal,
		m.runDuration,
		m.runErrors,
		m.cacheHits,
		m.cacheMisses,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler records request count and duration for a route.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(duration)
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) Classified(decision string) {
	if m == nil {
		return
	}
	m.classificationsTotal.WithLabelValues(decision).Inc()
}

func (m *Metrics) FindingEmitted(findingType string) {
	if m == nil {
		return
	}
	m.findingsTotal.WithLabelValues(findingType).Inc()
}

func (m *Metrics) RunCompleted(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.runDuration.Observe(duration.Seconds())
	if err != nil {
		m.runErrors.Inc()
	}
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}
