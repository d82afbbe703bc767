package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
)

const namespace = "attendance_engine"

type Metrics struct {
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	refreshDuration   prometheus.Histogram
	refreshFailures   prometheus.Counter
	fetchErrors       *prometheus.CounterVec
	classifiedEvents  *prometheus.GaugeVec
	snapshotLoadedAt  prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics registers every collector on reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Histogram of snapshot refresh durations.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		refreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_failures_total",
			Help:      "Total refreshes that did not publish a snapshot.",
		}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Total failed source reads by kind (employees, schedule, logs, store).",
		}, []string{"kind"}),
		classifiedEvents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "classified_events",
			Help:      "Classified events of the current snapshot by status.",
		}, []string{"status"}),
		snapshotLoadedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_loaded_timestamp_seconds",
			Help:      "Unix time the current snapshot was loaded.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.refreshDuration,
		m.refreshFailures,
		m.fetchErrors,
		m.classifiedEvents,
		m.snapshotLoadedAt,
	)

	for _, l := range attendance.AllStatusLabels() {
		m.classifiedEvents.WithLabelValues(string(l)).Set(0)
	}

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

// Flush keeps SSE streaming working through the recorder.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request count and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRefresh implements the ingestion recorder.
func (m *Metrics) ObserveRefresh(took time.Duration, err error) {
	m.refreshDuration.Observe(took.Seconds())
	if err != nil {
		m.refreshFailures.Inc()
	}
}

func (m *Metrics) IncFetchError(kind string) {
	m.fetchErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetSnapshotLoadedAt(t time.Time) {
	m.snapshotLoadedAt.Set(float64(t.Unix()))
}

// SetClassified replaces the per-status gauge with the counts of the latest snapshot.
func (m *Metrics) SetClassified(counts map[attendance.StatusLabel]int64) {
	for _, l := range attendance.AllStatusLabels() {
		m.classifiedEvents.WithLabelValues(string(l)).Set(float64(counts[l]))
	}
}
