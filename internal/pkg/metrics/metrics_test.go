package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
)

func TestMetrics_Refresh(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveRefresh(2*time.Second, nil)
	m.ObserveRefresh(time.Second, errors.New("boom"))
	m.IncFetchError("schedule")
	m.IncFetchError("schedule")
	m.IncFetchError("logs")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchErrors.WithLabelValues("schedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchErrors.WithLabelValues("logs")))

	loaded := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	m.SetSnapshotLoadedAt(loaded)
	assert.Equal(t, float64(loaded.Unix()), testutil.ToFloat64(m.snapshotLoadedAt))
}

func TestMetrics_SetClassified(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetClassified(map[attendance.StatusLabel]int64{attendance.StatusLate: 3})
	assert.Equal(t, 3.0, testutil.ToFloat64(m.classifiedEvents.WithLabelValues("Late")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.classifiedEvents.WithLabelValues("On Time")))

	m.SetClassified(map[attendance.StatusLabel]int64{attendance.StatusOnTime: 1})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.classifiedEvents.WithLabelValues("Late")))
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/schedules/{employeeID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schedules/e1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/api/v1/schedules/{employeeID}", "404")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "attendance_engine_refresh_failures_total")
}
