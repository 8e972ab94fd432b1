package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceRecordsOperations(t *testing.T) {
	m := NewMetricsService()
	m.RecordOperation("enroll_student", nil)
	m.RecordOperation("enroll_student", nil)
	m.RecordOperation("enroll_student", errors.New("conflict"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("enroll_student", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("enroll_student", "error")))
}

func TestMetricsServicePopulationAndHandler(t *testing.T) {
	m := NewMetricsService()
	m.SetPopulation(2, 5, 1)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/faculties", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.faculties))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.enrolled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.graduated))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "registrar_students_enrolled 5")
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/v1/faculties",status="200"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordOperation("save", nil)
		m.SetPopulation(1, 1, 1)
		m.ObserveState("load", "file", time.Second, nil)
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Second)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
