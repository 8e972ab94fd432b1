package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the registrar.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	operations      *prometheus.CounterVec
	faculties       prometheus.Gauge
	enrolled        prometheus.Gauge
	graduated       prometheus.Gauge
	stateDuration   *prometheus.HistogramVec
}

// NewMetricsService registers the registrar collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_operations_total",
		Help: "Registry operations by name and outcome",
	}, []string{"operation", "outcome"})

	faculties := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registrar_faculties",
		Help: "Number of faculties in the university",
	})

	enrolled := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registrar_students_enrolled",
		Help: "Number of currently enrolled students",
	})

	graduated := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registrar_students_graduated",
		Help: "Number of archived graduates",
	})

	stateDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "registrar_state_duration_seconds",
		Help:    "Duration of state load/save operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "driver", "outcome"})

	registry.MustRegister(requestDuration, requestTotal, operations, faculties, enrolled, graduated, stateDuration)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		operations:      operations,
		faculties:       faculties,
		enrolled:        enrolled,
		graduated:       graduated,
		stateDuration:   stateDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordOperation counts a registry operation as ok or error.
func (m *MetricsService) RecordOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome(err)).Inc()
}

// SetPopulation publishes the current university size.
func (m *MetricsService) SetPopulation(faculties, enrolled, graduated int) {
	if m == nil {
		return
	}
	m.faculties.Set(float64(faculties))
	m.enrolled.Set(float64(enrolled))
	m.graduated.Set(float64(graduated))
}

// ObserveState records timing for a persistence operation.
func (m *MetricsService) ObserveState(operation, driver string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.stateDuration.WithLabelValues(operation, driver, outcome(err)).Observe(duration.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
