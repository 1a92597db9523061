package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"house-dashboard/services"
)

const unknownControl = "unknown"

// Metrics owns a private registry so several servers can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	events   *prometheus.CounterVec
	houses   prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"route"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_control_events_total",
			Help: "Control events dispatched, by control and outcome",
		}, []string{"control", "outcome"}),
		houses: f.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_houses",
			Help: "Number of houses in the loaded dataset",
		}),
	}
}

func (m *Metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// observeEvent counts one dispatched event. Controls missing from the table
// share the "unknown" label so clients cannot mint new series.
func (m *Metrics) observeEvent(control string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if errors.Is(err, services.ErrUnknownControl) {
		control = unknownControl
	}
	m.events.WithLabelValues(control, outcome).Inc()
}
