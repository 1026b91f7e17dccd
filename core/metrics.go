package core

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector records per-operation request metrics. A nil collector
// is valid and records nothing.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
}

// NewMetricsCollector registers the takeout metrics on registerer.
func NewMetricsCollector(registerer prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "takeout_requests_total",
				Help: "Total number of operation calls by outcome",
			},
			[]string{"method", "operation", "outcome", "status_code"},
		),
		requestDuration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "takeout_request_duration_seconds",
				Help:    "Duration of operation calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "operation"},
		),
		requestsInFlight: promauto.With(registerer).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "takeout_requests_in_flight",
				Help: "Number of operation calls currently in flight",
			},
			[]string{"method", "operation"},
		),
	}
}

// start marks a call in flight and returns the function that records its completion.
func (mc *MetricsCollector) start(op *Operation) func(outcome Outcome, statusCode int) {
	if mc == nil {
		return func(Outcome, int) {}
	}
	method := string(op.Key.Method)
	began := time.Now()
	mc.requestsInFlight.WithLabelValues(method, op.Name).Inc()
	return func(outcome Outcome, statusCode int) {
		mc.requestsInFlight.WithLabelValues(method, op.Name).Dec()
		mc.requestDuration.WithLabelValues(method, op.Name).Observe(time.Since(began).Seconds())
		mc.requestsTotal.WithLabelValues(method, op.Name, outcome.String(), strconv.Itoa(statusCode)).Inc()
	}
}
