package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	eventsIngested *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	dailyDemand    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retailpulse_events_ingested_total",
				Help: "Total number of sales events ingested per backend",
			},
			[]string{"backend", "product"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retailpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		dailyDemand: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retailpulse_demand_units_total",
				Help: "Units sold per product, accumulated from the sales feed",
			},
			[]string{"product"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retailpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEventIngested records a sales event routed to a backend.
func (r *Recorder) RecordEventIngested(backend, productID string) {
	r.eventsIngested.WithLabelValues(backend, productID).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordDailyDemand accumulates sold units for a product.
func (r *Recorder) RecordDailyDemand(productID string, quantity float64) {
	r.dailyDemand.WithLabelValues(productID).Add(quantity)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
