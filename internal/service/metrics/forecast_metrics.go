package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ForecastMetrics exposes forecasting and replenishment counters on the
// shared /metrics endpoint.
type ForecastMetrics struct {
	forecastLatency  *prometheus.HistogramVec
	forecastsTotal   *prometheus.CounterVec
	forecastErrors   *prometheus.CounterVec
	markdownTriggers *prometheus.CounterVec
	thresholdRecalcs prometheus.Counter
	signalReadings   *prometheus.CounterVec
}

var (
	forecastMetricsOnce sync.Once
	forecastMetrics     *ForecastMetrics
)

// NewForecastMetrics returns the process-wide metrics set. promauto
// registration panics on duplicates, so construction is guarded.
func NewForecastMetrics() *ForecastMetrics {
	forecastMetricsOnce.Do(func() {
		forecastMetrics = &ForecastMetrics{
			forecastLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "retailpulse",
				Subsystem: "forecast",
				Name:      "latency_seconds",
				Help:      "Forecast generation latency by method",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			forecastsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "retailpulse",
				Subsystem: "forecast",
				Name:      "generated_total",
				Help:      "Forecasts generated by method",
			}, []string{"method"}),
			forecastErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "retailpulse",
				Subsystem: "forecast",
				Name:      "errors_total",
				Help:      "Forecast failures by kind",
			}, []string{"kind"}),
			markdownTriggers: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "retailpulse",
				Subsystem: "markdown",
				Name:      "triggers_total",
				Help:      "Markdown trigger evaluations by outcome",
			}, []string{"outcome"}),
			thresholdRecalcs: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "retailpulse",
				Subsystem: "threshold",
				Name:      "recalculations_total",
				Help:      "Threshold recalculation runs",
			}),
			signalReadings: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "retailpulse",
				Subsystem: "signals",
				Name:      "readings_total",
				Help:      "Signal readings ingested by source",
			}, []string{"source"}),
		}
	})
	return forecastMetrics
}

func (m *ForecastMetrics) ObserveForecast(method string, seconds float64) {
	m.forecastLatency.WithLabelValues(method).Observe(seconds)
	m.forecastsTotal.WithLabelValues(method).Inc()
}

func (m *ForecastMetrics) RecordForecastError(kind string) {
	m.forecastErrors.WithLabelValues(kind).Inc()
}

func (m *ForecastMetrics) RecordMarkdown(outcome string) {
	m.markdownTriggers.WithLabelValues(outcome).Inc()
}

func (m *ForecastMetrics) RecordThresholdRecalc() {
	m.thresholdRecalcs.Inc()
}

func (m *ForecastMetrics) RecordSignalReading(source string) {
	m.signalReadings.WithLabelValues(source).Inc()
}
