package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusExporter exports permission store metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	storeOperations *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	entries         *prometheus.GaugeVec
}

// NewPrometheusExporter creates an exporter backed by its own registry,
// so several exporters can coexist in one process (tests, repeated opens).
func NewPrometheusExporter() *PrometheusExporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusExporter{
		registry: reg,
		storeOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_store_operations_total",
				Help: "Total number of permission store operations",
			},
			[]string{"op"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_store_errors_total",
				Help: "Total number of failed permission store operations",
			},
			[]string{"op"},
		),
		storeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "permission_store_operation_duration_seconds",
				Help:    "Duration of permission store operations in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"op"},
		),
		entries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "permission_entries",
				Help: "Number of stored permission entries by decision, as of the last full read",
			},
			[]string{"decision"},
		),
	}
}

// Registry returns the registry holding the exporter's metrics.
func (e *PrometheusExporter) Registry() *prometheus.Registry {
	return e.registry
}

// RecordOperation records a store operation.
func (e *PrometheusExporter) RecordOperation(op string) {
	e.storeOperations.WithLabelValues(op).Inc()
}

// RecordDuration records the duration of a store operation.
func (e *PrometheusExporter) RecordDuration(op string, durationSeconds float64) {
	e.storeDuration.WithLabelValues(op).Observe(durationSeconds)
}

// RecordError records a failed store operation.
func (e *PrometheusExporter) RecordError(op string) {
	e.storeErrors.WithLabelValues(op).Inc()
}

// SetEntries sets the per-decision entry gauge.
func (e *PrometheusExporter) SetEntries(counts map[string]int) {
	e.entries.Reset()
	for decision, n := range counts {
		e.entries.WithLabelValues(decision).Set(float64(n))
	}
}

// WriteTextfile writes every metric to path in the text exposition format
// read by the node exporter textfile collector.
func (e *PrometheusExporter) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, e.registry)
}
