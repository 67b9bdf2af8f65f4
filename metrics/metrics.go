// Package metrics exposes Prometheus instrumentation for the tracing
// pipeline: id allocation outcomes, sampling decisions, and export volume.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the tracing pipeline.
type Metrics struct {
	IDsAllocated  prometheus.Counter
	IDFailures    *prometheus.CounterVec
	SpansAccepted prometheus.Counter
	SpansRejected prometheus.Counter
	SpansExported prometheus.Counter
	ExportSeconds prometheus.Histogram
}

// New creates and registers all metrics with the provided registry.
func New(reg prometheus.Registerer) *Metrics {
	idsAllocated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracewire_ids_allocated_total",
		Help: "Total span/trace ids successfully allocated",
	})

	idFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracewire_id_failures_total",
		Help: "Total refused id allocations by reason",
	}, []string{"reason"})

	spansAccepted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracewire_spans_accepted_total",
		Help: "Total spans admitted by the sampling filter",
	})

	spansRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracewire_spans_rejected_total",
		Help: "Total spans rejected by the sampling filter",
	})

	spansExported := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracewire_spans_exported_total",
		Help: "Total span log lines written to the sink",
	})

	exportSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracewire_export_duration_seconds",
		Help:    "Time spent rendering and emitting one span",
		Buckets: []float64{.000001, .00001, .0001, .001, .01, .1},
	})

	reg.MustRegister(idsAllocated, idFailures, spansAccepted, spansRejected,
		spansExported, exportSeconds)

	return &Metrics{
		IDsAllocated:  idsAllocated,
		IDFailures:    idFailures,
		SpansAccepted: spansAccepted,
		SpansRejected: spansRejected,
		SpansExported: spansExported,
		ExportSeconds: exportSeconds,
	}
}

// Reason labels for the IDFailures counter.
const (
	ReasonInvalidIdentity   = "invalid_identity"
	ReasonClockRegression   = "clock_regression"
	ReasonSequenceExhausted = "sequence_exhausted"
)
