package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	require.NotNil(t, m)

	m.SpansAccepted.Inc()
	m.SpansAccepted.Inc()
	m.SpansRejected.Inc()
	m.IDFailures.WithLabelValues(ReasonSequenceExhausted).Add(3)

	require.Equal(t, float64(2), testutil.ToFloat64(m.SpansAccepted))
	require.Equal(t, float64(1), testutil.ToFloat64(m.SpansRejected))
	require.Equal(t, float64(3),
		testutil.ToFloat64(m.IDFailures.WithLabelValues(ReasonSequenceExhausted)))
}

func TestRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	// Vec families register on first access.
	m.IDFailures.WithLabelValues(ReasonClockRegression).Add(0)
	m.SpansExported.Inc()
	m.ExportSeconds.Observe(0.0001)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}

	require.True(t, names["tracewire_ids_allocated_total"])
	require.True(t, names["tracewire_id_failures_total"])
	require.True(t, names["tracewire_spans_accepted_total"])
	require.True(t, names["tracewire_spans_rejected_total"])
	require.True(t, names["tracewire_spans_exported_total"])
	require.True(t, names["tracewire_export_duration_seconds"])
}
