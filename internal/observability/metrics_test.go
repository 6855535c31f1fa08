package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func TestMetricsObserveCompute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveCompute("report", 25*time.Millisecond, 12)
	m.ObserveCompute("", time.Millisecond, 0)

	durations := gatherMetric(t, reg, "pipeline_compute_duration_seconds")
	require.Len(t, durations.GetMetric(), 2)

	labels := map[string]uint64{}
	for _, metric := range durations.GetMetric() {
		labels[metric.GetLabel()[0].GetValue()] = metric.GetHistogram().GetSampleCount()
	}
	assert.Equal(t, uint64(1), labels["report"])
	assert.Equal(t, uint64(1), labels["unknown"])

	rows := gatherMetric(t, reg, "pipeline_filtered_rows")
	assert.InDelta(t, 12, rows.GetMetric()[0].GetHistogram().GetSampleSum(), 1e-9)
}

func TestMetricsLoadedRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SetLoadedRows(42)
	m.IncLoadFailure()

	assert.InDelta(t, 42, gatherMetric(t, reg, "dataset_rows_loaded").GetMetric()[0].GetGauge().GetValue(), 1e-9)
	assert.InDelta(t, 1, gatherMetric(t, reg, "dataset_load_failures_total").GetMetric()[0].GetCounter().GetValue(), 1e-9)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCompute("report", time.Second, 1)
		m.SetLoadedRows(1)
		m.IncLoadFailure()
	})
	assert.Nil(t, NewMetrics(nil))
}
