package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records pipeline and dataset measurements. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	computeDuration *prometheus.HistogramVec
	filteredRows    prometheus.Histogram
	loadedRows      prometheus.Gauge
	loadFailures    prometheus.Counter
}

// NewMetrics registers the dashboard metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		computeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_compute_duration_seconds",
			Help:    "Time spent deriving dashboard tables for one window.",
			Buckets: prometheus.DefBuckets,
		}, []string{"table"}),
		filteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_filtered_rows",
			Help:    "Order lines left after applying the date window.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		loadedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dataset_rows_loaded",
			Help: "Order lines held in memory.",
		}),
		loadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dataset_load_failures_total",
			Help: "Failed dataset loads.",
		}),
	}
	reg.MustRegister(m.computeDuration, m.filteredRows, m.loadedRows, m.loadFailures)
	return m
}

// ObserveCompute records how long deriving table took and how many rows the
// window kept.
func (m *Metrics) ObserveCompute(table string, duration time.Duration, rows int) {
	if m == nil {
		return
	}
	if table == "" {
		table = "unknown"
	}
	m.computeDuration.WithLabelValues(table).Observe(duration.Seconds())
	m.filteredRows.Observe(float64(rows))
}

func (m *Metrics) SetLoadedRows(n int) {
	if m == nil {
		return
	}
	m.loadedRows.Set(float64(n))
}

func (m *Metrics) IncLoadFailure() {
	if m == nil {
		return
	}
	m.loadFailures.Inc()
}
