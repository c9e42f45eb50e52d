// Package iometrics collects metrics of a run and saves them in the
// prometheus text exposition format.
package iometrics

import (
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics of one run. They live in a private registry, so every run
// starts from zero.
type Metrics struct {
	reg *prometheus.Registry

	// Processed sources by status ("ok" or "failed").
	Sources *prometheus.CounterVec

	// SourceDuration of processing per source.
	SourceDuration prometheus.Histogram

	// Rows of the source tables by stage.
	Rows *prometheus.CounterVec

	// Observations in the combined table.
	Observations prometheus.Gauge

	// Scores is the number of aggregated score rows.
	Scores prometheus.Gauge
}

// New creates Metrics of a run.
func New(runID string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	labels := prometheus.Labels{"run_id": runID}

	return &Metrics{
		reg: reg,
		Sources: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "crba_sources_total",
			Help:        "Processed sources by status",
			ConstLabels: labels,
		}, []string{"status"}),

		SourceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:        "crba_source_duration_seconds",
			Help:        "Duration of processing of one source",
			ConstLabels: labels,
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		Rows: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "crba_rows_total",
			Help:        "Rows of source tables by pipeline stage",
			ConstLabels: labels,
		}, []string{"stage"}),

		Observations: f.NewGauge(prometheus.GaugeOpts{
			Name:        "crba_observations",
			Help:        "Observations in the combined table",
			ConstLabels: labels,
		}),

		Scores: f.NewGauge(prometheus.GaugeOpts{
			Name:        "crba_aggregated_scores",
			Help:        "Rows of the aggregated score table",
			ConstLabels: labels,
		}),
	}
}

// ObserveSource records the outcome of one source.
func (m *Metrics) ObserveSource(status string, d time.Duration) {
	if m != nil {
		m.Sources.WithLabelValues(status).Inc()
		m.SourceDuration.Observe(d.Seconds())
	}
}

// AddRows adds the number of rows seen at a stage.
func (m *Metrics) AddRows(stage string, n int) {
	if m != nil && n > 0 {
		m.Rows.WithLabelValues(stage).Add(float64(n))
	}
}

// SetTotals records the sizes of the final tables.
func (m *Metrics) SetTotals(observations, scores int) {
	if m != nil {
		m.Observations.Set(float64(observations))
		m.Scores.Set(float64(scores))
	}
}

// Write saves metrics to path.
func (m *Metrics) Write(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return WriteError(filepath.Clean(path), err)
	}
	return nil
}
