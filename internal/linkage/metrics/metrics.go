package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes recorded on RunsTotal.
const (
	OutcomeApplied   = "applied"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// Metrics provides observability for linkage runs.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	FactsRead        prometheus.Gauge
	InvalidFacts     prometheus.Gauge
	LinkedSets       prometheus.Gauge
	PlanInstructions prometheus.Gauge
	RowsUpdated      prometheus.Counter
	SideEffectErrors *prometheus.CounterVec
	LastSuccess      prometheus.Gauge
}

// New registers all linkage metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all linkage metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cpi_linkage_runs_total",
			Help: "Linkage runs by outcome",
		}, []string{"outcome"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cpi_linkage_stage_duration_seconds",
			Help:    "Duration of each linkage pipeline stage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"stage"}),
		FactsRead: f.NewGauge(prometheus.GaugeOpts{
			Name: "cpi_linkage_facts_read",
			Help: "Mapping facts read by the last run",
		}),
		InvalidFacts: f.NewGauge(prometheus.GaugeOpts{
			Name: "cpi_linkage_invalid_facts",
			Help: "Mapping facts skipped as invalid by the last run",
		}),
		LinkedSets: f.NewGauge(prometheus.GaugeOpts{
			Name: "cpi_linkage_linked_sets",
			Help: "Linked sets produced by the last run",
		}),
		PlanInstructions: f.NewGauge(prometheus.GaugeOpts{
			Name: "cpi_linkage_plan_instructions",
			Help: "Instructions in the last plan",
		}),
		RowsUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "cpi_linkage_rows_updated_total",
			Help: "Participant rows whose alias value changed",
		}),
		SideEffectErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cpi_linkage_side_effect_errors_total",
			Help: "Failed post-apply side effects by kind",
		}, []string{"kind"}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "cpi_linkage_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

// ObserveStage records the duration of a stage.
// Call with time.Now() at the start of the stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// IncrementRun records a finished run.
func (m *Metrics) IncrementRun(outcome string) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

// IncrementSideEffectError records a failed snapshot upload or graph export.
func (m *Metrics) IncrementSideEffectError(kind string) {
	m.SideEffectErrors.WithLabelValues(kind).Inc()
}

// RecordResolution sets the per-run gauges.
func (m *Metrics) RecordResolution(factsRead, invalid, sets, instructions int) {
	m.FactsRead.Set(float64(factsRead))
	m.InvalidFacts.Set(float64(invalid))
	m.LinkedSets.Set(float64(sets))
	m.PlanInstructions.Set(float64(instructions))
}

// RecordSuccess marks a successful run at now.
func (m *Metrics) RecordSuccess(now time.Time, rowsUpdated int) {
	m.RowsUpdated.Add(float64(rowsUpdated))
	m.LastSuccess.Set(float64(now.Unix()))
}
