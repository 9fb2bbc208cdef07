// Package metrics exposes Prometheus instrumentation for the content
// pipeline: run outcomes, per-stage latency, model call volume and audit
// verification rates.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the pipeline's Prometheus collectors. A nil *Metrics is
// safe to call; every method no-ops.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	ModelCalls       *prometheus.CounterVec
	VerificationRate prometheus.Histogram
}

// New registers the pipeline collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentmesh",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by terminal status.",
		}, []string{"status"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contentmesh",
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 12),
		}, []string{"stage"}),
		ModelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentmesh",
			Name:      "model_calls_total",
			Help:      "Model invocations by provider and outcome.",
		}, []string{"provider", "outcome"}),
		VerificationRate: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "contentmesh",
			Name:      "audit_verification_rate",
			Help:      "Audit verification rate per run, in percent.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}
}

// ObserveRun records a terminal run status.
func (m *Metrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

// ObserveStage records one stage execution.
func (m *Metrics) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// ObserveModelCall records one model invocation.
func (m *Metrics) ObserveModelCall(provider string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.ModelCalls.WithLabelValues(provider, outcome).Inc()
}

// ObserveVerificationRate records one audit outcome.
func (m *Metrics) ObserveVerificationRate(rate float64) {
	if m == nil {
		return
	}
	m.VerificationRate.Observe(rate)
}
