package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRun("completed")
	m.ObserveRun("completed")
	m.ObserveRun("failed_audit")
	m.ObserveStage("synthesis", 1.5)
	m.ObserveModelCall("openai", true)
	m.ObserveModelCall("openai", false)
	m.ObserveVerificationRate(80)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed_audit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelCalls.WithLabelValues("openai", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelCalls.WithLabelValues("openai", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.VerificationRate))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveRun("completed")
		m.ObserveStage("audit", 0.1)
		m.ObserveModelCall("gemini", true)
		m.ObserveVerificationRate(100)
	})
}
