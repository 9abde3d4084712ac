package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCall(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveCall("laplace", "ok", 3*time.Millisecond)
	m.ObserveCall("laplace", "ok", time.Millisecond)
	m.ObserveCall("inverse_laplace", "causality_violation", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("laplace", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("inverse_laplace", "causality_violation")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ToolLatency))
}

func TestIncrementDiagnostic(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncrementDiagnostic("overdamped")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues("overdamped")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCall("laplace", "ok", time.Millisecond)
		m.IncrementDiagnostic("degenerate")
	})
}
