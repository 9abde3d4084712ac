package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the tool server.
type Metrics struct {
	// Tool calls by tool and outcome ("ok" or an error kind)
	ToolCalls *prometheus.CounterVec

	// Tool call latency by tool
	ToolLatency *prometheus.HistogramVec

	// Diagnostics raised by kind
	Diagnostics *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ToolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "laplace_tool_calls_total",
			Help: "Total tool calls by tool and outcome",
		}, []string{"tool", "outcome"}),

		ToolLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "laplace_tool_duration_seconds",
			Help:    "Duration of tool calls including the transform",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
		}, []string{"tool"}),

		Diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "laplace_diagnostics_total",
			Help: "Total diagnostics raised by transforms by kind",
		}, []string{"kind"}),
	}
}

// ObserveCall records one tool call.
func (m *Metrics) ObserveCall(tool, outcome string, d time.Duration) {
	if m != nil {
		m.ToolCalls.WithLabelValues(tool, outcome).Inc()
		m.ToolLatency.WithLabelValues(tool).Observe(d.Seconds())
	}
}

// IncrementDiagnostic records a diagnostic of the given kind.
func (m *Metrics) IncrementDiagnostic(kind string) {
	if m != nil {
		m.Diagnostics.WithLabelValues(kind).Inc()
	}
}
