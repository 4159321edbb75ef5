package travelsdk

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts API calls by operation and outcome.
type Metrics struct {
	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the SDK collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tripnest",
				Subsystem: "backend",
				Name:      "calls_total",
				Help:      "Backend API calls by operation and outcome kind.",
			},
			[]string{"op", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tripnest",
				Subsystem: "backend",
				Name:      "call_duration_seconds",
				Help:      "Backend API call latency.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.Calls, m.Duration)
	return m
}

func (m *Metrics) observe(op, outcome string, secs float64) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(op, outcome).Inc()
	m.Duration.WithLabelValues(op).Observe(secs)
}
