package guard

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts guard decisions.
type Metrics struct {
	Decisions *prometheus.CounterVec
}

// NewMetrics registers the guard collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tripnest",
				Subsystem: "guard",
				Name:      "decisions_total",
				Help:      "Route guard decisions by guarded prefix and outcome.",
			},
			[]string{"prefix", "outcome"},
		),
	}
	reg.MustRegister(m.Decisions)
	return m
}

func (m *Metrics) observe(prefix string, o Outcome) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(prefix, o.String()).Inc()
}
