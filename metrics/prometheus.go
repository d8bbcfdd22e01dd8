package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewPromCounter wraps a prometheus counter as an Observer. Labels are
// ignored; use a vec type if a counter ever needs them.
func NewPromCounter(m prometheus.Counter) Observer {
	return &promMetric{
		observe: func(val float64, labels ...string) {
			m.Add(val)
		},
		Collector: m,
	}
}

type promMetric struct {
	observe func(val float64, labels ...string)
	prometheus.Collector
}

func (m *promMetric) Observe(val float64, labels ...string) {
	m.observe(val, labels...)
}
