package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// for now we will tightly couple to the prometheus collector type
	// the go otel metrics sdk also has a prometheus adapter that implements this interface.
	prometheus.Collector
}

// Metrics is the set of counters the dispatcher records.
type Metrics struct {
	// MessagesCount counts inbound chat messages.
	MessagesCount Observer
	// PresenceCount counts inbound room presence events.
	PresenceCount Observer
	// CommandCount counts command invocations that reached a handler.
	CommandCount Observer
	// DeniedCount counts invocations refused for insufficient privilege.
	DeniedCount Observer
	// UnknownSenderCount counts invocations dropped because the sender was
	// never observed joining.
	UnknownSenderCount Observer
}

func (m Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesCount,
		m.PresenceCount,
		m.CommandCount,
		m.DeniedCount,
		m.UnknownSenderCount,
	}
}
