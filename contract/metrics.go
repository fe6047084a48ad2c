package contract

import (
	"github.com/prometheus/client_golang/prometheus"

	"okinoko_gov/sdk"
)

// Metrics counts what the runtime does. All vectors are safe to use unregistered.
type Metrics struct {
	Calls      *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	Events     *prometheus.CounterVec
	Closed     *prometheus.CounterVec
	Executions *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governance",
			Name:      "calls_total",
			Help:      "Calls applied to the governance runtime by operation.",
		}, []string{"op"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governance",
			Name:      "call_failures_total",
			Help:      "Calls that returned an error, by operation and error class.",
		}, []string{"op", "class"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governance",
			Name:      "events_total",
			Help:      "Committed events by kind.",
		}, []string{"kind"}),
		Closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governance",
			Name:      "proposals_closed_total",
			Help:      "Closed proposals by outcome.",
		}, []string{"outcome"}),
		Executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governance",
			Name:      "action_executions_total",
			Help:      "Bundled actions executed after a pass, by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Calls, m.Failures, m.Events, m.Closed, m.Executions)
	}
	return m
}

// observeEvents counts committed events, closes and executions from the event stream so
// nothing inside a rolled back call is ever counted.
func (m *Metrics) observeEvents(events []sdk.Event) {
	for _, e := range events {
		m.Events.WithLabelValues(e.Kind).Inc()
		switch e.Kind {
		case EventProposalPassed:
			m.Closed.WithLabelValues("passed").Inc()
		case EventProposalRefused:
			m.Closed.WithLabelValues("refused").Inc()
		case EventProposalFinalized:
			if e.Get("ok") == "true" {
				m.Executions.WithLabelValues("ok").Inc()
			} else {
				m.Executions.WithLabelValues("failed").Inc()
			}
		}
	}
}
