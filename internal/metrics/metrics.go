// Package metrics holds the Prometheus collectors exported by the relay.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wirechat"

var (
	// Connections is the number of live WebSocket connections.
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections",
		Help:      "number of live connections",
	})

	// CommandsTotal counts inbound commands by type.
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "inbound commands processed by the dispatcher",
	}, []string{"type"})

	// CommandErrorsTotal counts commands rejected with an error event.
	CommandErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "command_errors_total",
		Help:      "commands answered with an error event",
	}, []string{"code"})

	// EventsDeliveredTotal counts outbound events queued to a connection.
	EventsDeliveredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_delivered_total",
		Help:      "outbound events queued for delivery",
	}, []string{"event"})

	// EventsDroppedTotal counts events dropped because a connection queue was full.
	EventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "outbound events dropped for slow consumers",
	})

	// CollaboratorFailuresTotal counts failed directory and store calls.
	CollaboratorFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collaborator_failures_total",
		Help:      "failed calls to the directory or history store",
	}, []string{"op"})

	registerOnce sync.Once
)

// Register adds every collector to reg. Later calls are no-ops.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			Connections,
			CommandsTotal,
			CommandErrorsTotal,
			EventsDeliveredTotal,
			EventsDroppedTotal,
			CollaboratorFailuresTotal,
		)
	})
}
