package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// monitor collects engine metrics on its own registry, exposed at /metrics
// only when --metrics is set.
type monitor struct {
	registry        *prometheus.Registry
	activeRooms     prometheus.Gauge
	openConnections prometheus.Gauge
	commands        *prometheus.CounterVec
}

func newMonitor() *monitor {
	m := &monitor{
		registry: prometheus.NewRegistry(),
		activeRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "guessbox",
			Name:      "active_rooms",
			Help:      "Number of rooms currently held in the registry",
		}),
		openConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "guessbox",
			Name:      "open_connections",
			Help:      "Number of connected websocket clients",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guessbox",
			Name:      "commands_total",
			Help:      "Total number of game operations processed",
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		m.activeRooms,
		m.openConnections,
		m.commands,
	)

	return m
}

func (m *monitor) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
