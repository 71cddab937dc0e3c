// Package metrics exports relay counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "signal_relay"

// Metrics implements ws.Recorder on its own registry.
type Metrics struct {
	reg *prometheus.Registry

	rooms      prometheus.Gauge
	conns      prometheus.Gauge
	connsTotal prometheus.Counter
	relayed    prometheus.Counter
	dropped    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms currently held by the registry, empty ones included.",
		}),
		conns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Connections currently joined to a room.",
		}),
		connsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Connections joined since start.",
		}),
		relayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Frames queued for a peer.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Frames not delivered to a peer, by reason.",
		}, []string{"reason"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rooms, m.conns, m.connsTotal, m.relayed, m.dropped,
	)
	return m
}

func (m *Metrics) RoomOpened() { m.rooms.Inc() }
func (m *Metrics) RoomClosed() { m.rooms.Dec() }

func (m *Metrics) ConnJoined() {
	m.conns.Inc()
	m.connsTotal.Inc()
}

func (m *Metrics) ConnLeft() { m.conns.Dec() }

func (m *Metrics) Relayed() { m.relayed.Inc() }

func (m *Metrics) Dropped(reason string) { m.dropped.WithLabelValues(reason).Inc() }

// Handler serves the registry at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
