package app

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors the engine's capacity counters for scraping. All methods
// are nil-safe so tests can pass a nil collector.
type Metrics struct {
	connections  prometheus.Gauge
	rooms        prometheus.Gauge
	participants prometheus.Gauge
	messages     prometheus.Counter
	signals      prometheus.Counter
	presence     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coordination_connections",
			Help: "Currently registered connections.",
		}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coordination_rooms",
			Help: "Meeting rooms in the coordinator table.",
		}),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coordination_room_participants",
			Help: "Participants across all meeting rooms.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_chat_messages_total",
			Help: "Chat messages fanned out to rooms.",
		}),
		signals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_signals_relayed_total",
			Help: "WebRTC signaling payloads relayed between peers.",
		}),
		presence: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_presence_events_total",
			Help: "Presence transitions broadcast.",
		}),
	}
	reg.MustRegister(m.connections, m.rooms, m.participants, m.messages, m.signals, m.presence)
	return m
}

func (m *Metrics) ConnectionsSet(n int) {
	if m != nil {
		m.connections.Set(float64(n))
	}
}

func (m *Metrics) RoomsSet(n int) {
	if m != nil {
		m.rooms.Set(float64(n))
	}
}

func (m *Metrics) ParticipantsAdd(d int) {
	if m != nil {
		m.participants.Add(float64(d))
	}
}

func (m *Metrics) MessageSent() {
	if m != nil {
		m.messages.Inc()
	}
}

func (m *Metrics) SignalRelayed() {
	if m != nil {
		m.signals.Inc()
	}
}

func (m *Metrics) PresenceEvent() {
	if m != nil {
		m.presence.Inc()
	}
}
