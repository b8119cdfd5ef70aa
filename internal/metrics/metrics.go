package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nexus_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Connection metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nexus_ws_connections_active",
			Help: "Open WebSocket connections",
		},
	)

	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nexus_ws_connections_total",
			Help: "Total WebSocket connections accepted",
		},
	)

	// Chat metrics
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_events_received_total",
			Help: "Inbound events by name",
		},
		[]string{"event"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_events_dropped_total",
			Help: "Inbound events dropped without effect",
		},
		[]string{"reason"}, // room_not_found, recipient_offline, no_identity, malformed, unknown_event, rate_limited
	)

	MessagesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_messages_routed_total",
			Help: "Messages routed",
		},
		[]string{"kind"}, // "direct" or "room"
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nexus_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	// Delivery metrics
	FramesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nexus_frames_sent_total",
			Help: "Frames queued to clients",
		},
	)

	SlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nexus_slow_clients_evicted_total",
			Help: "Clients dropped because their send buffer was full",
		},
	)
)
