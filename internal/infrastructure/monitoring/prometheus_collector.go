package monitoring

import (
	"time"

	"chatrelay/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter

	eventsTotal             *prometheus.CounterVec
	messagesTotal           prometheus.Counter
	signalingForwardedTotal *prometheus.CounterVec
	roomJoinsTotal          *prometheus.CounterVec

	eventHandlingDuration prometheus.Histogram
}

// NewPrometheusCollector registers the coordinator metrics on the given
// registerer. Tests pass a fresh prometheus.NewRegistry to avoid duplicate
// registration on the default one.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatrelay_connections_active",
			Help: "Number of currently open WebSocket connections",
		}),

		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatrelay_connections_total",
			Help: "Total number of WebSocket connections accepted",
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatrelay_events_total",
			Help: "Total number of inbound events processed, by event type",
		}, []string{"type"}),

		messagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatrelay_messages_total",
			Help: "Total number of chat messages fanned out",
		}),

		signalingForwardedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatrelay_signaling_forwarded_total",
			Help: "Total number of call signaling events relayed, by kind",
		}, []string{"type"}),

		roomJoinsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatrelay_room_joins_total",
			Help: "Total number of successful room joins, by room",
		}, []string{"room"}),

		eventHandlingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatrelay_event_handling_duration_seconds",
			Help:    "Time spent handling one inbound event",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

func (p *PrometheusCollector) RecordConnected() {
	p.connectionsActive.Inc()
	p.connectionsTotal.Inc()
}

func (p *PrometheusCollector) RecordDisconnected() {
	p.connectionsActive.Dec()
}

func (p *PrometheusCollector) RecordEvent(eventType string) {
	p.eventsTotal.WithLabelValues(eventType).Inc()
}

func (p *PrometheusCollector) RecordMessage() {
	p.messagesTotal.Inc()
}

func (p *PrometheusCollector) RecordSignalForwarded(eventType string) {
	p.signalingForwardedTotal.WithLabelValues(eventType).Inc()
}

func (p *PrometheusCollector) RecordRoomJoin(room domain.RoomID) {
	p.roomJoinsTotal.WithLabelValues(string(room)).Inc()
}

func (p *PrometheusCollector) ObserveEventDuration(d time.Duration) {
	p.eventHandlingDuration.Observe(d.Seconds())
}
