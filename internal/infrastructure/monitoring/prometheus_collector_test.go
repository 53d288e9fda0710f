package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusCollector(t *testing.T) {
	collector := NewPrometheusCollector(prometheus.NewRegistry())

	collector.RecordConnected()
	collector.RecordConnected()
	collector.RecordDisconnected()

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.connectionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.connectionsTotal))

	collector.RecordEvent("register")
	collector.RecordEvent("register")
	collector.RecordEvent("message")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.eventsTotal.WithLabelValues("register")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.eventsTotal.WithLabelValues("message")))

	collector.RecordMessage()
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.messagesTotal))

	collector.RecordSignalForwarded("call-offer")
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.signalingForwardedTotal.WithLabelValues("call-offer")))

	collector.RecordRoomJoin("room1")
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.roomJoinsTotal.WithLabelValues("room1")))

	// Histogram observations only need to not panic here.
	collector.ObserveEventDuration(3 * time.Millisecond)
}

func TestPrometheusCollector_IsolatedRegistries(t *testing.T) {
	// Two collectors on separate registries must not collide.
	a := NewPrometheusCollector(prometheus.NewRegistry())
	b := NewPrometheusCollector(prometheus.NewRegistry())

	a.RecordConnected()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.connectionsActive))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.connectionsActive))
}
