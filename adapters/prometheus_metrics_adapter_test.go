package adapters

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return 0
}

func TestPrometheusMetricsAdapter(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewPrometheusMetricsAdapter(reg)
	require.NoError(t, err)

	metrics.EventDispatched(EventNotificationOpened)
	metrics.EventDispatched(EventNotificationOpened)
	metrics.EventDelivered(EventNotificationOpened)
	metrics.EventRejected("bogus", "unknown_event")
	metrics.QueueDepth(5)

	event := map[string]string{"event": "notification_opened"}
	assert.Equal(t, 2.0, gatherValue(t, reg, "pushbridge_events_dispatched_total", event))
	assert.Equal(t, 1.0, gatherValue(t, reg, "pushbridge_events_delivered_total", event))
	assert.Equal(t, 1.0, gatherValue(t, reg, "pushbridge_events_rejected_total", map[string]string{"event": "bogus", "reason": "unknown_event"}))
	assert.Equal(t, 5.0, gatherValue(t, reg, "pushbridge_event_queue_depth", nil))
}

func TestPrometheusMetricsAdapter_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMetricsAdapter(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMetricsAdapter(reg)
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}
