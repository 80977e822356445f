package adapters

import "github.com/prometheus/client_golang/prometheus"

// PrometheusMetricsAdapter exports broker activity as Prometheus metrics.
type PrometheusMetricsAdapter struct {
	dispatched *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	delivered  *prometheus.CounterVec
	queueDepth prometheus.Gauge
}

var _ MetricsAdapter = (*PrometheusMetricsAdapter)(nil)

// NewPrometheusMetricsAdapter creates the collectors and registers them with
// reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusMetricsAdapter(reg prometheus.Registerer) (*PrometheusMetricsAdapter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetricsAdapter{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pushbridge",
			Name:      "events_dispatched_total",
			Help:      "Events accepted by the broker.",
		}, []string{"event"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pushbridge",
			Name:      "events_rejected_total",
			Help:      "Dispatches refused because of invalid input.",
		}, []string{"event", "reason"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pushbridge",
			Name:      "events_delivered_total",
			Help:      "Events accepted by the registered consumer.",
		}, []string{"event"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pushbridge",
			Name:      "event_queue_depth",
			Help:      "Events waiting for a consumer or for the ready signal.",
		}),
	}

	for _, c := range []prometheus.Collector{m.dispatched, m.rejected, m.delivered, m.queueDepth} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetricsAdapter) EventDispatched(name EventName) {
	m.dispatched.WithLabelValues(string(name)).Inc()
}

func (m *PrometheusMetricsAdapter) EventRejected(name EventName, reason string) {
	m.rejected.WithLabelValues(string(name), reason).Inc()
}

func (m *PrometheusMetricsAdapter) EventDelivered(name EventName) {
	m.delivered.WithLabelValues(string(name)).Inc()
}

func (m *PrometheusMetricsAdapter) QueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}
