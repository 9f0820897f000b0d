package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotifyMetrics records dispatcher outcomes.
type NotifyMetrics struct {
	delivered  *prometheus.CounterVec
	suppressed *prometheus.CounterVec
}

// NewNotifyMetrics registers the dispatcher metrics on the provided registerer.
func NewNotifyMetrics(reg prometheus.Registerer) *NotifyMetrics {
	if reg == nil {
		return &NotifyMetrics{}
	}
	delivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_delivered",
		Help: "Notifications delivered, by kind.",
	}, []string{"kind"})
	suppressed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_suppressed",
		Help: "Notifications suppressed, by reason.",
	}, []string{"reason"})
	reg.MustRegister(delivered, suppressed)
	return &NotifyMetrics{delivered: delivered, suppressed: suppressed}
}

// IncDelivered counts a delivered notification of the given kind.
func (m *NotifyMetrics) IncDelivered(kind string) {
	if m == nil || m.delivered == nil {
		return
	}
	m.delivered.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncSuppressed counts a suppressed notification with the given reason.
func (m *NotifyMetrics) IncSuppressed(reason string) {
	if m == nil || m.suppressed == nil {
		return
	}
	m.suppressed.WithLabelValues(normalizeLabel(reason)).Inc()
}
