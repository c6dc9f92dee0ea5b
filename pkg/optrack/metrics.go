package optrack

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "story_sdk_operations_total",
			Help: "Tracked operation invocations by outcome.",
		}, []string{"component", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "story_sdk_operation_duration_seconds",
			Help:    "Tracked operation latency as observed at the SDK boundary.",
			Buckets: prometheus.DefBuckets,
		}, []string{"component", "operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.ops, m.duration)
	}
	return m
}

func (m *metrics) observe(component, op string, elapsed time.Duration, failed bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.ops.WithLabelValues(component, op, outcome).Inc()
	m.duration.WithLabelValues(component, op).Observe(elapsed.Seconds())
}
