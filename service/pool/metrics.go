package pool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	persists   *prometheus.CounterVec
	reserves   prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boostlend",
			Subsystem: "pool",
			Name:      "operations_total",
			Help:      "Protocol operations by name and result.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "boostlend",
			Subsystem: "pool",
			Name:      "operation_duration_seconds",
			Help:      "Time spent executing and persisting an operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		persists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boostlend",
			Subsystem: "pool",
			Name:      "persist_total",
			Help:      "Change set writes by result.",
		}, []string{"result"}),
		reserves: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "boostlend",
			Subsystem: "pool",
			Name:      "reserves",
			Help:      "Reserves loaded in memory.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.operations, m.duration, m.persists, m.reserves)
	}
	return m
}

func (m *metrics) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	m.operations.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *metrics) persisted(err error) {
	if err != nil {
		m.persists.WithLabelValues("error").Inc()
		return
	}
	m.persists.WithLabelValues("ok").Inc()
}
