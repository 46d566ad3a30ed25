package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for scheduling operations.
type SchedulingMetrics struct {
	operationsTotal  *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	slotGeneration   prometheus.Histogram
	slotsReturned    prometheus.Histogram
	txRetries        *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentflow",
			Subsystem: "scheduling",
			Name:      "operations_total",
			Help:      "Scheduling operations by outcome",
		}, []string{"operation", "outcome"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dentflow",
			Subsystem: "scheduling",
			Name:      "operation_duration_seconds",
			Help:      "Latency of transactional scheduling operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		slotGeneration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dentflow",
			Subsystem: "scheduling",
			Name:      "slot_generation_seconds",
			Help:      "Latency of availability queries",
			Buckets:   prometheus.DefBuckets,
		}),
		slotsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dentflow",
			Subsystem: "scheduling",
			Name:      "slots_returned",
			Help:      "Number of slots returned per availability query",
			Buckets:   []float64{0, 1, 5, 10, 20, 40, 80, 160},
		}),
		txRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentflow",
			Subsystem: "scheduling",
			Name:      "transaction_retries_total",
			Help:      "Transactions re-run after a write conflict",
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.operationLatency, m.slotGeneration, m.slotsReturned, m.txRetries)
	return m
}

func (m *SchedulingMetrics) ObserveOperation(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, outcome).Inc()
	m.operationLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *SchedulingMetrics) ObserveSlotQuery(seconds float64, slots int) {
	if m == nil {
		return
	}
	m.slotGeneration.Observe(seconds)
	m.slotsReturned.Observe(float64(slots))
}

func (m *SchedulingMetrics) ObserveTransactionRetry(operation string) {
	if m == nil {
		return
	}
	m.txRetries.WithLabelValues(operation).Inc()
}
