package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// OrderMetrics tracks order placement outcomes. A nil receiver is a no-op.
type OrderMetrics struct {
	placed     prometheus.Counter
	rejected   *prometheus.CounterVec
	mismatches prometheus.Counter
	value      prometheus.Histogram
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return nil
	}
	m := &OrderMetrics{
		placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders committed.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Orders rolled back, by error code.",
		}, []string{"reason"}),
		mismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total_mismatch_total",
			Help:      "Orders whose declared total differs from the sum of their lines.",
		}),
		value: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_value",
			Help:      "Declared order totals.",
			Buckets:   []float64{10, 25, 50, 100, 200, 500, 1000},
		}),
	}
	reg.MustRegister(m.placed, m.rejected, m.mismatches, m.value)
	return m
}

func (m *OrderMetrics) IncPlaced(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.placed.Inc()
	m.value.Observe(total.InexactFloat64())
}

func (m *OrderMetrics) IncRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *OrderMetrics) IncTotalMismatch() {
	if m == nil {
		return
	}
	m.mismatches.Inc()
}
