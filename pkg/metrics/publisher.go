package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublisherMetrics records outbox publisher batches and per-event outcomes.
type PublisherMetrics struct {
	batchDuration prometheus.Histogram
	published     *prometheus.CounterVec
	failed        *prometheus.CounterVec
}

func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return nil
	}
	m := &PublisherMetrics{
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_batch_duration_seconds",
			Help:      "Duration of outbox publish batches.",
			Buckets:   prometheus.DefBuckets,
		}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events delivered to the broker.",
		}, []string{"event_type"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_failed_total",
			Help:      "Outbox publish attempts that failed.",
		}, []string{"event_type"}),
	}
	reg.MustRegister(m.batchDuration, m.published, m.failed)
	return m
}

func (m *PublisherMetrics) ObserveBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
}

func (m *PublisherMetrics) IncPublished(eventType string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *PublisherMetrics) IncFailed(eventType string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}
