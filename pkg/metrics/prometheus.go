package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds every metric the dispatcher and core emit.
type PrometheusMetrics struct {
	RequestsTotal    *prometheus.CounterVec
	LatencyHistogram *prometheus.HistogramVec

	CheckFailuresTotal *prometheus.CounterVec

	GeneratorRetriesTotal   *prometheus.CounterVec
	GeneratorExhaustedTotal *prometheus.CounterVec

	EnumeratorConsidered prometheus.Counter
	EnumeratorDiscarded  prometheus.Counter
	EnumeratorKept       prometheus.Gauge
}

// NewPrometheusMetrics registers and returns the dispatcher's metric set.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routines_requests_total",
				Help: "Total number of dispatched requests by op and outcome",
			},
			[]string{"op", "status"},
		),

		LatencyHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "routines_request_latency_seconds",
				Help:    "Request latency in seconds, by op",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),

		CheckFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routines_check_failures_total",
				Help: "Total number of Routine Checker failures, by stage",
			},
			[]string{"stage"},
		),

		GeneratorRetriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routines_generator_retries_total",
				Help: "Total number of Input Generator retry attempts, by subroutine",
			},
			[]string{"subroutine"},
		),

		GeneratorExhaustedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routines_generator_exhausted_total",
				Help: "Total number of times a subroutine's generator exhausted its retries",
			},
			[]string{"subroutine"},
		),

		EnumeratorConsidered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "routines_enumerator_considered_total",
				Help: "Total number of candidate routines the Enumerator has deduplicated against",
			},
		),

		EnumeratorDiscarded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "routines_enumerator_discarded_total",
				Help: "Total number of candidate routines discarded as behaviorally equivalent to one already kept",
			},
		),

		EnumeratorKept: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "routines_enumerator_kept",
				Help: "Number of behaviorally distinct routines kept by the most recent enumeration",
			},
		),
	}
}

// RecordRequest records one request's outcome.
func (m *PrometheusMetrics) RecordRequest(op, status string) {
	m.RequestsTotal.WithLabelValues(op, status).Inc()
}

// RecordLatency records one request's latency.
func (m *PrometheusMetrics) RecordLatency(op string, duration time.Duration) {
	m.LatencyHistogram.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordCheckFailure records a Checker failure at the given stage.
func (m *PrometheusMetrics) RecordCheckFailure(stage string) {
	m.CheckFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordGeneratorRetry records one retry attempt by the named subroutine's
// generator.
func (m *PrometheusMetrics) RecordGeneratorRetry(subroutine string) {
	m.GeneratorRetriesTotal.WithLabelValues(subroutine).Inc()
}

// RecordGeneratorExhausted records a generator exhausting all its retries.
func (m *PrometheusMetrics) RecordGeneratorExhausted(subroutine string) {
	m.GeneratorExhaustedTotal.WithLabelValues(subroutine).Inc()
}

// RecordEnumeratorStats updates the enumerator gauges/counters from the
// Enumerator's own running Stats after an enumerate call.
func (m *PrometheusMetrics) RecordEnumeratorStats(considered, discarded, kept int64) {
	m.EnumeratorConsidered.Add(float64(considered))
	m.EnumeratorDiscarded.Add(float64(discarded))
	m.EnumeratorKept.Set(float64(kept))
}
