// Package middleware provides cross-cutting concerns for sweep execution:
// metrics export and tracing.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-verdict/internal/ports"
)

// namespace prefixes every exported metric.
const namespace = "verdict"

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It exports trial counts, agreement rates, and sweep durations so long
// sweeps can be watched while they run.
type PrometheusMetrics struct {
	trials           *prometheus.CounterVec
	agreements       *prometheus.CounterVec
	agreementRate    *prometheus.GaugeVec
	rateDistribution *prometheus.HistogramVec
	sweeps           *prometheus.CounterVec
	sweepLatency     *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
	otherObserved    *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics with reg. A nil reg selects the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	sweepLabels := []string{"parameter", "distribution"}

	return &PrometheusMetrics{
		// Per-point tallies.
		trials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trials_total",
				Help:      "Total number of agreement trials run.",
			},
			sweepLabels,
		),
		agreements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agreements_total",
				Help:      "Trials in which preference and belief aggregation reached the same verdict.",
			},
			sweepLabels,
		),
		agreementRate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "agreement_rate",
				Help:      "Empirical agreement rate at the last completed point for each swept value.",
			},
			[]string{"parameter", "distribution", "value"},
		),
		rateDistribution: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "agreement_rate_distribution",
				Help:      "Distribution of per-point agreement rates.",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
			sweepLabels,
		),

		// Per-sweep metrics.
		sweeps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweeps_total",
				Help:      "Total number of sweeps by outcome.",
			},
			[]string{"parameter", "distribution", "status"},
		),
		sweepLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Wall time of completed sweeps.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"operation", "parameter", "distribution"},
		),

		// Fallbacks for metrics without a dedicated vector.
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of other recorded operations.",
			},
			[]string{"metric"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "system_state",
				Help:      "Other recorded state values.",
			},
			[]string{"metric"},
		),
		otherObserved: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "other_observations",
				Help:      "Other recorded distributions.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
	}
}

// label returns labels[key], or "unknown" when it is missing or empty.
func label(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.sweepLatency.WithLabelValues(
		operation,
		label(labels, "parameter"),
		label(labels, "distribution"),
	).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	parameter := label(labels, "parameter")
	distribution := label(labels, "distribution")

	switch metric {
	case "trials_total":
		pm.trials.WithLabelValues(parameter, distribution).Add(value)
	case "agreements_total":
		pm.agreements.WithLabelValues(parameter, distribution).Add(value)
	case "sweeps_total":
		pm.sweeps.WithLabelValues(parameter, distribution, label(labels, "status")).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "agreement_rate":
		pm.agreementRate.WithLabelValues(
			label(labels, "parameter"),
			label(labels, "distribution"),
			label(labels, "value"),
		).Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Agreement rates have a dedicated
// histogram; other metrics share other_observations, keyed by name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	if metric == "agreement_rate" {
		pm.rateDistribution.WithLabelValues(
			label(labels, "parameter"),
			label(labels, "distribution"),
		).Observe(value)
		return
	}
	pm.otherObserved.WithLabelValues(metric).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
