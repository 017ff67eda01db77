package application

import (
	"context"
	"strconv"
	"sync"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// Metric names recorded by MetricsObserver.
const (
	MetricTrials        = "trials_total"
	MetricAgreements    = "agreements_total"
	MetricAgreementRate = "agreement_rate"
	MetricSweeps        = "sweeps_total"
	OperationSweep      = "sweep"
)

var _ ports.SweepObserver = (*MetricsObserver)(nil)

// MetricsObserver forwards sweep progress to a ports.MetricsCollector.
// It is safe for concurrent use and can observe several sweeps at once.
type MetricsObserver struct {
	collector ports.MetricsCollector
	runs      sync.Map // run ID -> map[string]string labels
}

// NewMetricsObserver creates an observer recording into collector.
func NewMetricsObserver(collector ports.MetricsCollector) *MetricsObserver {
	return &MetricsObserver{collector: collector}
}

// SweepStarted implements ports.SweepObserver.
func (m *MetricsObserver) SweepStarted(ctx context.Context, runID string, plan domain.SweepPlan) context.Context {
	m.runs.Store(runID, map[string]string{
		"parameter":    plan.Parameter.String(),
		"distribution": plan.Fixed.Distribution.Kind.String(),
	})
	return ctx
}

// PointCompleted implements ports.SweepObserver.
func (m *MetricsObserver) PointCompleted(_ context.Context, runID string, _ int, point domain.SweepPoint) {
	labels := m.labels(runID)
	m.collector.RecordCounter(MetricTrials, float64(point.Trials), labels)
	m.collector.RecordCounter(MetricAgreements, float64(point.Agreements), labels)
	m.collector.RecordHistogram(MetricAgreementRate, point.AgreementRate, labels)

	gaugeLabels := copyLabels(labels)
	gaugeLabels["value"] = strconv.FormatFloat(point.Value, 'g', -1, 64)
	m.collector.RecordGauge(MetricAgreementRate, point.AgreementRate, gaugeLabels)
}

// SweepFinished implements ports.SweepObserver.
func (m *MetricsObserver) SweepFinished(_ context.Context, runID string, result *domain.SweepResult, err error) {
	labels := copyLabels(m.labels(runID))
	m.runs.Delete(runID)

	if err != nil {
		labels["status"] = "error"
		m.collector.RecordCounter(MetricSweeps, 1, labels)
		return
	}

	labels["status"] = "success"
	m.collector.RecordCounter(MetricSweeps, 1, labels)
	m.collector.RecordLatency(OperationSweep, result.Duration, labels)
}

func (m *MetricsObserver) labels(runID string) map[string]string {
	if v, ok := m.runs.Load(runID); ok {
		return v.(map[string]string)
	}
	return map[string]string{"parameter": "unknown", "distribution": "unknown"}
}

func copyLabels(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
