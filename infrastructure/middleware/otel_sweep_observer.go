package middleware

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// tracerName identifies spans created by OTelSweepObserver.
const tracerName = "monte-carlo-sweep"

var _ ports.SweepObserver = (*OTelSweepObserver)(nil)

// OTelSweepObserver implements observability for sweeps using OpenTelemetry
// tracing. It opens one span per sweep, records an event for every
// completed point, and ends the span with the sweep's outcome.
type OTelSweepObserver struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewOTelSweepObserver creates a sweep observer using tp. A nil tp selects
// the global tracer provider.
func NewOTelSweepObserver(tp trace.TracerProvider) *OTelSweepObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelSweepObserver{
		tracer: tp.Tracer(tracerName),
		spans:  make(map[string]trace.Span),
	}
}

// SweepStarted implements ports.SweepObserver. It starts the sweep span
// and returns a context carrying it, so trial work nests beneath it.
func (o *OTelSweepObserver) SweepStarted(ctx context.Context, runID string, plan domain.SweepPlan) context.Context {
	ctx, span := o.tracer.Start(ctx, "MonteCarloSweep.Run", trace.WithAttributes(
		attribute.String("sweep.run_id", runID),
		attribute.String("sweep.name", plan.Name),
		attribute.String("sweep.parameter", plan.Parameter.String()),
		attribute.Int("sweep.points", len(plan.Values)),
		attribute.Int("sweep.trials_per_point", plan.TrialsPerPoint),
		attribute.String("sweep.seed", strconv.FormatUint(plan.Seed, 10)),
		attribute.Int("trial.agents", plan.Fixed.Agents),
		attribute.Int("trial.criteria", plan.Fixed.Criteria),
		attribute.Float64("trial.threshold", plan.Fixed.Threshold),
		attribute.String("trial.distribution", plan.Fixed.Distribution.String()),
	))

	o.mu.Lock()
	o.spans[runID] = span
	o.mu.Unlock()
	return ctx
}

// PointCompleted implements ports.SweepObserver.
func (o *OTelSweepObserver) PointCompleted(_ context.Context, runID string, index int, point domain.SweepPoint) {
	span, ok := o.span(runID, false)
	if !ok {
		return
	}
	span.AddEvent("sweep.point_completed", trace.WithAttributes(
		attribute.Int("point.index", index),
		attribute.Float64("point.value", point.Value),
		attribute.Int("point.trials", point.Trials),
		attribute.Int("point.agreements", point.Agreements),
		attribute.Float64("point.agreement_rate", point.AgreementRate),
	))
}

// SweepFinished implements ports.SweepObserver. It ends the sweep span.
func (o *OTelSweepObserver) SweepFinished(_ context.Context, runID string, result *domain.SweepResult, err error) {
	span, ok := o.span(runID, true)
	if !ok {
		return
	}
	defer span.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(attribute.Int64("sweep.duration_ms", result.Duration.Milliseconds()))
	span.SetStatus(codes.Ok, "sweep completed")
}

// span looks up the span of runID, removing it when remove is set.
func (o *OTelSweepObserver) span(runID string, remove bool) (trace.Span, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	span, ok := o.spans[runID]
	if ok && remove {
		delete(o.spans, runID)
	}
	return span, ok
}
