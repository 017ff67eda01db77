package ports

import (
	"context"

	"github.com/ahrav/go-verdict/internal/domain"
)

// SweepObserver receives lifecycle notifications from a Monte Carlo sweep.
// PointCompleted may be called concurrently from several workers, so
// implementations must be safe for concurrent use. Points complete in no
// particular order.
type SweepObserver interface {
	// SweepStarted is called once after the plan has been validated. The
	// returned context is used for the rest of the sweep, which lets
	// tracing observers attach a span.
	SweepStarted(ctx context.Context, runID string, plan domain.SweepPlan) context.Context

	// PointCompleted is called when every trial of a point has finished.
	PointCompleted(ctx context.Context, runID string, index int, point domain.SweepPoint)

	// SweepFinished is called once with the result, or with the error that
	// aborted the sweep. result is nil when err is non-nil.
	SweepFinished(ctx context.Context, runID string, result *domain.SweepResult, err error)
}
