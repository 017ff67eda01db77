package testutils

import (
	"context"
	"sync"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

var _ ports.SweepObserver = (*RecordingObserver)(nil)

// RecordingObserver captures sweep notifications for assertions.
type RecordingObserver struct {
	mu       sync.Mutex
	Started  []domain.SweepPlan
	Points   map[int]domain.SweepPoint
	Results  []*domain.SweepResult
	Errors   []error
	RunIDs   []string
	finished int
}

// NewRecordingObserver creates an empty observer.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{Points: make(map[int]domain.SweepPoint)}
}

// SweepStarted implements ports.SweepObserver.
func (o *RecordingObserver) SweepStarted(ctx context.Context, runID string, plan domain.SweepPlan) context.Context {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Started = append(o.Started, plan)
	o.RunIDs = append(o.RunIDs, runID)
	return ctx
}

// PointCompleted implements ports.SweepObserver.
func (o *RecordingObserver) PointCompleted(_ context.Context, _ string, index int, point domain.SweepPoint) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Points[index] = point
}

// SweepFinished implements ports.SweepObserver.
func (o *RecordingObserver) SweepFinished(_ context.Context, _ string, result *domain.SweepResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished++
	if err != nil {
		o.Errors = append(o.Errors, err)
		return
	}
	o.Results = append(o.Results, result)
}

// Finished returns how many sweeps reported completion.
func (o *RecordingObserver) Finished() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.finished
}
