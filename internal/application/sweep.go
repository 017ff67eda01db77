package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// DefaultShardSize is the number of trials one worker runs on a single
// random stream. It is fixed so that a seed reproduces the same result for
// any worker count.
const DefaultShardSize = 1024

// ErrNilFactory is returned when a sweep is constructed without a
// generator factory.
var ErrNilFactory = errors.New("generator factory cannot be nil")

// MonteCarloSweep repeats agreement trials at every value of a swept
// parameter and reports the empirical agreement rate per value.
//
// Trials of one point are split into shards of a fixed size; shards of all
// points run on a bounded worker pool. Each shard owns a generator created
// from (seed, point, shard), so no random stream is shared between workers
// and the tally depends only on the plan.
type MonteCarloSweep struct {
	factory   ports.GeneratorFactory
	workers   int
	shardSize int
	logger    *slog.Logger
	observers []ports.SweepObserver
	newRunID  func() string
}

// SweepOption configures a MonteCarloSweep.
type SweepOption func(*MonteCarloSweep)

// WithWorkers bounds the number of shards running concurrently.
// Values below 1 select runtime.NumCPU().
func WithWorkers(n int) SweepOption {
	return func(s *MonteCarloSweep) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		s.workers = n
	}
}

// WithShardSize overrides DefaultShardSize. Values below 1 are ignored.
func WithShardSize(n int) SweepOption {
	return func(s *MonteCarloSweep) {
		if n > 0 {
			s.shardSize = n
		}
	}
}

// WithLogger sets the logger used for sweep progress.
func WithLogger(logger *slog.Logger) SweepOption {
	return func(s *MonteCarloSweep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers an observer notified of sweep progress.
func WithObserver(o ports.SweepObserver) SweepOption {
	return func(s *MonteCarloSweep) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithRunIDFunc overrides how run IDs are generated.
func WithRunIDFunc(fn func() string) SweepOption {
	return func(s *MonteCarloSweep) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}

// NewMonteCarloSweep creates a sweep drawing beliefs from generators built
// by factory.
func NewMonteCarloSweep(factory ports.GeneratorFactory, opts ...SweepOption) (*MonteCarloSweep, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	s := &MonteCarloSweep{
		factory:   factory,
		workers:   runtime.NumCPU(),
		shardSize: DefaultShardSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// shard is a contiguous block of trials of one point on one random stream.
type shard struct {
	point  int
	index  int
	trials int
}

// Run executes the plan and returns one point per swept value, in the order
// of plan.Values.
//
// Every point is validated before any trial runs; an invalid value aborts
// the sweep with an error wrapping domain.ErrInvalidArgument. A failing
// trial or a cancelled context aborts the whole sweep and no partial result
// is returned.
func (s *MonteCarloSweep) Run(ctx context.Context, plan domain.SweepPlan) (*domain.SweepResult, error) {
	points, err := plan.PointParams()
	if err != nil {
		return nil, fmt.Errorf("invalid sweep plan: %w", err)
	}

	runID := s.newRunID()
	for _, o := range s.observers {
		ctx = o.SweepStarted(ctx, runID, plan)
	}

	s.logger.InfoContext(ctx, "sweep started",
		"run_id", runID,
		"name", plan.Name,
		"parameter", plan.Parameter.String(),
		"points", len(points),
		"trials_per_point", plan.TrialsPerPoint,
		"seed", plan.Seed,
		"workers", s.workers,
	)

	start := time.Now()
	result, err := s.execute(ctx, runID, plan, points)
	if err != nil {
		s.logger.ErrorContext(ctx, "sweep failed", "run_id", runID, "error", err)
		for _, o := range s.observers {
			o.SweepFinished(ctx, runID, nil, err)
		}
		return nil, err
	}
	result.Duration = time.Since(start)

	s.logger.InfoContext(ctx, "sweep finished",
		"run_id", runID,
		"duration", result.Duration,
	)
	for _, o := range s.observers {
		o.SweepFinished(ctx, runID, result, nil)
	}
	return result, nil
}

// execute runs every shard of every point on the worker pool.
func (s *MonteCarloSweep) execute(
	ctx context.Context,
	runID string,
	plan domain.SweepPlan,
	points []domain.TrialParams,
) (*domain.SweepResult, error) {
	agreements := make([]atomic.Int64, len(points))
	pending := make([]atomic.Int64, len(points))

	shards := s.shards(len(points), plan.TrialsPerPoint)
	for _, sh := range shards {
		pending[sh.point].Add(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, sh := range shards {
		g.Go(func() error {
			trial, err := NewAgreementTrial(s.factory(plan.Seed, streamID(sh.point, sh.index)))
			if err != nil {
				return err
			}

			agreed, err := trial.Tally(gctx, points[sh.point], sh.trials)
			if err != nil {
				return fmt.Errorf("sweep point %d (%s=%g) shard %d: %w",
					sh.point, plan.Parameter, plan.Values[sh.point], sh.index, err)
			}
			agreements[sh.point].Add(int64(agreed))

			if pending[sh.point].Add(-1) == 0 {
				point := domain.NewSweepPoint(plan.Values[sh.point], plan.TrialsPerPoint,
					int(agreements[sh.point].Load()))
				s.logger.DebugContext(gctx, "sweep point completed",
					"run_id", runID,
					"index", sh.point,
					"value", point.Value,
					"agreement_rate", point.AgreementRate,
				)
				for _, o := range s.observers {
					o.PointCompleted(gctx, runID, sh.point, point)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.SweepResult{
		RunID:     runID,
		Name:      plan.Name,
		Parameter: plan.Parameter,
		Fixed:     plan.Fixed,
		Seed:      plan.Seed,
		Points:    make([]domain.SweepPoint, len(points)),
	}
	for i := range points {
		result.Points[i] = domain.NewSweepPoint(plan.Values[i], plan.TrialsPerPoint, int(agreements[i].Load()))
	}
	return result, nil
}

// shards splits every point's trials into blocks of at most s.shardSize.
func (s *MonteCarloSweep) shards(points, trialsPerPoint int) []shard {
	perPoint := (trialsPerPoint + s.shardSize - 1) / s.shardSize
	out := make([]shard, 0, points*perPoint)
	for p := 0; p < points; p++ {
		remaining := trialsPerPoint
		for i := 0; remaining > 0; i++ {
			n := min(remaining, s.shardSize)
			out = append(out, shard{point: p, index: i, trials: n})
			remaining -= n
		}
	}
	return out
}

// streamID derives a distinct random stream for each (point, shard) pair.
func streamID(point, shard int) uint64 {
	return uint64(point)<<32 | uint64(shard)
}
