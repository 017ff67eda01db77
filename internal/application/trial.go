// Package application provides the orchestration of agreement trials and
// Monte Carlo sweeps, along with loading sweep plans from configuration.
package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// ErrNilGenerator is returned when a trial is constructed without a
// belief generator.
var ErrNilGenerator = errors.New("belief generator cannot be nil")

// AgreementTrial runs single comparisons of preference aggregation and
// belief aggregation on freshly generated beliefs.
// An AgreementTrial is as safe for concurrent use as its generator.
type AgreementTrial struct {
	generator ports.BeliefGenerator
}

// NewAgreementTrial creates a trial drawing beliefs from generator.
func NewAgreementTrial(generator ports.BeliefGenerator) (*AgreementTrial, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	return &AgreementTrial{generator: generator}, nil
}

// Outcome generates a belief matrix for params and evaluates both
// aggregation methods on it. Invalid parameters yield an error wrapping
// domain.ErrInvalidArgument. Nothing from the trial outlives the call.
func (t *AgreementTrial) Outcome(ctx context.Context, params domain.TrialParams) (domain.TrialOutcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.TrialOutcome{}, err
	}
	if err := params.Validate(); err != nil {
		return domain.TrialOutcome{}, err
	}

	beliefs, err := t.generator.Generate(params.Agents, params.Criteria, params.Distribution)
	if err != nil {
		return domain.TrialOutcome{}, fmt.Errorf("failed to generate beliefs: %w", err)
	}

	outcome, err := domain.EvaluateAgreement(beliefs, params.Threshold)
	if err != nil {
		return domain.TrialOutcome{}, fmt.Errorf("failed to evaluate agreement: %w", err)
	}
	return outcome, nil
}

// Run reports whether preference aggregation and belief aggregation agree
// on one freshly generated belief matrix.
func (t *AgreementTrial) Run(ctx context.Context, params domain.TrialParams) (bool, error) {
	outcome, err := t.Outcome(ctx, params)
	if err != nil {
		return false, err
	}
	return outcome.Agreed(), nil
}

// Tally runs n trials with params and returns how many agreed.
// It stops at the first error.
func (t *AgreementTrial) Tally(ctx context.Context, params domain.TrialParams, n int) (int, error) {
	agreements := 0
	for i := 0; i < n; i++ {
		agreed, err := t.Run(ctx, params)
		if err != nil {
			return agreements, fmt.Errorf("trial %d: %w", i, err)
		}
		if agreed {
			agreements++
		}
	}
	return agreements, nil
}
