package domain

import (
	"fmt"
	"math"
)

// TrialParams holds the arguments of one agreement trial.
type TrialParams struct {
	// Agents is the number of agents N. It must be at least 1.
	Agents int `json:"agents" yaml:"agents"`

	// Criteria is the number of necessary criteria K. Zero is allowed.
	Criteria int `json:"criteria" yaml:"criteria"`

	// Distribution selects how beliefs are drawn.
	Distribution Distribution `json:"distribution" yaml:"distribution"`

	// Threshold is the acceptance threshold T within [0, 1].
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// Validate checks every argument of the trial.
// A trial needs at least one agent because the group belief vector is
// undefined without agents.
func (p TrialParams) Validate() error {
	if p.Agents < 1 {
		return NewArgumentError("agents", p.Agents, "must be at least 1")
	}
	if p.Criteria < 0 {
		return NewArgumentError("criteria", p.Criteria, "must be non-negative")
	}
	if err := checkEntries(p.Agents, p.Criteria); err != nil {
		return err
	}
	if err := ValidateThreshold(p.Threshold); err != nil {
		return err
	}
	return p.Distribution.Validate()
}

// ValidateThreshold reports whether t is a usable threshold.
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return NewArgumentError("threshold", t, "must be within [0, 1]")
	}
	return nil
}

// String renders the parameters for logs.
func (p TrialParams) String() string {
	return fmt.Sprintf("agents=%d criteria=%d threshold=%g %s",
		p.Agents, p.Criteria, p.Threshold, p.Distribution)
}

// TrialOutcome records every intermediate result of one agreement trial.
type TrialOutcome struct {
	// IndividualVerdicts holds each agent's verdict in row order.
	IndividualVerdicts []bool `json:"individual_verdicts"`

	// PreferenceVerdict is the unanimity of IndividualVerdicts.
	PreferenceVerdict bool `json:"preference_verdict"`

	// GroupBeliefs is the per-criterion mean of the belief matrix.
	GroupBeliefs []float64 `json:"group_beliefs"`

	// BeliefVerdict is the decision rule applied to GroupBeliefs.
	BeliefVerdict bool `json:"belief_verdict"`
}

// Agreed reports whether both aggregation methods reached the same verdict.
func (o TrialOutcome) Agreed() bool { return o.PreferenceVerdict == o.BeliefVerdict }

// EvaluateAgreement compares preference aggregation with belief aggregation
// on a fixed belief matrix. It is the deterministic core of an agreement
// trial and performs no sampling.
//
// A matrix with no agents yields ErrUndefinedResult; a threshold outside
// [0, 1] yields ErrInvalidArgument.
func EvaluateAgreement(beliefs BeliefMatrix, threshold float64) (TrialOutcome, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return TrialOutcome{}, err
	}

	belief, err := BeliefAggregation{}.Aggregate(beliefs, threshold)
	if err != nil {
		return TrialOutcome{}, err
	}
	preference, err := PreferenceAggregation{}.Aggregate(beliefs, threshold)
	if err != nil {
		return TrialOutcome{}, err
	}

	return TrialOutcome{
		IndividualVerdicts: preference.IndividualVerdicts,
		PreferenceVerdict:  preference.Verdict,
		GroupBeliefs:       belief.GroupBeliefs,
		BeliefVerdict:      belief.Verdict,
	}, nil
}
