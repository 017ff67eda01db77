package application

import (
	"fmt"
	"math"

	"github.com/ahrav/go-verdict/internal/domain"
)

// maxSweepPoints caps how many values a single sweep may visit.
const maxSweepPoints = 10000

// StudyConfig defines a set of Monte Carlo sweeps sharing default trial
// arguments. It is the root of a sweep plan file.
type StudyConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across releases.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata contains descriptive information about the study.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Defaults holds the trial arguments every sweep starts from.
	Defaults TrialConfig `yaml:"defaults" validate:"required"`
	// Execution controls trial counts, seeding, and parallelism.
	Execution ExecutionConfig `yaml:"execution"`
	// Sweeps lists the sweeps to run, in order.
	Sweeps []SweepConfig `yaml:"sweeps" validate:"required,min=1,max=100,dive"`
}

// Metadata provides descriptive information about a study.
type Metadata struct {
	// Name is the human-readable identifier of the study.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description explains what the study measures.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are categorical labels for grouping studies.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
}

// ExecutionConfig controls how sweeps are executed.
type ExecutionConfig struct {
	// Workers bounds concurrent shards; zero selects the CPU count.
	Workers int `yaml:"workers" validate:"omitempty,min=1,max=1024"`
	// Trials is the default number of trials per point.
	Trials int `yaml:"trials" validate:"omitempty,min=1,max=100000000"`
	// Seed is the default root seed. When neither the sweep nor the
	// execution block sets one, the loader derives a seed from the
	// configuration content and the sweep ID.
	Seed *uint64 `yaml:"seed"`
}

// DefaultTrialsPerPoint applies when neither a sweep nor the execution
// block sets a trial count.
const DefaultTrialsPerPoint = 1000

// TrialConfig holds optional trial arguments. Unset fields fall back to
// the enclosing defaults.
type TrialConfig struct {
	// Agents is the number of agents N.
	Agents *int `yaml:"agents" validate:"omitempty,min=1"`
	// Criteria is the number of necessary criteria K.
	Criteria *int `yaml:"criteria" validate:"omitempty,min=0"`
	// Threshold is the acceptance threshold T.
	Threshold *float64 `yaml:"threshold" validate:"omitempty,min=0,max=1"`
	// Distribution selects how beliefs are drawn.
	Distribution *DistributionConfig `yaml:"distribution"`
}

// DistributionConfig selects a belief distribution. Parameters left unset
// take the family's defaults.
type DistributionConfig struct {
	// Kind is one of uniform, binomial, normal.
	Kind string `yaml:"kind" validate:"required,distkind"`
	// Range is the uniform half-width around 0.5.
	Range *float64 `yaml:"range" validate:"omitempty,min=0"`
	// Size is the number of binomial trials.
	Size *int `yaml:"size" validate:"omitempty,min=1"`
	// Prob is the binomial success probability.
	Prob *float64 `yaml:"prob" validate:"omitempty,min=0,max=1"`
	// Mean is the normal mean.
	Mean *float64 `yaml:"mean"`
	// SD is the normal standard deviation.
	SD *float64 `yaml:"sd" validate:"omitempty,gt=0"`
	// Clamp restricts normal draws to [0, 1].
	Clamp bool `yaml:"clamp"`
}

// SweepConfig defines one sweep within a study.
type SweepConfig struct {
	// ID uniquely identifies the sweep within the study.
	ID string `yaml:"id" validate:"required,identifier,max=100"`
	// Parameter names the swept trial argument.
	Parameter string `yaml:"parameter" validate:"required,sweepparam"`
	// Values lists the swept values explicitly.
	Values []float64 `yaml:"values" validate:"required_without=Range"`
	// Range generates evenly spaced values as an alternative to Values.
	Range *RangeConfig `yaml:"range" validate:"required_without=Values,excluded_with=Values"`
	// Trials overrides the execution default for this sweep.
	Trials int `yaml:"trials" validate:"omitempty,min=1,max=100000000"`
	// Seed overrides the execution seed for this sweep.
	Seed *uint64 `yaml:"seed"`
	// Overrides replaces default trial arguments for this sweep only.
	Overrides TrialConfig `yaml:"overrides"`
}

// RangeConfig describes the values start, start+step, ... up to and
// including stop.
type RangeConfig struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop" validate:"gtefield=Start"`
	Step  float64 `yaml:"step" validate:"gt=0"`
}

// Expand returns the values described by the range. Values are rounded to
// 12 decimal places so accumulated floating-point error does not leak into
// labels.
func (r RangeConfig) Expand() ([]float64, error) {
	if r.Step <= 0 || math.IsNaN(r.Step) {
		return nil, domain.NewArgumentError("range.step", r.Step, "must be positive")
	}
	if r.Stop < r.Start {
		return nil, domain.NewArgumentError("range.stop", r.Stop, "must not be below start")
	}

	count := int(math.Floor((r.Stop-r.Start)/r.Step+1e-9)) + 1
	if count > maxSweepPoints {
		return nil, domain.NewArgumentError("range", count, fmt.Sprintf("expands to more than %d values", maxSweepPoints))
	}

	values := make([]float64, count)
	for i := range values {
		values[i] = math.Round((r.Start+float64(i)*r.Step)*1e12) / 1e12
	}
	return values, nil
}

// merge returns c with unset fields taken from base.
func (c TrialConfig) merge(base TrialConfig) TrialConfig {
	out := base
	if c.Agents != nil {
		out.Agents = c.Agents
	}
	if c.Criteria != nil {
		out.Criteria = c.Criteria
	}
	if c.Threshold != nil {
		out.Threshold = c.Threshold
	}
	if c.Distribution != nil {
		out.Distribution = c.Distribution
	}
	return out
}

// TrialParams converts the configuration into domain trial parameters.
// Every field must be set after merging with defaults.
func (c TrialConfig) TrialParams() (domain.TrialParams, error) {
	switch {
	case c.Agents == nil:
		return domain.TrialParams{}, domain.NewArgumentError("agents", nil, "must be set")
	case c.Criteria == nil:
		return domain.TrialParams{}, domain.NewArgumentError("criteria", nil, "must be set")
	case c.Threshold == nil:
		return domain.TrialParams{}, domain.NewArgumentError("threshold", nil, "must be set")
	case c.Distribution == nil:
		return domain.TrialParams{}, domain.NewArgumentError("distribution", nil, "must be set")
	}

	dist, err := c.Distribution.Distribution()
	if err != nil {
		return domain.TrialParams{}, err
	}
	return domain.TrialParams{
		Agents:       *c.Agents,
		Criteria:     *c.Criteria,
		Threshold:    *c.Threshold,
		Distribution: dist,
	}, nil
}

// Distribution converts the configuration into a domain.Distribution,
// filling unset parameters with the family defaults.
func (c DistributionConfig) Distribution() (domain.Distribution, error) {
	kind, err := domain.ParseDistributionKind(normalizeName(c.Kind))
	if err != nil {
		return domain.Distribution{}, err
	}
	dist, err := domain.DefaultDistribution(kind)
	if err != nil {
		return domain.Distribution{}, err
	}

	if c.Range != nil {
		dist.Range = *c.Range
	}
	if c.Size != nil {
		dist.Size = *c.Size
	}
	if c.Prob != nil {
		dist.Prob = *c.Prob
	}
	if c.Mean != nil {
		dist.Mean = *c.Mean
	}
	if c.SD != nil {
		dist.SD = *c.SD
	}
	dist.Clamp = c.Clamp
	return dist, nil
}

// Plan converts one sweep of the study into a domain.SweepPlan using the
// study defaults and execution settings. seed is used when neither the
// sweep nor the execution block sets one.
func (c *StudyConfig) Plan(sweep SweepConfig, seed uint64) (domain.SweepPlan, error) {
	param, err := domain.ParseSweepParameter(normalizeName(sweep.Parameter))
	if err != nil {
		return domain.SweepPlan{}, err
	}

	fixed, err := sweep.Overrides.merge(c.Defaults).TrialParams()
	if err != nil {
		return domain.SweepPlan{}, fmt.Errorf("sweep %s: %w", sweep.ID, err)
	}

	values := sweep.Values
	if sweep.Range != nil {
		if values, err = sweep.Range.Expand(); err != nil {
			return domain.SweepPlan{}, fmt.Errorf("sweep %s: %w", sweep.ID, err)
		}
	}

	trials := DefaultTrialsPerPoint
	if c.Execution.Trials > 0 {
		trials = c.Execution.Trials
	}
	if sweep.Trials > 0 {
		trials = sweep.Trials
	}

	switch {
	case sweep.Seed != nil:
		seed = *sweep.Seed
	case c.Execution.Seed != nil:
		seed = *c.Execution.Seed
	}

	plan := domain.SweepPlan{
		Name:           sweep.ID,
		Parameter:      param,
		Values:         append([]float64(nil), values...),
		TrialsPerPoint: trials,
		Fixed:          fixed,
		Seed:           seed,
	}
	if _, err := plan.PointParams(); err != nil {
		return domain.SweepPlan{}, fmt.Errorf("sweep %s: %w", sweep.ID, err)
	}
	return plan, nil
}

// Sweep returns the sweep with the given ID.
func (c *StudyConfig) Sweep(id string) (SweepConfig, bool) {
	for _, s := range c.Sweeps {
		if s.ID == id {
			return s, true
		}
	}
	return SweepConfig{}, false
}
