package domain

import (
	"fmt"
	"math"
	"time"
)

// SweepParameter names the trial argument a sweep varies.
type SweepParameter string

// Sweepable parameters.
const (
	ParamRange     SweepParameter = "range"
	ParamSize      SweepParameter = "size"
	ParamProb      SweepParameter = "prob"
	ParamMean      SweepParameter = "mean"
	ParamSD        SweepParameter = "sd"
	ParamThreshold SweepParameter = "threshold"
	ParamAgents    SweepParameter = "agents"
	ParamCriteria  SweepParameter = "criteria"
)

// SweepParameters lists every sweepable parameter in a stable order.
func SweepParameters() []SweepParameter {
	return []SweepParameter{
		ParamRange, ParamSize, ParamProb, ParamMean, ParamSD,
		ParamThreshold, ParamAgents, ParamCriteria,
	}
}

// ParseSweepParameter converts a name into a SweepParameter.
func ParseSweepParameter(name string) (SweepParameter, error) {
	for _, p := range SweepParameters() {
		if string(p) == name {
			return p, nil
		}
	}
	return "", NewArgumentError("parameter", name, "unknown sweep parameter")
}

// String returns the string representation of the parameter.
func (p SweepParameter) String() string { return string(p) }

// Integral reports whether the parameter only accepts whole numbers.
func (p SweepParameter) Integral() bool {
	switch p {
	case ParamSize, ParamAgents, ParamCriteria:
		return true
	default:
		return false
	}
}

// Kind returns the distribution family the parameter belongs to, or "" for
// parameters that apply to every trial.
func (p SweepParameter) Kind() DistributionKind {
	switch p {
	case ParamRange:
		return KindUniform
	case ParamSize, ParamProb:
		return KindBinomial
	case ParamMean, ParamSD:
		return KindNormal
	default:
		return ""
	}
}

// Apply returns a copy of base with the parameter set to v. It rejects
// values that cannot be represented (fractional values for integral
// parameters, non-finite values) and parameters that do not belong to the
// base distribution. Apply does not validate the resulting parameters.
func (p SweepParameter) Apply(base TrialParams, v float64) (TrialParams, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return TrialParams{}, NewArgumentError(string(p), v, "must be finite")
	}
	if p.Integral() && v != math.Trunc(v) {
		return TrialParams{}, NewArgumentError(string(p), v, "must be a whole number")
	}
	if kind := p.Kind(); kind != "" && kind != base.Distribution.Kind {
		return TrialParams{}, NewArgumentError(string(p), v,
			fmt.Sprintf("does not apply to %s distribution", base.Distribution.Kind))
	}

	out := base
	switch p {
	case ParamRange:
		out.Distribution.Range = v
	case ParamSize:
		out.Distribution.Size = int(v)
	case ParamProb:
		out.Distribution.Prob = v
	case ParamMean:
		out.Distribution.Mean = v
	case ParamSD:
		out.Distribution.SD = v
	case ParamThreshold:
		out.Threshold = v
	case ParamAgents:
		out.Agents = int(v)
	case ParamCriteria:
		out.Criteria = int(v)
	default:
		return TrialParams{}, NewArgumentError("parameter", string(p), "unknown sweep parameter")
	}
	return out, nil
}

// SweepPoint is the agreement tally at one value of the swept parameter.
type SweepPoint struct {
	// Value is the swept parameter value.
	Value float64 `json:"value"`

	// Trials is the number of trials run at this point.
	Trials int `json:"trials"`

	// Agreements counts trials where both methods reached the same verdict.
	Agreements int `json:"agreements"`

	// AgreementRate is Agreements / Trials.
	AgreementRate float64 `json:"agreement_rate"`
}

// NewSweepPoint builds a point from its tally.
func NewSweepPoint(value float64, trials, agreements int) SweepPoint {
	var rate float64
	if trials > 0 {
		rate = float64(agreements) / float64(trials)
	}
	return SweepPoint{Value: value, Trials: trials, Agreements: agreements, AgreementRate: rate}
}

// SweepResult is the ordered outcome of a Monte Carlo sweep. Points follow
// the order of the swept values.
type SweepResult struct {
	// RunID uniquely identifies the sweep run.
	RunID string `json:"run_id"`

	// Name is the optional label of the sweep.
	Name string `json:"name,omitempty"`

	// Parameter is the swept parameter.
	Parameter SweepParameter `json:"parameter"`

	// Fixed holds the arguments shared by every point before substitution.
	Fixed TrialParams `json:"fixed"`

	// Seed is the root seed of the random streams.
	Seed uint64 `json:"seed"`

	// Points holds one entry per swept value.
	Points []SweepPoint `json:"points"`

	// Duration is the wall time of the sweep.
	Duration time.Duration `json:"duration_ns"`
}

// Rates returns the agreement rates in point order.
func (r *SweepResult) Rates() []float64 {
	rates := make([]float64, len(r.Points))
	for i, p := range r.Points {
		rates[i] = p.AgreementRate
	}
	return rates
}

// SweepPlan describes a Monte Carlo sweep: which parameter to vary, the
// values to visit in order, how many trials to run per value, and the
// arguments shared by every point.
type SweepPlan struct {
	// Name is an optional label carried into the result.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Parameter is the swept argument.
	Parameter SweepParameter `json:"parameter" yaml:"parameter"`

	// Values are visited in order; the result has one point per value.
	Values []float64 `json:"values" yaml:"values"`

	// TrialsPerPoint is the number of independent trials at each value.
	TrialsPerPoint int `json:"trials_per_point" yaml:"trials_per_point"`

	// Fixed holds every argument not being swept.
	Fixed TrialParams `json:"fixed" yaml:"fixed"`

	// Seed roots the random streams of the sweep.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// PointParams returns the trial parameters of every point, validating each
// one. The first invalid point aborts with an error naming its index and
// value, so a sweep never runs with a partially valid plan.
func (p SweepPlan) PointParams() ([]TrialParams, error) {
	if _, err := ParseSweepParameter(string(p.Parameter)); err != nil {
		return nil, err
	}
	if len(p.Values) == 0 {
		return nil, NewArgumentError("values", 0, "at least one sweep value is required")
	}
	if p.TrialsPerPoint < 1 {
		return nil, NewArgumentError("trials_per_point", p.TrialsPerPoint, "must be positive")
	}

	points := make([]TrialParams, len(p.Values))
	for i, v := range p.Values {
		params, err := p.Parameter.Apply(p.Fixed, v)
		if err == nil {
			err = params.Validate()
		}
		if err != nil {
			return nil, fmt.Errorf("sweep point %d (%s=%g): %w", i, p.Parameter, v, err)
		}
		points[i] = params
	}
	return points, nil
}
