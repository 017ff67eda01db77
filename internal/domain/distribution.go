package domain

import (
	"fmt"
	"math"
)

// DistributionKind identifies the family used to draw agents' beliefs.
type DistributionKind string

// Supported belief distributions.
const (
	// KindUniform draws beliefs uniformly on [0.5-Range, 0.5+Range].
	KindUniform DistributionKind = "uniform"

	// KindBinomial draws Binomial(Size, Prob)/Size, so beliefs lie on the
	// grid {0, 1/Size, ..., 1}.
	KindBinomial DistributionKind = "binomial"

	// KindNormal draws Normal(Mean, SD). Draws are not clamped unless Clamp
	// is set.
	KindNormal DistributionKind = "normal"
)

// Default distribution parameters.
const (
	DefaultUniformRange = 0.5
	DefaultBinomialSize = 100
	DefaultBinomialProb = 0.5
	DefaultNormalMean   = 0.5
	DefaultNormalSD     = 0.2
)

// DistributionKinds lists every supported kind in a stable order.
func DistributionKinds() []DistributionKind {
	return []DistributionKind{KindUniform, KindBinomial, KindNormal}
}

// String returns the string representation of the kind.
func (k DistributionKind) String() string { return string(k) }

// ParseDistributionKind converts a tag into a DistributionKind.
// Unknown tags yield ErrInvalidArgument.
func ParseDistributionKind(tag string) (DistributionKind, error) {
	for _, k := range DistributionKinds() {
		if string(k) == tag {
			return k, nil
		}
	}
	return "", NewArgumentError("distribution", tag, "unknown distribution kind")
}

// Distribution is a tagged variant selecting a belief distribution and its
// parameters. Only the fields belonging to Kind are read; use Uniform,
// Binomial, or Normal to build well-formed values.
type Distribution struct {
	// Kind selects the distribution family.
	Kind DistributionKind `json:"kind" yaml:"kind"`

	// Range is the half-width of the uniform interval around 0.5.
	Range float64 `json:"range,omitempty" yaml:"range,omitempty"`

	// Size is the number of Bernoulli trials per binomial draw.
	Size int `json:"size,omitempty" yaml:"size,omitempty"`

	// Prob is the per-trial success probability of a binomial draw.
	Prob float64 `json:"prob,omitempty" yaml:"prob,omitempty"`

	// Mean is the mean of the normal distribution.
	Mean float64 `json:"mean,omitempty" yaml:"mean,omitempty"`

	// SD is the standard deviation of the normal distribution.
	SD float64 `json:"sd,omitempty" yaml:"sd,omitempty"`

	// Clamp restricts normal draws to [0, 1]. It is off by default so that
	// out-of-range draws reach the decision rule unchanged.
	Clamp bool `json:"clamp,omitempty" yaml:"clamp,omitempty"`
}

// Uniform returns a uniform distribution on [0.5-r, 0.5+r].
func Uniform(r float64) Distribution {
	return Distribution{Kind: KindUniform, Range: r}
}

// Binomial returns a binomial-derived distribution with the given number of
// trials and success probability.
func Binomial(size int, prob float64) Distribution {
	return Distribution{Kind: KindBinomial, Size: size, Prob: prob}
}

// Normal returns an unclamped normal distribution.
func Normal(mean, sd float64) Distribution {
	return Distribution{Kind: KindNormal, Mean: mean, SD: sd}
}

// DefaultDistribution returns the defaults for the given kind.
func DefaultDistribution(kind DistributionKind) (Distribution, error) {
	switch kind {
	case KindUniform:
		return Uniform(DefaultUniformRange), nil
	case KindBinomial:
		return Binomial(DefaultBinomialSize, DefaultBinomialProb), nil
	case KindNormal:
		return Normal(DefaultNormalMean, DefaultNormalSD), nil
	default:
		return Distribution{}, NewArgumentError("distribution", kind, "unknown distribution kind")
	}
}

// Validate checks the parameters belonging to d.Kind.
// It returns an error wrapping ErrInvalidArgument describing the first
// violated constraint.
func (d Distribution) Validate() error {
	switch d.Kind {
	case KindUniform:
		if math.IsNaN(d.Range) || math.IsInf(d.Range, 0) || d.Range < 0 {
			return NewArgumentError("range", d.Range, "must be a finite non-negative number")
		}
	case KindBinomial:
		if d.Size < 1 {
			return NewArgumentError("size", d.Size, "must be a positive integer")
		}
		if math.IsNaN(d.Prob) || d.Prob < 0 || d.Prob > 1 {
			return NewArgumentError("prob", d.Prob, "must be within [0, 1]")
		}
	case KindNormal:
		if math.IsNaN(d.Mean) || math.IsInf(d.Mean, 0) {
			return NewArgumentError("mean", d.Mean, "must be finite")
		}
		if math.IsNaN(d.SD) || math.IsInf(d.SD, 0) || d.SD <= 0 {
			return NewArgumentError("sd", d.SD, "must be a finite positive number")
		}
	default:
		return NewArgumentError("distribution", d.Kind, "unknown distribution kind")
	}

	if d.Clamp && d.Kind != KindNormal {
		return NewArgumentError("clamp", d.Clamp, fmt.Sprintf("not supported for %s", d.Kind))
	}
	return nil
}

// String renders the distribution with its active parameters.
func (d Distribution) String() string {
	switch d.Kind {
	case KindUniform:
		return fmt.Sprintf("uniform(range=%g)", d.Range)
	case KindBinomial:
		return fmt.Sprintf("binomial(size=%d, prob=%g)", d.Size, d.Prob)
	case KindNormal:
		if d.Clamp {
			return fmt.Sprintf("normal(mean=%g, sd=%g, clamped)", d.Mean, d.SD)
		}
		return fmt.Sprintf("normal(mean=%g, sd=%g)", d.Mean, d.SD)
	default:
		return fmt.Sprintf("unknown(%q)", string(d.Kind))
	}
}
