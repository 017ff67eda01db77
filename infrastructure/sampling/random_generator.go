// Package sampling provides belief generators that implement
// ports.BeliefGenerator for the agreement simulation.
package sampling

import (
	"math/rand/v2"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

var _ ports.BeliefGenerator = (*RandomGenerator)(nil)

// RandomGenerator draws belief matrices from a private pseudo-random
// stream. Two generators built with the same seed and stream produce the
// same matrices, which makes sweeps reproducible.
//
// A RandomGenerator is not safe for concurrent use; give every goroutine
// its own instance.
type RandomGenerator struct {
	rng *rand.Rand
}

// NewRandomGenerator returns a generator backed by a PCG stream.
func NewRandomGenerator(seed, stream uint64) *RandomGenerator {
	return NewRandomGeneratorFromSource(rand.NewPCG(seed, stream))
}

// NewRandomGeneratorFromSource returns a generator drawing from src.
func NewRandomGeneratorFromSource(src rand.Source) *RandomGenerator {
	return &RandomGenerator{rng: rand.New(src)}
}

// NewFactory returns a ports.GeneratorFactory producing PCG-backed
// generators.
func NewFactory() ports.GeneratorFactory {
	return func(seed, stream uint64) ports.BeliefGenerator {
		return NewRandomGenerator(seed, stream)
	}
}

// Generate implements ports.BeliefGenerator. Entries are filled row-major,
// one independent draw per (agent, criterion) pair.
func (g *RandomGenerator) Generate(
	agents, criteria int,
	dist domain.Distribution,
) (domain.BeliefMatrix, error) {
	if err := dist.Validate(); err != nil {
		return domain.BeliefMatrix{}, err
	}
	m, err := domain.NewBeliefMatrix(agents, criteria)
	if err != nil {
		return domain.BeliefMatrix{}, err
	}

	draw := g.sampler(dist)
	for i := 0; i < agents; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] = draw()
		}
	}
	return m, nil
}

// sampler returns the draw function for a validated distribution.
func (g *RandomGenerator) sampler(dist domain.Distribution) func() float64 {
	switch dist.Kind {
	case domain.KindUniform:
		lo, width := 0.5-dist.Range, 2*dist.Range
		return func() float64 { return lo + width*g.rng.Float64() }
	case domain.KindBinomial:
		size := float64(dist.Size)
		return func() float64 { return float64(g.binomial(dist.Size, dist.Prob)) / size }
	case domain.KindNormal:
		return func() float64 {
			v := dist.Mean + dist.SD*g.rng.NormFloat64()
			if dist.Clamp {
				v = min(max(v, 0), 1)
			}
			return v
		}
	default:
		// Unreachable after Validate.
		panic("sampling: unhandled distribution kind " + string(dist.Kind))
	}
}

// binomial counts successes in n Bernoulli(p) trials.
func (g *RandomGenerator) binomial(n int, p float64) int {
	switch p {
	case 0:
		return 0
	case 1:
		return n
	}
	successes := 0
	for range n {
		if g.rng.Float64() < p {
			successes++
		}
	}
	return successes
}
