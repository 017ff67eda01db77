package testutils

import (
	"errors"
	"sync/atomic"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// ErrInjected is returned by FailingGenerator.
var ErrInjected = errors.New("injected generator failure")

var _ ports.BeliefGenerator = (*FailingGenerator)(nil)

// FailingGenerator succeeds with a constant matrix for the first After
// calls and fails afterwards.
type FailingGenerator struct {
	After int64
	Value float64
	calls atomic.Int64
}

// Generate implements ports.BeliefGenerator.
func (g *FailingGenerator) Generate(agents, criteria int, _ domain.Distribution) (domain.BeliefMatrix, error) {
	if g.calls.Add(1) > g.After {
		return domain.BeliefMatrix{}, ErrInjected
	}
	return ConstantMatrix(agents, criteria, g.Value), nil
}

// ConstantMatrix returns an agents x criteria matrix filled with v.
// It panics on negative dimensions.
func ConstantMatrix(agents, criteria int, v float64) domain.BeliefMatrix {
	m, err := domain.NewBeliefMatrix(agents, criteria)
	if err != nil {
		panic(err)
	}
	for i := 0; i < agents; i++ {
		for j := 0; j < criteria; j++ {
			m.Set(i, j, v)
		}
	}
	return m
}

// CountingFactory wraps a factory and counts how many generators it built.
type CountingFactory struct {
	Next  ports.GeneratorFactory
	calls atomic.Int64
}

// Factory returns the wrapped ports.GeneratorFactory.
func (c *CountingFactory) Factory() ports.GeneratorFactory {
	return func(seed, stream uint64) ports.BeliefGenerator {
		c.calls.Add(1)
		return c.Next(seed, stream)
	}
}

// Calls returns the number of generators built.
func (c *CountingFactory) Calls() int64 { return c.calls.Load() }
