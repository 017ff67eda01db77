// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"github.com/ahrav/go-verdict/internal/domain"
)

// BeliefGenerator produces belief matrices for agreement trials.
// A generator owns its random stream and is not required to be safe for
// concurrent use; callers that run trials in parallel give every worker its
// own generator.
type BeliefGenerator interface {
	// Generate returns an agents x criteria matrix drawn from dist.
	// Every entry is drawn independently. Zero dimensions yield an empty
	// matrix without error; negative dimensions, unknown kinds, and invalid
	// parameters yield an error wrapping domain.ErrInvalidArgument.
	//
	// Example:
	//
	//	m, err := gen.Generate(5, 3, domain.Binomial(100, 0.6))
	//	if err != nil {
	//	    return fmt.Errorf("generate beliefs: %w", err)
	//	}
	Generate(agents, criteria int, dist domain.Distribution) (domain.BeliefMatrix, error)
}

// GeneratorFactory creates an independent generator for one random stream.
// Generators created with the same seed and stream must produce the same
// sequence of matrices; different streams must be statistically
// independent.
type GeneratorFactory func(seed, stream uint64) BeliefGenerator
