package sampling

import (
	"fmt"
	"sync"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

var _ ports.BeliefGenerator = (*FixedGenerator)(nil)

// FixedGenerator replays a fixed sequence of belief matrices, cycling when
// the sequence is exhausted. It bypasses sampling so that agreement trials
// can be evaluated on known beliefs. FixedGenerator is safe for concurrent
// use.
type FixedGenerator struct {
	matrices []domain.BeliefMatrix
	next     int
	mu       sync.Mutex
}

// NewFixedGenerator returns a generator replaying matrices in order.
func NewFixedGenerator(matrices ...domain.BeliefMatrix) (*FixedGenerator, error) {
	if len(matrices) == 0 {
		return nil, domain.NewArgumentError("matrices", 0, "at least one matrix is required")
	}
	return &FixedGenerator{matrices: matrices}, nil
}

// NewFixedGeneratorFromRows builds a single-matrix FixedGenerator.
func NewFixedGeneratorFromRows(rows [][]float64) (*FixedGenerator, error) {
	m, err := domain.BeliefMatrixFromRows(rows)
	if err != nil {
		return nil, err
	}
	return NewFixedGenerator(m)
}

// Generate implements ports.BeliefGenerator. The distribution is ignored;
// the requested dimensions must match the next matrix.
func (g *FixedGenerator) Generate(agents, criteria int, _ domain.Distribution) (domain.BeliefMatrix, error) {
	g.mu.Lock()
	m := g.matrices[g.next]
	g.next = (g.next + 1) % len(g.matrices)
	g.mu.Unlock()

	if m.Rows() != agents || m.Cols() != criteria {
		return domain.BeliefMatrix{}, domain.NewArgumentError("dimensions",
			fmt.Sprintf("%dx%d", agents, criteria),
			fmt.Sprintf("fixed matrix is %dx%d", m.Rows(), m.Cols()))
	}
	return m, nil
}
