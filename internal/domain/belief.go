package domain

import "fmt"

// MaxBeliefEntries bounds agents*criteria for a single matrix.
const MaxBeliefEntries = 1 << 27

// BeliefMatrix holds one belief vector per agent: Rows() agents by Cols()
// criteria. Entry (i, j) is agent i's subjective probability that criterion
// j is satisfied. Values are stored row-major and are not restricted to
// [0, 1].
//
// A BeliefMatrix is created fresh for each trial and is not safe for
// concurrent mutation.
type BeliefMatrix struct {
	rows int
	cols int
	data []float64
}

// NewBeliefMatrix returns a zeroed matrix with the given dimensions.
// It returns an error wrapping ErrInvalidArgument if either dimension is
// negative or the matrix would hold more than MaxBeliefEntries entries.
// Zero dimensions produce an empty matrix.
func NewBeliefMatrix(agents, criteria int) (BeliefMatrix, error) {
	if agents < 0 {
		return BeliefMatrix{}, NewArgumentError("agents", agents, "must be non-negative")
	}
	if criteria < 0 {
		return BeliefMatrix{}, NewArgumentError("criteria", criteria, "must be non-negative")
	}
	if err := checkEntries(agents, criteria); err != nil {
		return BeliefMatrix{}, err
	}
	return BeliefMatrix{
		rows: agents,
		cols: criteria,
		data: make([]float64, agents*criteria),
	}, nil
}

// checkEntries rejects dimensions whose product exceeds MaxBeliefEntries.
// The division form cannot overflow.
func checkEntries(agents, criteria int) error {
	if criteria != 0 && agents > MaxBeliefEntries/criteria {
		return NewArgumentError("dimensions", fmt.Sprintf("%dx%d", agents, criteria),
			fmt.Sprintf("more than %d belief entries", MaxBeliefEntries))
	}
	return nil
}

// BeliefMatrixFromRows copies rows into a new matrix. Every row must have the
// same length; the first row fixes the criterion count.
func BeliefMatrixFromRows(rows [][]float64) (BeliefMatrix, error) {
	if len(rows) == 0 {
		return BeliefMatrix{}, nil
	}
	cols := len(rows[0])
	m := BeliefMatrix{rows: len(rows), cols: cols, data: make([]float64, 0, len(rows)*cols)}
	for i, row := range rows {
		if len(row) != cols {
			return BeliefMatrix{}, NewArgumentError(
				fmt.Sprintf("rows[%d]", i), len(row), fmt.Sprintf("expected %d criteria", cols))
		}
		m.data = append(m.data, row...)
	}
	return m, nil
}

// Rows returns the number of agents.
func (m BeliefMatrix) Rows() int { return m.rows }

// Cols returns the number of criteria.
func (m BeliefMatrix) Cols() int { return m.cols }

// Row returns agent i's belief vector. The slice aliases the matrix storage.
func (m BeliefMatrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// At returns the belief of agent i in criterion j.
func (m BeliefMatrix) At(i, j int) float64 { return m.data[i*m.cols+j] }

// Set stores the belief of agent i in criterion j.
func (m BeliefMatrix) Set(i, j int, v float64) { m.data[i*m.cols+j] = v }

// Values returns a copy of the entries in row-major order.
func (m BeliefMatrix) Values() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// ColumnMeans returns the group belief vector: the arithmetic mean of each
// column, giving every agent weight 1/Rows(). A matrix with no rows has no
// defined mean and yields ErrUndefinedResult.
func (m BeliefMatrix) ColumnMeans() ([]float64, error) {
	if m.rows == 0 {
		return nil, fmt.Errorf("%w: column means of a matrix with no agents", ErrUndefinedResult)
	}

	sums := make([]float64, m.cols)
	for i := 0; i < m.rows; i++ {
		for j, v := range m.Row(i) {
			sums[j] += v
		}
	}

	n := float64(m.rows)
	for j := range sums {
		sums[j] /= n
	}
	return sums, nil
}
