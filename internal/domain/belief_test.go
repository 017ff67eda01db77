package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBeliefMatrix(t *testing.T) {
	t.Run("dimensions", func(t *testing.T) {
		m, err := NewBeliefMatrix(3, 4)
		require.NoError(t, err)

		assert.Equal(t, 3, m.Rows())
		assert.Equal(t, 4, m.Cols())
		assert.Len(t, m.Values(), 12)
		for i := 0; i < m.Rows(); i++ {
			assert.Len(t, m.Row(i), 4)
		}
	})

	t.Run("empty dimensions are allowed", func(t *testing.T) {
		m, err := NewBeliefMatrix(0, 5)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Rows())
		assert.Empty(t, m.Values())

		m, err = NewBeliefMatrix(2, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, m.Rows())
		assert.Empty(t, m.Row(1))
	})

	t.Run("negative dimensions are rejected", func(t *testing.T) {
		_, err := NewBeliefMatrix(-1, 2)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = NewBeliefMatrix(2, -1)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("oversized dimensions are rejected", func(t *testing.T) {
		huge := 1 << 31
		tests := []struct {
			agents, criteria int
		}{
			{huge, huge},
			{math.MaxInt, 2},
			{2, math.MaxInt},
			{MaxBeliefEntries + 1, 1},
			{MaxBeliefEntries/2 + 1, 2},
		}
		for _, tt := range tests {
			_, err := NewBeliefMatrix(tt.agents, tt.criteria)
			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr, "%dx%d", tt.agents, tt.criteria)
			assert.Equal(t, "dimensions", argErr.Argument)
		}

		m, err := NewBeliefMatrix(math.MaxInt, 0)
		require.NoError(t, err)
		assert.Empty(t, m.Values())
	})

	t.Run("set and at", func(t *testing.T) {
		m, err := NewBeliefMatrix(2, 2)
		require.NoError(t, err)

		m.Set(1, 0, 0.75)
		assert.Equal(t, 0.75, m.At(1, 0))
		assert.Equal(t, []float64{0.75, 0}, m.Row(1))
	})
}

func TestBeliefMatrixFromRows(t *testing.T) {
	t.Run("copies rows", func(t *testing.T) {
		rows := [][]float64{{0.1, 0.2}, {0.3, 0.4}}
		m, err := BeliefMatrixFromRows(rows)
		require.NoError(t, err)

		rows[0][0] = 99
		assert.Equal(t, 0.1, m.At(0, 0), "matrix must not alias input rows")
		assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, m.Values())
	})

	t.Run("ragged rows", func(t *testing.T) {
		_, err := BeliefMatrixFromRows([][]float64{{0.1, 0.2}, {0.3}})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("no rows", func(t *testing.T) {
		m, err := BeliefMatrixFromRows(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Rows())
		assert.Equal(t, 0, m.Cols())
	})
}

func TestColumnMeans(t *testing.T) {
	t.Run("equal weights", func(t *testing.T) {
		m, err := BeliefMatrixFromRows([][]float64{
			{0.9, 0.2, 0.5},
			{0.1, 0.4, 0.5},
		})
		require.NoError(t, err)

		means, err := m.ColumnMeans()
		require.NoError(t, err)
		require.Len(t, means, 3)
		assert.InDelta(t, 0.5, means[0], 1e-12)
		assert.InDelta(t, 0.3, means[1], 1e-12)
		assert.InDelta(t, 0.5, means[2], 1e-12)
	})

	t.Run("single row is its own mean", func(t *testing.T) {
		row := []float64{0.33, 0.66, -0.2}
		m, err := BeliefMatrixFromRows([][]float64{row})
		require.NoError(t, err)

		means, err := m.ColumnMeans()
		require.NoError(t, err)
		assert.Equal(t, row, means)
	})

	t.Run("no criteria", func(t *testing.T) {
		m, err := NewBeliefMatrix(3, 0)
		require.NoError(t, err)

		means, err := m.ColumnMeans()
		require.NoError(t, err)
		assert.Empty(t, means)
	})

	t.Run("no agents is undefined", func(t *testing.T) {
		m, err := NewBeliefMatrix(0, 3)
		require.NoError(t, err)

		_, err = m.ColumnMeans()
		assert.ErrorIs(t, err, ErrUndefinedResult)
	})
}
