package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMatrix(t *testing.T, rows [][]float64) BeliefMatrix {
	t.Helper()
	m, err := BeliefMatrixFromRows(rows)
	require.NoError(t, err)
	return m
}

func TestEvaluateAgreement(t *testing.T) {
	t.Run("split beliefs at the mean agree", func(t *testing.T) {
		// Verdicts [true, false] reject unanimously; the mean 0.5 is not
		// strictly above 0.5 so belief aggregation rejects too.
		out, err := EvaluateAgreement(mustMatrix(t, [][]float64{{0.9}, {0.1}}), 0.5)
		require.NoError(t, err)

		assert.Equal(t, []bool{true, false}, out.IndividualVerdicts)
		assert.False(t, out.PreferenceVerdict)
		assert.Equal(t, []float64{0.5}, out.GroupBeliefs)
		assert.False(t, out.BeliefVerdict)
		assert.True(t, out.Agreed())
	})

	t.Run("split beliefs below the mean disagree", func(t *testing.T) {
		out, err := EvaluateAgreement(mustMatrix(t, [][]float64{{0.9}, {0.1}}), 0.4)
		require.NoError(t, err)

		assert.Equal(t, []bool{true, false}, out.IndividualVerdicts)
		assert.False(t, out.PreferenceVerdict)
		assert.True(t, out.BeliefVerdict)
		assert.False(t, out.Agreed())
	})

	t.Run("constant beliefs at threshold agree", func(t *testing.T) {
		out, err := EvaluateAgreement(mustMatrix(t, [][]float64{{0.5}, {0.5}}), 0.5)
		require.NoError(t, err)

		assert.Equal(t, []bool{false, false}, out.IndividualVerdicts)
		assert.False(t, out.PreferenceVerdict)
		assert.False(t, out.BeliefVerdict)
		assert.True(t, out.Agreed())
	})

	t.Run("unanimous acceptance implies belief acceptance", func(t *testing.T) {
		out, err := EvaluateAgreement(mustMatrix(t, [][]float64{
			{0.8, 0.7},
			{0.6, 0.9},
			{0.55, 0.51},
		}), 0.5)
		require.NoError(t, err)

		assert.True(t, out.PreferenceVerdict)
		assert.True(t, out.BeliefVerdict)
		assert.True(t, out.Agreed())
	})

	t.Run("criterion split across agents disagrees", func(t *testing.T) {
		// Each agent doubts a different criterion, but the averages clear it.
		out, err := EvaluateAgreement(mustMatrix(t, [][]float64{
			{0.9, 0.4},
			{0.4, 0.9},
		}), 0.6)
		require.NoError(t, err)

		assert.Equal(t, []bool{false, false}, out.IndividualVerdicts)
		assert.InDeltaSlice(t, []float64{0.65, 0.65}, out.GroupBeliefs, 1e-12)
		assert.True(t, out.BeliefVerdict)
		assert.False(t, out.Agreed())
	})

	t.Run("no criteria accepts on both sides", func(t *testing.T) {
		m, err := NewBeliefMatrix(4, 0)
		require.NoError(t, err)

		out, err := EvaluateAgreement(m, 0.5)
		require.NoError(t, err)
		assert.True(t, out.PreferenceVerdict)
		assert.True(t, out.BeliefVerdict)
		assert.True(t, out.Agreed())
	})

	t.Run("nan belief rejects individually and in the mean", func(t *testing.T) {
		out, err := EvaluateAgreement(mustMatrix(t, [][]float64{{math.NaN()}, {0.9}}), 0.5)
		require.NoError(t, err)

		assert.Equal(t, []bool{false, true}, out.IndividualVerdicts)
		assert.True(t, math.IsNaN(out.GroupBeliefs[0]))
		assert.False(t, out.BeliefVerdict)
		assert.True(t, out.Agreed())
	})

	t.Run("no agents is undefined", func(t *testing.T) {
		m, err := NewBeliefMatrix(0, 2)
		require.NoError(t, err)

		_, err = EvaluateAgreement(m, 0.5)
		assert.ErrorIs(t, err, ErrUndefinedResult)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		m := mustMatrix(t, [][]float64{{0.5}})
		for _, threshold := range []float64{-0.01, 1.01, math.NaN()} {
			_, err := EvaluateAgreement(m, threshold)
			assert.ErrorIs(t, err, ErrInvalidArgument, "threshold %v", threshold)
		}
	})
}

func TestEvaluateAgreementSingleAgentAlwaysAgrees(t *testing.T) {
	rows := [][]float64{
		{0.9, 0.1, 0.6},
		{0.51},
		{0.5},
		{},
		{-1, 2},
		{1, 1, 1, 1},
	}
	thresholds := []float64{0, 0.25, 0.5, 0.75, 1}

	for _, row := range rows {
		for _, threshold := range thresholds {
			out, err := EvaluateAgreement(mustMatrix(t, [][]float64{row}), threshold)
			require.NoError(t, err)
			assert.True(t, out.Agreed(), "row %v threshold %g", row, threshold)
		}
	}
}

func TestTrialParamsValidate(t *testing.T) {
	valid := TrialParams{Agents: 3, Criteria: 2, Distribution: Uniform(0.3), Threshold: 0.5}

	tests := []struct {
		name    string
		mutate  func(p *TrialParams)
		wantArg string
	}{
		{"valid", func(p *TrialParams) {}, ""},
		{"no criteria", func(p *TrialParams) { p.Criteria = 0 }, ""},
		{"threshold bounds", func(p *TrialParams) { p.Threshold = 1 }, ""},
		{"no agents", func(p *TrialParams) { p.Agents = 0 }, "agents"},
		{"negative agents", func(p *TrialParams) { p.Agents = -2 }, "agents"},
		{"negative criteria", func(p *TrialParams) { p.Criteria = -1 }, "criteria"},
		{"threshold above one", func(p *TrialParams) { p.Threshold = 1.5 }, "threshold"},
		{"threshold nan", func(p *TrialParams) { p.Threshold = math.NaN() }, "threshold"},
		{"bad distribution", func(p *TrialParams) { p.Distribution = Normal(0.5, 0) }, "sd"},
		{"oversized matrix", func(p *TrialParams) { p.Agents, p.Criteria = 1<<31, 1<<31 }, "dimensions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantArg == "" {
				assert.NoError(t, err)
				return
			}

			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.wantArg, argErr.Argument)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}
