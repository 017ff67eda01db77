package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-verdict/infrastructure/sampling"
	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/testutils"
)

func fixedTrial(t *testing.T, rows [][]float64) *AgreementTrial {
	t.Helper()
	gen, err := sampling.NewFixedGeneratorFromRows(rows)
	require.NoError(t, err)
	trial, err := NewAgreementTrial(gen)
	require.NoError(t, err)
	return trial
}

func TestNewAgreementTrial(t *testing.T) {
	_, err := NewAgreementTrial(nil)
	assert.ErrorIs(t, err, ErrNilGenerator)

	trial, err := NewAgreementTrial(sampling.NewRandomGenerator(1, 0))
	require.NoError(t, err)
	assert.NotNil(t, trial)
}

func TestAgreementTrialRun(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		rows      [][]float64
		threshold float64
		want      bool
	}{
		{"split at the mean agrees", [][]float64{{0.9}, {0.1}}, 0.5, true},
		{"split below the mean disagrees", [][]float64{{0.9}, {0.1}}, 0.4, false},
		{"everyone convinced", [][]float64{{0.7, 0.8}, {0.9, 0.6}}, 0.5, true},
		{"nobody convinced", [][]float64{{0.1, 0.2}, {0.3, 0.2}}, 0.5, true},
		{"criterion split", [][]float64{{0.9, 0.4}, {0.4, 0.9}}, 0.6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trial := fixedTrial(t, tt.rows)
			params := domain.TrialParams{
				Agents:       len(tt.rows),
				Criteria:     len(tt.rows[0]),
				Distribution: domain.Uniform(0.5),
				Threshold:    tt.threshold,
			}

			got, err := trial.Run(ctx, params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgreementTrialOutcome(t *testing.T) {
	trial := fixedTrial(t, [][]float64{{0.9}, {0.1}})
	params := domain.TrialParams{Agents: 2, Criteria: 1, Distribution: domain.Uniform(0.5), Threshold: 0.4}

	out, err := trial.Outcome(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, out.IndividualVerdicts)
	assert.False(t, out.PreferenceVerdict)
	assert.InDeltaSlice(t, []float64{0.5}, out.GroupBeliefs, 1e-12)
	assert.True(t, out.BeliefVerdict)
}

func TestAgreementTrialSingleAgentAlwaysAgrees(t *testing.T) {
	ctx := context.Background()
	dists := []domain.Distribution{
		domain.Uniform(0.5),
		domain.Binomial(10, 0.5),
		domain.Normal(0.5, 0.3),
	}

	for _, dist := range dists {
		t.Run(dist.String(), func(t *testing.T) {
			trial, err := NewAgreementTrial(sampling.NewRandomGenerator(42, 0))
			require.NoError(t, err)

			params := domain.TrialParams{Agents: 1, Criteria: 4, Distribution: dist, Threshold: 0.5}
			agreed, err := trial.Tally(ctx, params, 500)
			require.NoError(t, err)
			assert.Equal(t, 500, agreed)
		})
	}
}

func TestAgreementTrialErrors(t *testing.T) {
	ctx := context.Background()
	valid := domain.TrialParams{Agents: 2, Criteria: 1, Distribution: domain.Uniform(0.5), Threshold: 0.5}

	t.Run("invalid parameters", func(t *testing.T) {
		trial, err := NewAgreementTrial(sampling.NewRandomGenerator(1, 0))
		require.NoError(t, err)

		for _, mutate := range []func(p *domain.TrialParams){
			func(p *domain.TrialParams) { p.Agents = 0 },
			func(p *domain.TrialParams) { p.Criteria = -1 },
			func(p *domain.TrialParams) { p.Threshold = 2 },
			func(p *domain.TrialParams) { p.Distribution = domain.Binomial(10, 1.2) },
		} {
			params := valid
			mutate(&params)
			_, err := trial.Run(ctx, params)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		}
	})

	t.Run("generator failure", func(t *testing.T) {
		trial, err := NewAgreementTrial(&testutils.FailingGenerator{After: 2, Value: 0.7})
		require.NoError(t, err)

		agreed, err := trial.Tally(ctx, valid, 5)
		require.ErrorIs(t, err, testutils.ErrInjected)
		assert.Contains(t, err.Error(), "trial 2")
		assert.Equal(t, 2, agreed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		trial, err := NewAgreementTrial(sampling.NewRandomGenerator(1, 0))
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = trial.Run(cctx, valid)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
