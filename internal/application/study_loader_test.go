package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

const validStudyYAML = `
version: "1.0.0"
metadata:
  name: "Aggregation agreement"
  description: "Agreement of preference and belief aggregation"
  tags: ["monte-carlo"]
defaults:
  agents: 5
  criteria: 3
  threshold: 0.5
  distribution:
    kind: binomial
    size: 100
    prob: 0.5
execution:
  trials: 200
sweeps:
  - id: prob
    parameter: prob
    values: [0.1, 0.3, 0.5, 0.7, 0.9]
  - id: threshold
    parameter: threshold
    range: {start: 0.3, stop: 0.7, step: 0.1}
    seed: 42
  - id: normal-mean
    parameter: mean
    trials: 100
    values: [0.2, 0.5, 0.8]
    overrides:
      distribution:
        kind: normal
        sd: 0.1
`

func newLoader(t *testing.T) *StudyLoader {
	t.Helper()
	sl, err := NewStudyLoader()
	require.NoError(t, err)
	return sl
}

func TestStudyLoaderLoadFromReader(t *testing.T) {
	study, err := newLoader(t).LoadFromReader(context.Background(), strings.NewReader(validStudyYAML))
	require.NoError(t, err)

	assert.Equal(t, "Aggregation agreement", study.Config.Metadata.Name)
	assert.Len(t, study.Hash, 64)
	require.Len(t, study.Plans, 3)

	prob, ok := study.Plan("prob")
	require.True(t, ok)
	assert.Equal(t, domain.ParamProb, prob.Parameter)
	assert.Equal(t, 200, prob.TrialsPerPoint)
	assert.Equal(t, domain.Binomial(100, 0.5), prob.Fixed.Distribution)
	wantSeed, err := derivedSeed(prob)
	require.NoError(t, err)
	assert.Equal(t, wantSeed, prob.Seed)

	threshold, ok := study.Plan("threshold")
	require.True(t, ok)
	assert.Equal(t, []float64{0.3, 0.4, 0.5, 0.6, 0.7}, threshold.Values)
	assert.Equal(t, uint64(42), threshold.Seed)

	mean, ok := study.Plan("normal-mean")
	require.True(t, ok)
	assert.Equal(t, domain.Normal(0.5, 0.1), mean.Fixed.Distribution)
	assert.Equal(t, 100, mean.TrialsPerPoint)

	_, ok = study.Plan("missing")
	assert.False(t, ok)
}

func TestStudyLoaderErrors(t *testing.T) {
	replace := func(old, new string) string {
		return strings.Replace(validStudyYAML, old, new, 1)
	}

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"malformed yaml", "version: [", "failed to parse YAML"},
		{"unknown field", replace("execution:", "execution:\n  retries: 3"), "field retries not found"},
		{"bad version", replace(`version: "1.0.0"`, `version: "one"`), "semver"},
		{"missing sweeps", strings.Split(validStudyYAML, "sweeps:")[0], "Sweeps"},
		{"unknown parameter", replace("parameter: prob", "parameter: variance"), "sweepparam"},
		{"unknown distribution", replace("kind: binomial", "kind: poisson"), "distkind"},
		{"values and range", replace("values: [0.1, 0.3, 0.5, 0.7, 0.9]", "values: [0.1]\n    range: {start: 0, stop: 1, step: 0.5}"), "excluded_with"},
		{"threshold out of range", replace("threshold: 0.5", "threshold: 1.5"), "Threshold"},
		{"duplicate id", replace("id: threshold", "id: prob"), "duplicate sweep ID"},
		{"fractional agents", replace("parameter: prob\n    values: [0.1, 0.3, 0.5, 0.7, 0.9]", "parameter: agents\n    values: [1, 2.5]"), "not a whole number"},
		{"parameter from another family", replace("parameter: prob", "parameter: sd"), "failed to build study"},
		{"invalid id", replace("id: prob", "id: Prob Sweep"), "identifier"},
		{"oversized matrix", replace("agents: 5\n  criteria: 3", "agents: 4294967296\n  criteria: 4294967296"), "belief entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newLoader(t).LoadFromReader(context.Background(), strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStudyLoaderCaching(t *testing.T) {
	ctx := context.Background()
	sl := newLoader(t)

	first, err := sl.LoadFromReader(ctx, strings.NewReader(validStudyYAML))
	require.NoError(t, err)

	// Reformatted but equivalent content hits the cache.
	reformatted := strings.ReplaceAll(validStudyYAML, "\n\n", "\n") + "\n# trailing comment\n"
	second, err := sl.LoadFromReader(ctx, strings.NewReader(reformatted))
	require.NoError(t, err)
	assert.Same(t, first, second)

	sl.ClearCache()
	third, err := sl.LoadFromReader(ctx, strings.NewReader(validStudyYAML))
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, first.Hash, third.Hash)
	assert.Equal(t, first.Plans, third.Plans, "derived seeds are stable")
}

func TestStudyLoaderConcurrentLoads(t *testing.T) {
	sl := newLoader(t)

	const n = 16
	studies := make([]*Study, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			study, err := sl.LoadFromReader(context.Background(), strings.NewReader(validStudyYAML))
			assert.NoError(t, err)
			studies[i] = study
		}(i)
	}
	wg.Wait()

	for _, s := range studies[1:] {
		assert.Same(t, studies[0], s)
	}
}

func TestStudyLoaderLoadFromFile(t *testing.T) {
	ctx := context.Background()
	sl := newLoader(t)

	path := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validStudyYAML), 0o600))

	study, err := sl.LoadFromFile(ctx, path)
	require.NoError(t, err)
	assert.Len(t, study.Plans, 3)

	_, err = sl.LoadFromFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *ports.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, err, ports.ErrConfigNotFound)
}

func TestStudyLoaderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader(t).LoadFromReader(ctx, strings.NewReader(validStudyYAML))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDerivedSeed(t *testing.T) {
	plan := domain.SweepPlan{
		Name:           "prob",
		Parameter:      domain.ParamProb,
		Values:         []float64{0.1, 0.5},
		TrialsPerPoint: 100,
		Fixed:          domain.TrialParams{Agents: 3, Criteria: 2, Distribution: domain.Binomial(100, 0.5), Threshold: 0.5},
	}
	seed := func(p domain.SweepPlan) uint64 {
		t.Helper()
		s, err := derivedSeed(p)
		require.NoError(t, err)
		return s
	}

	base := seed(plan)
	assert.Equal(t, base, seed(plan))

	seeded := plan
	seeded.Seed = 99
	assert.Equal(t, base, seed(seeded), "an existing seed is not an input")

	renamed := plan
	renamed.Name = "mean"
	assert.NotEqual(t, base, seed(renamed))

	moreTrials := plan
	moreTrials.TrialsPerPoint = 200
	assert.NotEqual(t, base, seed(moreTrials))

	otherValues := plan
	otherValues.Values = []float64{0.1, 0.6}
	assert.NotEqual(t, base, seed(otherValues))

	otherFixed := plan
	otherFixed.Fixed.Agents = 4
	assert.NotEqual(t, base, seed(otherFixed))
}

func TestStudyLoaderDerivedSeedIgnoresExecutionAndMetadata(t *testing.T) {
	load := func(yaml string) *Study {
		t.Helper()
		study, err := newLoader(t).LoadFromReader(context.Background(), strings.NewReader(yaml))
		require.NoError(t, err)
		return study
	}

	base := load(validStudyYAML)
	variants := map[string]string{
		"workers": strings.Replace(validStudyYAML, "execution:\n", "execution:\n  workers: 8\n", 1),
		"description": strings.Replace(validStudyYAML,
			"Agreement of preference and belief aggregation", "A different description", 1),
		"name": strings.Replace(validStudyYAML, `name: "Aggregation agreement"`, `name: "Renamed study"`, 1),
	}

	for name, yaml := range variants {
		t.Run(name, func(t *testing.T) {
			require.NotEqual(t, validStudyYAML, yaml)
			study := load(yaml)
			assert.NotEqual(t, base.Hash, study.Hash)
			require.Len(t, study.Plans, len(base.Plans))
			for i := range base.Plans {
				assert.Equal(t, base.Plans[i].Seed, study.Plans[i].Seed, "sweep %s", base.Plans[i].Name)
			}
		})
	}

	t.Run("trials change the seed", func(t *testing.T) {
		study := load(strings.Replace(validStudyYAML, "trials: 200", "trials: 300", 1))
		prob, _ := study.Plan("prob")
		baseProb, _ := base.Plan("prob")
		assert.NotEqual(t, baseProb.Seed, prob.Seed)
	})
}

func TestExampleStudies(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "sweeps", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	sl := newLoader(t)
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			study, err := sl.LoadFromFile(context.Background(), path)
			require.NoError(t, err)
			assert.Len(t, study.Plans, len(study.Config.Sweeps))
			for _, plan := range study.Plans {
				assert.NotEmpty(t, plan.Values)
				assert.Positive(t, plan.TrialsPerPoint)
			}
		})
	}
}
