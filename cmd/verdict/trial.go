package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-verdict/infrastructure/report"
	"github.com/ahrav/go-verdict/infrastructure/sampling"
	"github.com/ahrav/go-verdict/internal/application"
	"github.com/ahrav/go-verdict/internal/domain"
)

// trialFlags are the trial arguments shared by trial and ad-hoc sweeps.
type trialFlags struct {
	agents    int
	criteria  int
	threshold float64
	dist      string
	rangeHW   float64
	size      int
	prob      float64
	mean      float64
	sd        float64
	clamp     bool
	seed      uint64
}

// trialArgFlags names the flags that set trial arguments; a study file
// supplies these itself.
var trialArgFlags = []string{
	"agents", "criteria", "threshold", "dist",
	"range", "size", "prob", "mean", "sd", "clamp",
}

func (t *trialFlags) register(f *pflag.FlagSet) {
	f.IntVar(&t.agents, "agents", 5, "Number of agents N")
	f.IntVar(&t.criteria, "criteria", 3, "Number of necessary criteria K")
	f.Float64Var(&t.threshold, "threshold", 0.5, "Acceptance threshold T in [0, 1]")
	f.StringVar(&t.dist, "dist", string(domain.KindUniform), "Belief distribution (uniform, binomial, normal)")
	f.Float64Var(&t.rangeHW, "range", domain.DefaultUniformRange, "Uniform half-width around 0.5")
	f.IntVar(&t.size, "size", domain.DefaultBinomialSize, "Binomial number of trials")
	f.Float64Var(&t.prob, "prob", domain.DefaultBinomialProb, "Binomial success probability")
	f.Float64Var(&t.mean, "mean", domain.DefaultNormalMean, "Normal mean")
	f.Float64Var(&t.sd, "sd", domain.DefaultNormalSD, "Normal standard deviation")
	f.BoolVar(&t.clamp, "clamp", false, "Clamp normal draws to [0, 1]")
	f.Uint64Var(&t.seed, "seed", 1, "Root random seed")
}

// params converts the flags into validated trial parameters.
func (t *trialFlags) params() (domain.TrialParams, error) {
	params, err := t.build()
	if err != nil {
		return domain.TrialParams{}, err
	}
	if err := params.Validate(); err != nil {
		return domain.TrialParams{}, err
	}
	return params, nil
}

// build converts the flags into trial parameters without validating them.
func (t *trialFlags) build() (domain.TrialParams, error) {
	kind, err := domain.ParseDistributionKind(cases.Fold().String(strings.TrimSpace(t.dist)))
	if err != nil {
		return domain.TrialParams{}, err
	}

	var dist domain.Distribution
	switch kind {
	case domain.KindUniform:
		dist = domain.Uniform(t.rangeHW)
	case domain.KindBinomial:
		dist = domain.Binomial(t.size, t.prob)
	case domain.KindNormal:
		dist = domain.Normal(t.mean, t.sd)
	}
	dist.Clamp = t.clamp

	return domain.TrialParams{
		Agents:       t.agents,
		Criteria:     t.criteria,
		Distribution: dist,
		Threshold:    t.threshold,
	}, nil
}

func newTrialCmd(a *app) *cobra.Command {
	var (
		tf      trialFlags
		trials  int
		workers int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Run agreement trials at a single parameter point",
		Long: `Trial draws a belief matrix and compares the unanimous preference verdict
with the verdict on averaged beliefs. With --trials=1 it prints the full
outcome; with more it prints the agreement count and rate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := tf.params()
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if trials < 1 {
				return domain.NewArgumentError("trials", trials, "must be positive")
			}

			if trials == 1 {
				trial, err := application.NewAgreementTrial(sampling.NewRandomGenerator(tf.seed, 0))
				if err != nil {
					return err
				}
				outcome, err := trial.Outcome(cmd.Context(), params)
				if err != nil {
					return err
				}
				return report.WriteTrial(cmd.OutOrStdout(), f, params, outcome)
			}

			// Many trials at one point run as a single-value sweep.
			sweep, err := application.NewMonteCarloSweep(sampling.NewFactory(), a.sweepOptions(workers)...)
			if err != nil {
				return err
			}
			result, err := sweep.Run(cmd.Context(), domain.SweepPlan{
				Name:           "trial",
				Parameter:      domain.ParamThreshold,
				Values:         []float64{params.Threshold},
				TrialsPerPoint: trials,
				Fixed:          params,
				Seed:           tf.seed,
			})
			if err != nil {
				return err
			}

			if f == report.FormatTable {
				p := result.Points[0]
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\nagreements: %d/%d (rate %.4f)\n",
					params, p.Agreements, p.Trials, p.AgreementRate)
				return err
			}
			return report.WriteSweeps(cmd.OutOrStdout(), f, result)
		},
	}

	tf.register(cmd.Flags())
	cmd.Flags().IntVar(&trials, "trials", 1, "Number of trials to run")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent workers (0 = CPU count)")
	cmd.Flags().StringVar(&format, "format", string(report.FormatTable), "Output format (table, markdown, json, csv)")
	return cmd
}
