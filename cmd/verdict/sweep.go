package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-verdict/infrastructure/report"
	"github.com/ahrav/go-verdict/infrastructure/sampling"
	"github.com/ahrav/go-verdict/internal/application"
	"github.com/ahrav/go-verdict/internal/domain"
)

type sweepFlags struct {
	config  string
	sweepID string
	param   string
	values  []float64
	trials  int
	workers int
	format  string
	out     string
	fixed   trialFlags
}

func newSweepCmd(a *app) *cobra.Command {
	var sf sweepFlags

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Estimate agreement rates across values of one parameter",
		Long: `Sweep runs Monte Carlo agreement trials at every value of one parameter.

Sweeps come either from a study file (--config, optionally narrowed with
--sweep) or from flags (--param and --values, with the trial flags fixing
every other argument). Trial argument flags cannot be combined with
--config; --trials and --seed override the study.`,
		Example: `  verdict sweep --config examples/sweeps/binomial_prob.yaml
  verdict sweep --param range --values 0,0.1,0.2,0.3,0.4,0.5 --dist uniform --trials 10000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := report.ParseFormat(sf.format)
			if err != nil {
				return err
			}

			plans, workers, err := sf.plans(cmd)
			if err != nil {
				return err
			}

			sweep, err := application.NewMonteCarloSweep(sampling.NewFactory(), a.sweepOptions(workers)...)
			if err != nil {
				return err
			}

			results := make([]*domain.SweepResult, 0, len(plans))
			for _, plan := range plans {
				result, err := sweep.Run(cmd.Context(), plan)
				if err != nil {
					return fmt.Errorf("sweep %s: %w", plan.Name, err)
				}
				results = append(results, result)
			}

			return sf.write(cmd.OutOrStdout(), f, results)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&sf.config, "config", "", "Study file (YAML) defining the sweeps")
	fs.StringVar(&sf.sweepID, "sweep", "", "Run only the sweep with this ID from --config")
	fs.StringVar(&sf.param, "param", "", "Swept parameter for an ad-hoc sweep (range, size, prob, mean, sd, threshold, agents, criteria)")
	fs.Float64SliceVar(&sf.values, "values", nil, "Comma-separated values for --param")
	fs.IntVar(&sf.trials, "trials", 0, "Trials per point (overrides the study file; default 1000)")
	fs.IntVar(&sf.workers, "workers", 0, "Concurrent workers (0 = study setting or CPU count)")
	fs.StringVar(&sf.format, "format", string(report.FormatTable), "Output format (table, markdown, json, csv)")
	fs.StringVar(&sf.out, "out", "", "Write results to this file instead of stdout")
	sf.fixed.register(fs)
	cmd.MarkFlagsMutuallyExclusive("config", "param")
	for _, name := range trialArgFlags {
		cmd.MarkFlagsMutuallyExclusive("config", name)
	}
	cmd.MarkFlagsOneRequired("config", "param")
	cmd.MarkFlagsRequiredTogether("param", "values")
	return cmd
}

// plans resolves the sweep plans to run and the worker count.
func (sf *sweepFlags) plans(cmd *cobra.Command) ([]domain.SweepPlan, int, error) {
	if sf.config == "" {
		plan, err := sf.adHocPlan()
		if err != nil {
			return nil, 0, err
		}
		return []domain.SweepPlan{plan}, sf.workers, nil
	}

	loader, err := application.NewStudyLoader()
	if err != nil {
		return nil, 0, err
	}
	study, err := loader.LoadFromFile(cmd.Context(), sf.config)
	if err != nil {
		return nil, 0, err
	}

	plans := study.Plans
	if sf.sweepID != "" {
		plan, ok := study.Plan(sf.sweepID)
		if !ok {
			return nil, 0, domain.NewArgumentError("sweep", sf.sweepID, "no such sweep in "+sf.config)
		}
		plans = []domain.SweepPlan{plan}
	}

	// Cached plans are shared; copy before applying overrides.
	out := make([]domain.SweepPlan, len(plans))
	copy(out, plans)
	if sf.trials > 0 {
		for i := range out {
			out[i].TrialsPerPoint = sf.trials
		}
	}
	if cmd.Flags().Changed("seed") {
		for i := range out {
			out[i].Seed = sf.fixed.seed
		}
	}

	workers := sf.workers
	if workers == 0 {
		workers = study.Config.Execution.Workers
	}
	return out, workers, nil
}

func (sf *sweepFlags) adHocPlan() (domain.SweepPlan, error) {
	param, err := domain.ParseSweepParameter(cases.Fold().String(strings.TrimSpace(sf.param)))
	if err != nil {
		return domain.SweepPlan{}, err
	}

	// Each point is validated after substitution, so the fixed arguments
	// are not validated on their own.
	fixed, err := sf.fixed.build()
	if err != nil {
		return domain.SweepPlan{}, err
	}

	trials := sf.trials
	if trials == 0 {
		trials = application.DefaultTrialsPerPoint
	}
	plan := domain.SweepPlan{
		Name:           "adhoc-" + param.String(),
		Parameter:      param,
		Values:         sf.values,
		TrialsPerPoint: trials,
		Fixed:          fixed,
		Seed:           sf.fixed.seed,
	}
	if _, err := plan.PointParams(); err != nil {
		return domain.SweepPlan{}, err
	}
	return plan, nil
}

func (sf *sweepFlags) write(stdout io.Writer, f report.Format, results []*domain.SweepResult) error {
	if sf.out == "" {
		return report.WriteSweeps(stdout, f, results...)
	}

	file, err := os.Create(filepath.Clean(sf.out))
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := report.WriteSweeps(file, f, results...); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
