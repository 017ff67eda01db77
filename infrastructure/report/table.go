package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ahrav/go-verdict/internal/domain"
)

func newTable(markdown bool) table.Writer {
	t := table.NewWriter()
	if !markdown {
		t.SetStyle(table.StyleLight)
	}
	return t
}

func render(w io.Writer, t table.Writer, markdown bool) error {
	out := t.Render()
	if markdown {
		out = t.RenderMarkdown()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

// writeSweepTables renders one table per result.
func writeSweepTables(w io.Writer, markdown bool, results []*domain.SweepResult) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		t := newTable(markdown)
		t.SetTitle(fmt.Sprintf("%s: %s (%s, seed=%d)", r.Name, r.Parameter, r.Fixed, r.Seed))
		t.AppendHeader(table.Row{r.Parameter.String(), "trials", "agreements", "agreement rate"})
		for _, p := range r.Points {
			t.AppendRow(table.Row{formatFloat(p.Value), p.Trials, p.Agreements, fmt.Sprintf("%.4f", p.AgreementRate)})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, Align: text.AlignRight},
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
		})
		if err := render(w, t, markdown); err != nil {
			return err
		}
	}
	return nil
}

// writeTrialTable renders the per-criterion group beliefs and the verdicts
// of a single trial.
func writeTrialTable(w io.Writer, markdown bool, params domain.TrialParams, outcome domain.TrialOutcome) error {
	t := newTable(markdown)
	t.SetTitle(params.String())
	t.AppendHeader(table.Row{"method", "verdict", "detail"})

	accepted := 0
	for _, v := range outcome.IndividualVerdicts {
		if v {
			accepted++
		}
	}
	t.AppendRow(table.Row{domain.PreferenceAggregation{}.Name(), verdict(outcome.PreferenceVerdict),
		fmt.Sprintf("%d/%d agents accept", accepted, len(outcome.IndividualVerdicts))})
	t.AppendRow(table.Row{domain.BeliefAggregation{}.Name(), verdict(outcome.BeliefVerdict),
		fmt.Sprintf("group beliefs %s", formatBeliefs(outcome.GroupBeliefs))})
	t.AppendFooter(table.Row{"agreed", outcome.Agreed(), ""})

	return render(w, t, markdown)
}

func verdict(accept bool) string {
	if accept {
		return "accept"
	}
	return "reject"
}

func formatBeliefs(beliefs []float64) string {
	out := "["
	for i, b := range beliefs {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%.3f", b)
	}
	return out + "]"
}
