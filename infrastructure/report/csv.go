package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ahrav/go-verdict/internal/domain"
)

// csvHeader names the columns written by writeSweepCSV.
var csvHeader = []string{
	"run_id", "sweep", "parameter", "distribution", "agents", "criteria",
	"threshold", "seed", "value", "trials", "agreements", "agreement_rate",
}

// writeSweepCSV writes one row per point of every result.
func writeSweepCSV(w io.Writer, results []*domain.SweepResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		for _, p := range r.Points {
			record := []string{
				r.RunID,
				r.Name,
				r.Parameter.String(),
				r.Fixed.Distribution.String(),
				strconv.Itoa(r.Fixed.Agents),
				strconv.Itoa(r.Fixed.Criteria),
				formatFloat(r.Fixed.Threshold),
				strconv.FormatUint(r.Seed, 10),
				formatFloat(p.Value),
				strconv.Itoa(p.Trials),
				strconv.Itoa(p.Agreements),
				formatFloat(p.AgreementRate),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
