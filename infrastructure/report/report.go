// Package report renders sweep results and trial outcomes as JSON, CSV, or
// terminal tables.
package report

import (
	"io"
	"strings"

	"github.com/ahrav/go-verdict/internal/domain"
)

// Format selects an output encoding.
type Format string

// Supported formats.
const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatTable, FormatMarkdown, FormatJSON, FormatCSV}
}

// ParseFormat converts a name into a Format, ignoring case.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", domain.NewArgumentError("format", name, "unknown output format")
}

// WriteSweeps renders results to w in format f.
func WriteSweeps(w io.Writer, f Format, results ...*domain.SweepResult) error {
	switch f {
	case FormatTable, FormatMarkdown:
		return writeSweepTables(w, f == FormatMarkdown, results)
	case FormatJSON:
		return writeJSON(w, results)
	case FormatCSV:
		return writeSweepCSV(w, results)
	default:
		return domain.NewArgumentError("format", string(f), "unknown output format")
	}
}

// TrialReport is a single trial outcome together with its parameters.
type TrialReport struct {
	Params  domain.TrialParams  `json:"params"`
	Outcome domain.TrialOutcome `json:"outcome"`
	Agreed  bool                `json:"agreed"`
}

// WriteTrial renders one trial outcome to w in format f. CSV is not
// supported for single trials.
func WriteTrial(w io.Writer, f Format, params domain.TrialParams, outcome domain.TrialOutcome) error {
	switch f {
	case FormatTable, FormatMarkdown:
		return writeTrialTable(w, f == FormatMarkdown, params, outcome)
	case FormatJSON:
		return writeJSON(w, TrialReport{Params: params, Outcome: outcome, Agreed: outcome.Agreed()})
	default:
		return domain.NewArgumentError("format", string(f), "not supported for trials")
	}
}
