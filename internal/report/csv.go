// Package report writes scoring results as CSV and as an xlsx workbook
// documenting how the factor solution was reached.
package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/svi-cli/internal/model"
)

// scoreHeader returns the CSV header: the GEOID, each variable, then both
// estimators' composite forms.
func scoreHeader(variables []string) []string {
	header := append([]string{"GEOID"}, variables...)
	return append(header,
		"fa_unscaled", "fa_scaled", "fa_percentile", "fa_rank",
		"rm_unscaled", "rm_scaled", "rm_percentile", "rm_rank",
	)
}

func scoreRow(row model.ResultRow, variables []string) []string {
	out := make([]string, 0, len(variables)+9)
	out = append(out, row.AreaID)
	for _, v := range variables {
		if val, ok := row.Variables[v]; ok {
			out = append(out, formatFloat(val))
		} else {
			out = append(out, "")
		}
	}
	out = append(out,
		formatFloat(row.FA.Unscaled), formatFloat(row.FA.Scaled),
		formatFloat(row.FA.Percentile), strconv.Itoa(row.FA.Rank),
		formatFloat(row.RM.Unscaled), formatFloat(row.RM.Scaled),
		formatFloat(row.RM.Percentile), strconv.Itoa(row.RM.Rank),
	)
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteScores writes the per-area result rows as CSV.
func WriteScores(w io.Writer, res *model.ResultTable, variables []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoreHeader(variables)); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	for _, row := range res.Rows {
		if err := cw.Write(scoreRow(row, variables)); err != nil {
			return eris.Wrapf(err, "report: write row %s", row.AreaID)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

// WriteScoresFile writes the per-area result rows to a CSV file.
func WriteScoresFile(path string, res *model.ResultTable, variables []string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	if err := WriteScores(f, res, variables); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "report: close %s", path)
}
