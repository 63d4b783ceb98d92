package report

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/svi-cli/internal/model"
)

// WriteWorkbook writes the documentation workbook: the scores plus every
// intermediate the factor analysis produced on its way to the terminal
// solution.
func WriteWorkbook(path string, res *model.ResultTable, variables []string) error {
	f := xlsx.NewFile()

	if err := addScoresSheet(f, res, variables); err != nil {
		return err
	}
	if err := addEigenvalueSheet(f, res.Iterations); err != nil {
		return err
	}
	if err := addLoadingSheets(f, res.Iterations); err != nil {
		return err
	}
	if err := addVarianceSheet(f, res.Iterations); err != nil {
		return err
	}
	if err := addVariableSheet(f, res); err != nil {
		return err
	}
	if err := addCompletionSheet(f, &res.Audit); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func addScoresSheet(f *xlsx.File, res *model.ResultTable, variables []string) error {
	sheet, err := f.AddSheet("Scores")
	if err != nil {
		return eris.Wrap(err, "report: add scores sheet")
	}
	writeStringRow(sheet, scoreHeader(variables)...)
	for _, row := range res.Rows {
		writeStringRow(sheet, scoreRow(row, variables)...)
	}
	return nil
}

func addEigenvalueSheet(f *xlsx.File, iters []model.IterationRecord) error {
	sheet, err := f.AddSheet("Eigenvalues")
	if err != nil {
		return eris.Wrap(err, "report: add eigenvalue sheet")
	}
	writeStringRow(sheet, "iteration", "retained_factors", "eigenvalues")
	for _, it := range iters {
		row := sheet.AddRow()
		row.AddCell().SetInt(it.Iteration)
		row.AddCell().SetInt(it.KaiserCount)
		for _, v := range it.Eigenvalues {
			row.AddCell().SetFloat(v)
		}
	}
	return nil
}

func addLoadingSheets(f *xlsx.File, iters []model.IterationRecord) error {
	for _, it := range iters {
		sheet, err := f.AddSheet(fmt.Sprintf("Loadings %d", it.Iteration))
		if err != nil {
			return eris.Wrapf(err, "report: add loadings sheet %d", it.Iteration)
		}

		header := []string{"variable"}
		for i := range it.Solution.Stats {
			header = append(header, fmt.Sprintf("factor_%d", i+1))
		}
		header = append(header, "dropped")
		writeStringRow(sheet, header...)

		droppedSet := make(map[string]struct{}, len(it.Dropped))
		for _, d := range it.Dropped {
			droppedSet[d] = struct{}{}
		}
		for i, v := range it.Solution.Variables {
			row := sheet.AddRow()
			row.AddCell().SetString(v)
			for _, l := range it.Solution.Loadings[i] {
				row.AddCell().SetFloat(l)
			}
			if _, ok := droppedSet[v]; ok {
				row.AddCell().SetString("yes")
			} else {
				row.AddCell().SetString("")
			}
		}
	}
	return nil
}

func addVarianceSheet(f *xlsx.File, iters []model.IterationRecord) error {
	sheet, err := f.AddSheet("Variance")
	if err != nil {
		return eris.Wrap(err, "report: add variance sheet")
	}
	writeStringRow(sheet, "iteration", "factor", "ss_loadings", "proportion", "cumulative", "ratio")
	for _, it := range iters {
		for i, st := range it.Solution.Stats {
			row := sheet.AddRow()
			row.AddCell().SetInt(it.Iteration)
			row.AddCell().SetInt(i + 1)
			row.AddCell().SetFloat(st.SSLoadings)
			row.AddCell().SetFloat(st.Proportion)
			row.AddCell().SetFloat(st.Cumulative)
			row.AddCell().SetFloat(st.RatioVariance)
		}
	}
	return nil
}

func addVariableSheet(f *xlsx.File, res *model.ResultTable) error {
	sheet, err := f.AddSheet("Variables")
	if err != nil {
		return eris.Wrap(err, "report: add variable sheet")
	}
	writeStringRow(sheet, "included", "excluded")
	writeStringRow(sheet, strings.Join(res.Included, ", "), strings.Join(res.Excluded, ", "))
	return nil
}

func addCompletionSheet(f *xlsx.File, audit *model.CompletionAudit) error {
	sheet, err := f.AddSheet("Completion")
	if err != nil {
		return eris.Wrap(err, "report: add completion sheet")
	}
	writeStringRow(sheet, "GEOID", "variable", "method", "source", "value")
	for _, cell := range audit.Cells {
		row := sheet.AddRow()
		row.AddCell().SetString(cell.AreaID)
		row.AddCell().SetString(cell.Variable)
		row.AddCell().SetString(string(cell.Method))
		row.AddCell().SetString(cell.Source)
		row.AddCell().SetFloat(cell.Value)
	}
	for _, col := range audit.Columns {
		row := sheet.AddRow()
		row.AddCell().SetString("*")
		row.AddCell().SetString(col.Variable)
		row.AddCell().SetString(string(model.FillColumn))
		row.AddCell().SetString(string(col.FilledFrom))
		row.AddCell().SetString("")
	}
	return nil
}

func writeStringRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
