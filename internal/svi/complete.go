package svi

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/svi-cli/internal/model"
)

// DefaultMinNeighbors is the minimum pooled sample count required before a
// missing statistic is recomputed from neighboring areas.
const DefaultMinNeighbors = 40

// ParentLevel pairs a coarser hierarchy level with its variable table.
// Parent tables are read-only fallback sources; they are never completed
// themselves.
type ParentLevel struct {
	Level model.Level
	Table *model.Table
}

// Completer eliminates missing values from a variable table without
// introducing zeros or dropping areas.
type Completer struct {
	// MinNeighbors guards interpolation; zero means DefaultMinNeighbors.
	MinNeighbors int
	// Interpolate enables the neighbor-pooling tier. When false every
	// repair goes straight to the hierarchy walk.
	Interpolate bool
	// Adjacency is the symmetric same-level neighbor relation.
	Adjacency model.Adjacency
	// Hierarchy maps each area to its ancestor IDs, aligned with the
	// parent tables passed to Complete.
	Hierarchy model.Hierarchy
	// Detail holds the detail-table raw fields at the analysis level.
	Detail model.RawTable
	// Defs indexes variable definitions by name, for detail specs.
	Defs map[string]model.VariableDef
}

func (c *Completer) minNeighbors() float64 {
	if c.MinNeighbors > 0 {
		return float64(c.MinNeighbors)
	}
	return DefaultMinNeighbors
}

// Complete repairs every missing cell of table in place and returns the
// audit trail. Identical inputs always produce identical fills: cells are
// visited in deterministic order and interpolation eligibility is judged
// against a snapshot of the incoming table, never against values filled
// earlier in the same run.
func (c *Completer) Complete(table *model.Table, parents []ParentLevel) (*model.CompletionAudit, error) {
	audit := &model.CompletionAudit{}

	if err := c.fillEmptyColumns(table, parents, audit); err != nil {
		return nil, err
	}

	snapshot := table.Clone()
	for _, cell := range snapshot.MissingCells() {
		areaID, variable := cell[0], cell[1]

		if filled, rec := c.interpolate(snapshot, areaID, variable); filled {
			table.Set(areaID, variable, model.Num(rec.Value))
			audit.Cells = append(audit.Cells, rec)
			continue
		}

		rec, err := c.parentFill(areaID, variable, parents)
		if err != nil {
			return nil, err
		}
		table.Set(areaID, variable, model.Num(rec.Value))
		audit.Cells = append(audit.Cells, rec)
	}

	if !audit.Empty() {
		zap.L().Info("svi: completion repaired holes",
			zap.Int("cells_filled", len(audit.Cells)),
			zap.Int("columns_filled", len(audit.Columns)),
		)
	}
	return audit, nil
}

// fillEmptyColumns substitutes the next coarser level's values for any
// variable column that is missing across every area at this level.
func (c *Completer) fillEmptyColumns(table *model.Table, parents []ParentLevel, audit *model.CompletionAudit) error {
	for _, col := range table.Columns() {
		if !table.ColumnAllMissing(col) {
			continue
		}

		depth := -1
		for i, p := range parents {
			if p.Table.HasColumn(col) && !p.Table.ColumnAllMissing(col) {
				depth = i
				break
			}
		}
		if depth < 0 {
			return dataErrorf("variable %q missing at every level of the hierarchy", col)
		}

		level := parents[depth].Level
		for _, areaID := range table.Areas() {
			anc := c.ancestorAt(areaID, depth)
			v := parents[depth].Table.Get(anc, col)
			if !v.Valid {
				// The parent itself has a hole; keep walking up for
				// this one area.
				var err error
				v, anc, level, err = c.walkUp(areaID, col, parents, depth+1)
				if err != nil {
					return dataErrorf("variable %q for area %s: hierarchy exhausted during column fallback", col, areaID)
				}
			}
			table.Set(areaID, col, v)
			audit.Cells = append(audit.Cells, model.CellFill{
				AreaID:   areaID,
				Variable: col,
				Method:   model.FillColumn,
				Source:   anc,
				Value:    v.Float,
			})
		}
		audit.Columns = append(audit.Columns, model.ColumnFill{Variable: col, FilledFrom: level})
		zap.L().Warn("svi: whole column substituted from coarser level",
			zap.String("variable", col),
			zap.String("filled_from", string(level)),
		)
	}
	return nil
}

func (c *Completer) ancestorAt(areaID string, depth int) string {
	anc := c.Hierarchy[areaID]
	if depth < len(anc) {
		return anc[depth]
	}
	return ""
}

func (c *Completer) walkUp(areaID, variable string, parents []ParentLevel, from int) (model.Value, string, model.Level, error) {
	for i := from; i < len(parents); i++ {
		anc := c.ancestorAt(areaID, i)
		if anc == "" {
			break
		}
		if v := parents[i].Table.Get(anc, variable); v.Valid {
			return v, anc, parents[i].Level, nil
		}
	}
	return model.Missing, "", "", dataErrorf("hierarchy exhausted for area %s variable %q", areaID, variable)
}

// parentFill walks the ancestor chain until a valid value is found.
func (c *Completer) parentFill(areaID, variable string, parents []ParentLevel) (model.CellFill, error) {
	v, anc, _, err := c.walkUp(areaID, variable, parents, 0)
	if err != nil {
		return model.CellFill{}, err
	}
	return model.CellFill{
		AreaID:   areaID,
		Variable: variable,
		Method:   model.FillParent,
		Source:   anc,
		Value:    v.Float,
	}, nil
}

// interpolate attempts the neighbor-pooling tier for one missing cell. It
// returns false when the tier does not apply or the pooled sample is too
// small, in which case the caller falls through to the hierarchy walk.
func (c *Completer) interpolate(snapshot *model.Table, areaID, variable string) (bool, model.CellFill) {
	if !c.Interpolate {
		return false, model.CellFill{}
	}
	def, ok := c.Defs[variable]
	if !ok || def.Detail == nil {
		return false, model.CellFill{}
	}
	spec := def.Detail

	var total float64
	freqs := make([]float64, len(spec.Bins))
	for _, neighbor := range c.Adjacency.Neighbors(areaID) {
		if !snapshot.Get(neighbor, variable).Valid {
			continue
		}
		t, ok := c.Detail.Field(neighbor, spec.TotalField)
		if !ok {
			continue
		}
		total += t
		for i, bin := range spec.Bins {
			for _, f := range bin.Fields {
				if v, ok := c.Detail.Field(neighbor, f); ok {
					freqs[i] += v
				}
			}
		}
	}

	if total < c.minNeighbors() {
		return false, model.CellFill{}
	}

	median, ok := groupedMedian(spec.Bins, freqs, total)
	if !ok {
		return false, model.CellFill{}
	}
	return true, model.CellFill{
		AreaID:   areaID,
		Variable: variable,
		Method:   model.FillInterpolated,
		Source:   fmt.Sprintf("pooled(n=%.0f)", total),
		Value:    median,
	}
}

// groupedMedian recomputes a median from binned frequencies. When the
// median falls in the lowest bin there is not enough information to place
// it, and the caller falls back to the hierarchy.
func groupedMedian(bins []model.DetailBin, freqs []float64, total float64) (float64, bool) {
	half := total / 2

	idx := -1
	cum := 0.0
	for i, f := range freqs {
		cum += f
		if cum >= half {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return 0, false
	}

	cumBefore := 0.0
	for i := 0; i < idx; i++ {
		cumBefore += freqs[i]
	}
	needed := math.Round(half) - cumBefore

	var p float64
	if freqs[idx] > 0 {
		p = needed / freqs[idx]
	}
	width := bins[idx].High - bins[idx].Low
	return bins[idx].Low + p*width, true
}
