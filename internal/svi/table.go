package svi

import (
	"go.uber.org/zap"

	"github.com/sells-group/svi-cli/internal/model"
)

// ValidateDefs rejects malformed variable definitions before any
// computation starts.
func ValidateDefs(defs []model.VariableDef) error {
	if len(defs) == 0 {
		return configErrorf("no variable definitions configured")
	}
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if d.Name == "" {
			return configErrorf("variable definition with empty name")
		}
		if _, dup := seen[d.Name]; dup {
			return configErrorf("duplicate variable definition %q", d.Name)
		}
		seen[d.Name] = struct{}{}
		if len(d.Numerator) == 0 {
			return configErrorf("variable %q references no numerator fields", d.Name)
		}
	}
	return nil
}

// BuildTable computes each derived variable as the ratio of its summed
// numerator fields to its summed denominator fields, per area. A cell whose
// required raw fields are unavailable, or whose denominator sums to zero,
// is marked missing rather than zeroed or dropped.
func BuildTable(raw model.RawTable, defs []model.VariableDef) (*model.Table, error) {
	if err := ValidateDefs(defs); err != nil {
		return nil, err
	}

	table := model.NewTable(raw.AreaIDs())
	var missing int
	for _, def := range defs {
		table.AddColumn(def.Name)
		for _, areaID := range table.Areas() {
			v, ok := ratio(raw, areaID, def)
			if !ok {
				missing++
				continue
			}
			table.Set(areaID, def.Name, model.Num(v))
		}
	}

	if missing > 0 {
		zap.L().Debug("svi: variable table built with holes",
			zap.Int("areas", len(table.Areas())),
			zap.Int("variables", len(defs)),
			zap.Int("missing_cells", missing),
		)
	}
	return table, nil
}

func ratio(raw model.RawTable, areaID string, def model.VariableDef) (float64, bool) {
	var num float64
	for _, f := range def.Numerator {
		v, ok := raw.Field(areaID, f)
		if !ok {
			return 0, false
		}
		num += v
	}

	den := 1.0
	if len(def.Denominator) > 0 {
		den = 0
		for _, f := range def.Denominator {
			v, ok := raw.Field(areaID, f)
			if !ok {
				return 0, false
			}
			den += v
		}
		if den == 0 {
			// Zero denominator makes the ratio undefined, not zero.
			return 0, false
		}
	}
	return num / den, true
}
