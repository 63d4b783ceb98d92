package svi

import (
	"go.uber.org/zap"

	"github.com/sells-group/svi-cli/internal/model"
)

// RankResult is the outcome of the rank-summation estimator. Composites
// are aligned with AreaIDs.
type RankResult struct {
	AreaIDs    []string
	Composites []model.Composite
	Variables  []string
}

// RunRankMethod ranks every area on every variable and sums the ranks.
// Rank 1 on a variable means most vulnerable, so a small rank sum marks
// high vulnerability; the scaled composite inverts the min-max so that 1
// is still the most vulnerable area.
func RunRankMethod(table *model.Table, defs []model.VariableDef) (*RankResult, error) {
	areas := table.Areas()
	if len(areas) == 0 {
		return nil, numericalErrorf("rank method over zero areas")
	}

	variables := make([]string, 0, len(defs))
	sums := make([]float64, len(areas))

	for _, def := range defs {
		if !table.HasColumn(def.Name) {
			continue
		}
		column := table.Column(def.Name)
		values := make([]float64, len(column))
		for i, v := range column {
			if !v.Valid {
				return nil, numericalErrorf("variable %q has missing values; completion must run first", def.Name)
			}
			values[i] = v.Float
			if def.Inverse {
				values[i] = -values[i]
			}
		}
		for i, r := range CompetitionRanks(values) {
			sums[i] += float64(r)
		}
		variables = append(variables, def.Name)
	}

	if len(variables) == 0 {
		return nil, numericalErrorf("rank method over zero variables")
	}

	scaled := MinMaxScale(sums)
	for i := range scaled {
		scaled[i] = 1 - scaled[i]
	}
	ranks := CompetitionRanks(scaled)
	pcts := Percentiles(ranks)

	composites := make([]model.Composite, len(areas))
	for i := range composites {
		composites[i] = model.Composite{
			Unscaled:   sums[i],
			Scaled:     scaled[i],
			Percentile: pcts[i],
			Rank:       ranks[i],
		}
	}

	zap.L().Debug("svi: rank method complete",
		zap.Int("areas", len(areas)),
		zap.Int("variables", len(variables)),
	)

	return &RankResult{
		AreaIDs:    areas,
		Composites: composites,
		Variables:  variables,
	}, nil
}
