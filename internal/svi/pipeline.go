package svi

import (
	"context"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/svi-cli/internal/model"
)

// Pipeline runs the full scoring sequence: ratio table construction,
// missing-value completion, then both estimators over the same cleaned
// table, merged into one result keyed by area.
type Pipeline struct {
	Defs      []model.VariableDef
	Completer *Completer
	Parents   []ParentLevel
}

// Run executes the pipeline against the raw field table for the analysis
// level. The two estimators run concurrently; both read the completed
// table and never mutate it.
func (p *Pipeline) Run(ctx context.Context, raw model.RawTable) (*model.ResultTable, error) {
	if err := ValidateDefs(p.Defs); err != nil {
		return nil, err
	}

	table, err := BuildTable(raw, p.Defs)
	if err != nil {
		return nil, err
	}

	audit := &model.CompletionAudit{}
	if p.Completer != nil {
		audit, err = p.Completer.Complete(table, p.Parents)
		if err != nil {
			return nil, err
		}
	}

	var (
		fa *FactorResult
		rm *RankResult
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fa, err = RunFactorAnalysis(table, p.Defs)
		return err
	})
	g.Go(func() error {
		var err error
		rm, err = RunRankMethod(table, p.Defs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	concordant := reconcile(fa, rm)

	areas := table.Areas()
	rows := make([]model.ResultRow, len(areas))
	for i, areaID := range areas {
		vars := make(map[string]float64, len(p.Defs))
		for _, def := range p.Defs {
			if v := table.Get(areaID, def.Name); v.Valid {
				vars[def.Name] = v.Float
			}
		}
		rows[i] = model.ResultRow{
			AreaID:    areaID,
			Variables: vars,
			FA:        fa.Composites[i],
			RM:        rm.Composites[i],
		}
	}

	zap.L().Info("svi: pipeline complete",
		zap.Int("areas", len(areas)),
		zap.Int("variables", len(p.Defs)),
		zap.Bool("concordant", concordant),
	)

	return &model.ResultTable{
		Rows:       rows,
		Included:   fa.Included,
		Excluded:   fa.Excluded,
		Iterations: fa.Iterations,
		Concordant: concordant,
		Audit:      *audit,
	}, nil
}

// reconcile orients the factor scores against the rank method. Factor
// loadings carry a residual sign ambiguity, so when the two estimators'
// rank orders correlate negatively the factor composites are flipped to
// agree, and the run is flagged discordant.
func reconcile(fa *FactorResult, rm *RankResult) bool {
	if len(fa.Composites) < 2 {
		return true
	}

	faRanks := make([]float64, len(fa.Composites))
	rmRanks := make([]float64, len(rm.Composites))
	for i := range fa.Composites {
		faRanks[i] = float64(fa.Composites[i].Rank)
		rmRanks[i] = float64(rm.Composites[i].Rank)
	}

	r, err := stats.Pearson(faRanks, rmRanks)
	if err != nil || r >= 0 {
		return true
	}

	zap.L().Warn("svi: estimators disagree on orientation, flipping factor scores",
		zap.Float64("rank_correlation", r),
	)

	unscaled := make([]float64, len(fa.Composites))
	for i, c := range fa.Composites {
		unscaled[i] = -c.Unscaled
	}
	fa.Composites = assembleComposites(unscaled)
	return false
}
