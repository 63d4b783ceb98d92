package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/svi-cli/internal/census"
	"github.com/sells-group/svi-cli/internal/geo"
	"github.com/sells-group/svi-cli/internal/input"
	"github.com/sells-group/svi-cli/internal/model"
	"github.com/sells-group/svi-cli/internal/report"
	"github.com/sells-group/svi-cli/internal/svi"
)

var (
	computeLevel     string
	computeDataDir   string
	computeAdjacency string
	computeOutputDir string
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Score all areas at one census level",
	Long:  "Builds the derived variable table from ACS extracts, completes missing values, runs both estimators, and writes scores plus the documentation workbook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		levelName := computeLevel
		if levelName == "" {
			levelName = cfg.Census.Level
		}
		level, err := geo.ParseLevel(levelName)
		if err != nil {
			return err
		}

		dataDir := computeDataDir
		if dataDir == "" {
			dataDir = cfg.Census.DataDir
		}

		defs, err := loadDefs()
		if err != nil {
			return err
		}

		raw, parents, err := loadLevelData(dataDir, level, defs)
		if err != nil {
			return err
		}

		adj, err := loadAdjacency(level)
		if err != nil {
			return err
		}

		hierarchy, err := geo.BuildHierarchy(raw.AreaIDs(), level)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(defs))
		for _, d := range defs {
			names = append(names, d.Name)
		}

		p := &svi.Pipeline{
			Defs: defs,
			Completer: &svi.Completer{
				MinNeighbors: cfg.Analysis.MinNeighbors,
				Interpolate:  cfg.Analysis.Interpolate,
				Adjacency:    adj,
				Hierarchy:    hierarchy,
				Detail:       raw,
				Defs:         census.ByName(defs),
			},
			Parents: parents,
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		run, err := st.CreateRun(ctx, model.RunParams{
			Year:         cfg.Census.Year,
			Level:        level,
			Variables:    names,
			Inverse:      cfg.Analysis.Inverse,
			Interpolate:  cfg.Analysis.Interpolate,
			MinNeighbors: cfg.Analysis.MinNeighbors,
		})
		if err != nil {
			return err
		}
		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
			return err
		}

		res, err := p.Run(ctx, raw)
		if err != nil {
			if ferr := st.FailRun(ctx, run.ID, err.Error()); ferr != nil {
				zap.L().Error("record failure", zap.Error(ferr))
			}
			return err
		}

		if err := st.SaveResults(ctx, run.ID, res); err != nil {
			return err
		}
		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete); err != nil {
			return err
		}

		if err := writeReports(run.ID, res, names); err != nil {
			return err
		}

		zap.L().Info("scoring complete",
			zap.String("run_id", run.ID),
			zap.String("level", string(level)),
			zap.Int("areas", len(res.Rows)),
			zap.Strings("included", res.Included),
			zap.Strings("excluded", res.Excluded),
			zap.Bool("concordant", res.Concordant),
		)
		fmt.Println(run.ID)
		return nil
	},
}

// loadDefs resolves the variable set for the run: the built-in catalog or a
// YAML file, narrowed by the include/exclude/inverse config.
func loadDefs() ([]model.VariableDef, error) {
	defs := census.Catalog()
	if cfg.Analysis.VariablesFile != "" {
		var err error
		defs, err = input.LoadVariables(cfg.Analysis.VariablesFile)
		if err != nil {
			return nil, err
		}
	}
	return input.SelectVariables(defs, cfg.Analysis.Include, cfg.Analysis.Exclude, cfg.Analysis.Inverse)
}

// loadLevelData reads the analysis-level extract plus whatever parent-level
// extracts exist, building the parent variable tables the completion engine
// walks. A missing parent file narrows the fallback chain, it is not fatal.
func loadLevelData(dataDir string, level model.Level, defs []model.VariableDef) (model.RawTable, []svi.ParentLevel, error) {
	raw, err := input.LoadRawTable(filepath.Join(dataDir, string(level)+".csv"))
	if err != nil {
		return nil, nil, err
	}
	input.FilterLowPopulation(raw, census.TotalPopulationField, float64(cfg.Census.MinPopulation))
	input.FilterSpecialUse(raw, census.HouseholdSizeField)

	var parents []svi.ParentLevel
	for _, pl := range model.ParentLevels(level) {
		path := filepath.Join(dataDir, string(pl)+".csv")
		praw, err := input.LoadRawTable(path)
		if err != nil {
			if os.IsNotExist(eris.Cause(err)) {
				zap.L().Warn("parent extract missing, fallback chain narrowed",
					zap.String("level", string(pl)))
				continue
			}
			return nil, nil, err
		}
		pt, err := svi.BuildTable(praw, defs)
		if err != nil {
			return nil, nil, err
		}
		parents = append(parents, svi.ParentLevel{Level: pl, Table: pt})
	}
	return raw, parents, nil
}

// loadAdjacency prefers a precomputed neighbor CSV and otherwise derives
// queen contiguity from the level's boundary shapefile. Interpolation is
// simply skipped when neither source is configured.
func loadAdjacency(level model.Level) (model.Adjacency, error) {
	if computeAdjacency != "" {
		return input.LoadAdjacency(computeAdjacency)
	}
	if cfg.Census.BoundaryDir == "" {
		return nil, nil
	}
	polys, err := geo.LoadBoundaries(filepath.Join(cfg.Census.BoundaryDir, string(level)+".shp"), "GEOID")
	if err != nil {
		return nil, err
	}
	return geo.BuildAdjacency(polys), nil
}

func writeReports(runID string, res *model.ResultTable, variables []string) error {
	outDir := computeOutputDir
	if outDir == "" {
		outDir = cfg.Report.OutputDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", outDir)
	}

	csvPath := filepath.Join(outDir, fmt.Sprintf("scores-%s.csv", runID))
	if err := report.WriteScoresFile(csvPath, res, variables); err != nil {
		return err
	}
	zap.L().Info("wrote scores", zap.String("path", csvPath))

	if cfg.Report.Workbook {
		xlsxPath := filepath.Join(outDir, fmt.Sprintf("svi-%s.xlsx", runID))
		if err := report.WriteWorkbook(xlsxPath, res, variables); err != nil {
			return err
		}
		zap.L().Info("wrote workbook", zap.String("path", xlsxPath))
	}
	return nil
}

func init() {
	computeCmd.Flags().StringVar(&computeLevel, "level", "", "census level to score: bg, tract, county, state (default from config)")
	computeCmd.Flags().StringVar(&computeDataDir, "data-dir", "", "directory of per-level ACS extracts (default from config)")
	computeCmd.Flags().StringVar(&computeAdjacency, "adjacency", "", "precomputed neighbor CSV, overrides shapefile-derived contiguity")
	computeCmd.Flags().StringVar(&computeOutputDir, "output-dir", "", "report output directory (default from config)")
	rootCmd.AddCommand(computeCmd)
}
