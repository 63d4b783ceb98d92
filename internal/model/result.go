package model

// FillMethod identifies how a missing cell was repaired.
type FillMethod string

const (
	FillInterpolated FillMethod = "interpolated"
	FillParent       FillMethod = "parent"
	FillColumn       FillMethod = "column_fallback"
)

// CellFill is the cell-level completion audit record.
type CellFill struct {
	AreaID   string     `json:"area_id"`
	Variable string     `json:"variable"`
	Method   FillMethod `json:"method"`
	// Source identifies where the fill came from: a parent area ID for
	// hierarchy fills, or "pooled(n=..)" for interpolation.
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

// ColumnFill is the column-level completion audit record, emitted when an
// entire variable column had to be taken from a coarser level.
type ColumnFill struct {
	Variable   string `json:"variable"`
	FilledFrom Level  `json:"filled_from"`
}

// CompletionAudit collects the observable side effects of a completion run.
type CompletionAudit struct {
	Cells   []CellFill   `json:"cells,omitempty"`
	Columns []ColumnFill `json:"columns,omitempty"`
}

// Empty reports whether the audit recorded no repairs.
func (a *CompletionAudit) Empty() bool {
	return len(a.Cells) == 0 && len(a.Columns) == 0
}

// Composite is one estimator's score for a single area in all four forms.
type Composite struct {
	Unscaled   float64 `json:"unscaled"`
	Scaled     float64 `json:"scaled"`
	Percentile float64 `json:"percentile"`
	Rank       int     `json:"rank"`
}

// FactorStats holds the variance statistics for one extracted factor.
type FactorStats struct {
	SSLoadings    float64 `json:"ss_loadings"`
	Proportion    float64 `json:"proportion_variance"`
	Cumulative    float64 `json:"cumulative_variance"`
	RatioVariance float64 `json:"ratio_variance"`
}

// FactorSolution is the product of one extraction: loadings per retained
// variable per factor plus variance statistics, factors ordered by
// proportion of variance descending.
type FactorSolution struct {
	Variables []string      `json:"variables"`
	Loadings  [][]float64   `json:"loadings"` // [variable][factor]
	Stats     []FactorStats `json:"stats"`
}

// IterationRecord captures one refinement iteration of the factor analysis
// estimator for the documentation artifact interface.
type IterationRecord struct {
	Iteration   int            `json:"iteration"`
	Eigenvalues []float64      `json:"eigenvalues"`
	KaiserCount int            `json:"kaiser_count"`
	Solution    FactorSolution `json:"solution"`
	Dropped     []string       `json:"dropped,omitempty"`
}

// ResultRow is the merged per-area output of both estimators plus the
// cleaned input variable values.
type ResultRow struct {
	AreaID    string             `json:"area_id"`
	Variables map[string]float64 `json:"variables"`
	FA        Composite          `json:"fa"`
	RM        Composite          `json:"rm"`
}

// ResultTable is the final assembled output keyed by area, in sorted area
// order, along with the estimator byproducts needed for reporting.
type ResultTable struct {
	Rows       []ResultRow       `json:"rows"`
	Included   []string          `json:"included"`
	Excluded   []string          `json:"excluded"`
	Iterations []IterationRecord `json:"iterations"`
	// Concordant is false when the two estimators' rank orders pointed in
	// opposite directions before the factor scores were reoriented.
	Concordant bool            `json:"concordant"`
	Audit      CompletionAudit `json:"audit"`
}
