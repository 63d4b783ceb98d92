package svi

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/svi-cli/internal/model"
)

const (
	// kaiserThreshold retains factors whose eigenvalue is at least 1.
	kaiserThreshold = 1.0
	// loadingThreshold marks a variable significant when the absolute
	// loading on at least one factor exceeds it.
	loadingThreshold = 0.5
	// maxRefactorPasses caps the prune loop against pathological
	// non-convergence.
	maxRefactorPasses = 50

	pafMaxIterations = 200
	pafTolerance     = 1e-4

	varimaxMaxSweeps = 30
	varimaxTolerance = 1e-6
)

// FactorResult is the outcome of the iterative factor analysis estimator.
// Composites are aligned with AreaIDs. Iterations retains every pass's
// eigenvalues, loadings, and variance statistics for documentation output.
type FactorResult struct {
	AreaIDs    []string
	Composites []model.Composite
	Included   []string
	Excluded   []string
	Iterations []model.IterationRecord
}

// RunFactorAnalysis reduces the variable set to its significant latent
// factors and composes a scaled vulnerability index from the terminal
// solution. The candidate set is reassigned fresh at each iteration
// boundary; iteration stops when pruning reaches a fixed point.
func RunFactorAnalysis(table *model.Table, defs []model.VariableDef) (*FactorResult, error) {
	areas := table.Areas()
	if len(areas) == 0 {
		return nil, numericalErrorf("factor analysis over zero areas")
	}

	normalized, err := normalizedColumns(table, defs)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(defs))
	for _, d := range defs {
		if table.HasColumn(d.Name) {
			candidates = append(candidates, d.Name)
		}
	}
	if len(candidates) < 2 {
		return nil, numericalErrorf("degenerate factor model: %d candidate variable(s)", len(candidates))
	}

	var (
		iterations []model.IterationRecord
		terminal   *model.FactorSolution
	)

	for pass := 1; ; pass++ {
		if pass > maxRefactorPasses {
			return nil, numericalErrorf("factor analysis did not converge after %d passes", maxRefactorPasses)
		}

		corr, err := correlationMatrix(normalized, candidates, pass)
		if err != nil {
			return nil, err
		}

		eigenvalues, err := descendingEigenvalues(corr, pass)
		if err != nil {
			return nil, err
		}

		kaiser := 0
		for _, v := range eigenvalues {
			if v >= kaiserThreshold {
				kaiser++
			}
		}
		if kaiser == 0 {
			return nil, numericalErrorf("no significant factor structure at iteration %d", pass)
		}

		solution, err := extract(corr, candidates, kaiser, pass)
		if err != nil {
			return nil, err
		}

		kept := significantVariables(solution)
		dropped := difference(candidates, kept)

		iterations = append(iterations, model.IterationRecord{
			Iteration:   pass,
			Eigenvalues: eigenvalues,
			KaiserCount: kaiser,
			Solution:    *solution,
			Dropped:     dropped,
		})

		if len(kept) < 2 {
			return nil, numericalErrorf("degenerate factor model at iteration %d: %d significant variable(s)", pass, len(kept))
		}

		if len(dropped) == 0 {
			terminal = solution
			break
		}
		// Fresh candidate set for the next pass; never mutated in place.
		candidates = kept
	}

	composites := composeFactorScores(areas, normalized, terminal)

	included := append([]string(nil), terminal.Variables...)
	var all []string
	for _, d := range defs {
		all = append(all, d.Name)
	}
	excluded := difference(all, included)

	zap.L().Info("svi: factor analysis converged",
		zap.Int("iterations", len(iterations)),
		zap.Int("factors", len(terminal.Stats)),
		zap.Int("included", len(included)),
		zap.Int("excluded", len(excluded)),
	)

	return &FactorResult{
		AreaIDs:    areas,
		Composites: composites,
		Included:   included,
		Excluded:   excluded,
		Iterations: iterations,
	}, nil
}

// normalizedColumns min-max normalizes every variable column to [0,1] and
// flips inverse variables. Completion must have run first: a missing cell
// or a zero-variance column is a numerical error here, not something to
// paper over.
func normalizedColumns(table *model.Table, defs []model.VariableDef) (map[string][]float64, error) {
	out := make(map[string][]float64, len(defs))
	for _, def := range defs {
		if !table.HasColumn(def.Name) {
			continue
		}
		column := table.Column(def.Name)
		raw := make([]float64, len(column))
		for i, v := range column {
			if !v.Valid {
				return nil, numericalErrorf("variable %q has missing values; completion must run first", def.Name)
			}
			raw[i] = v.Float
		}
		scaled := MinMaxScale(raw)
		if allZero(scaled) && len(raw) > 1 {
			return nil, numericalErrorf("variable %q has zero variance", def.Name)
		}
		if def.Inverse {
			for i := range scaled {
				scaled[i] = 1 - scaled[i]
			}
		}
		out[def.Name] = scaled
	}
	return out, nil
}

func allZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func correlationMatrix(normalized map[string][]float64, candidates []string, pass int) (*mat.SymDense, error) {
	n := len(normalized[candidates[0]])
	data := make([]float64, 0, n*len(candidates))
	for row := 0; row < n; row++ {
		for _, v := range candidates {
			data = append(data, normalized[v][row])
		}
	}
	x := mat.NewDense(n, len(candidates), data)

	corr := &mat.SymDense{}
	stat.CorrelationMatrix(corr, x, nil)

	for i := 0; i < len(candidates); i++ {
		for j := 0; j <= i; j++ {
			if math.IsNaN(corr.At(i, j)) {
				return nil, numericalErrorf("correlation undefined between %q and %q at iteration %d", candidates[i], candidates[j], pass)
			}
		}
	}
	return corr, nil
}

// descendingEigenvalues performs the maximum-factor extraction: the
// eigenvalues of the full correlation matrix, largest first.
func descendingEigenvalues(corr *mat.SymDense, pass int) ([]float64, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(corr, false); !ok {
		return nil, numericalErrorf("eigendecomposition failed at iteration %d", pass)
	}
	vals := eig.Values(nil)
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	return vals, nil
}

// extract re-runs the extraction with a fixed factor count: principal-axis
// iteration on the reduced correlation matrix followed by varimax rotation,
// producing the rotated loading matrix and its variance statistics.
func extract(corr *mat.SymDense, variables []string, factors int, pass int) (*model.FactorSolution, error) {
	loadings, err := principalAxis(corr, factors, pass)
	if err != nil {
		return nil, err
	}
	varimax(loadings)
	canonicalizeSigns(loadings)
	orderByVariance(loadings)

	p := len(variables)
	stats := make([]model.FactorStats, factors)
	var sumProp float64
	for f := 0; f < factors; f++ {
		var ss float64
		for i := 0; i < p; i++ {
			ss += loadings[i][f] * loadings[i][f]
		}
		stats[f].SSLoadings = ss
		stats[f].Proportion = ss / float64(p)
		sumProp += stats[f].Proportion
	}
	cum := 0.0
	for f := range stats {
		cum += stats[f].Proportion
		stats[f].Cumulative = cum
		if sumProp > 0 {
			stats[f].RatioVariance = stats[f].Proportion / sumProp
		}
	}

	return &model.FactorSolution{
		Variables: append([]string(nil), variables...),
		Loadings:  loadings,
		Stats:     stats,
	}, nil
}

// principalAxis iterates communality estimates on the reduced correlation
// matrix. Initial communalities are each variable's largest absolute
// off-diagonal correlation.
func principalAxis(corr *mat.SymDense, factors, pass int) ([][]float64, error) {
	p := corr.SymmetricDim()

	h := make([]float64, p)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i == j {
				continue
			}
			if a := math.Abs(corr.At(i, j)); a > h[i] {
				h[i] = a
			}
		}
	}

	reduced := mat.NewSymDense(p, nil)
	loadings := make([][]float64, p)
	for i := range loadings {
		loadings[i] = make([]float64, factors)
	}

	for iter := 0; iter < pafMaxIterations; iter++ {
		for i := 0; i < p; i++ {
			for j := 0; j <= i; j++ {
				if i == j {
					reduced.SetSym(i, i, h[i])
				} else {
					reduced.SetSym(i, j, corr.At(i, j))
				}
			}
		}

		var eig mat.EigenSym
		if ok := eig.Factorize(reduced, true); !ok {
			return nil, numericalErrorf("eigendecomposition failed at iteration %d", pass)
		}
		vals := eig.Values(nil)
		var vecs mat.Dense
		eig.VectorsTo(&vecs)

		// Eigenvalues come back ascending; take the top `factors`.
		for i := 0; i < p; i++ {
			for f := 0; f < factors; f++ {
				col := p - 1 - f
				lambda := math.Max(vals[col], 0)
				loadings[i][f] = vecs.At(i, col) * math.Sqrt(lambda)
			}
		}

		maxDelta := 0.0
		for i := 0; i < p; i++ {
			var nh float64
			for f := 0; f < factors; f++ {
				nh += loadings[i][f] * loadings[i][f]
			}
			nh = math.Min(nh, 1)
			if d := math.Abs(nh - h[i]); d > maxDelta {
				maxDelta = d
			}
			h[i] = nh
		}
		if maxDelta < pafTolerance {
			break
		}
	}

	return loadings, nil
}

// varimax applies raw varimax rotation in place via pairwise planar
// rotations, maximizing the variance of squared loadings per factor.
func varimax(loadings [][]float64) {
	p := len(loadings)
	if p == 0 {
		return
	}
	k := len(loadings[0])
	if k < 2 {
		return
	}

	for sweep := 0; sweep < varimaxMaxSweeps; sweep++ {
		maxAngle := 0.0
		for a := 0; a < k-1; a++ {
			for b := a + 1; b < k; b++ {
				var sumU, sumV, sumC, sumD float64
				for i := 0; i < p; i++ {
					x, y := loadings[i][a], loadings[i][b]
					u := x*x - y*y
					v := 2 * x * y
					sumU += u
					sumV += v
					sumC += u*u - v*v
					sumD += 2 * u * v
				}
				num := sumD - 2*sumU*sumV/float64(p)
				den := sumC - (sumU*sumU-sumV*sumV)/float64(p)
				angle := math.Atan2(num, den) / 4
				if math.Abs(angle) < varimaxTolerance {
					continue
				}
				if math.Abs(angle) > maxAngle {
					maxAngle = math.Abs(angle)
				}
				cos, sin := math.Cos(angle), math.Sin(angle)
				for i := 0; i < p; i++ {
					x, y := loadings[i][a], loadings[i][b]
					loadings[i][a] = x*cos + y*sin
					loadings[i][b] = -x*sin + y*cos
				}
			}
		}
		if maxAngle < varimaxTolerance {
			break
		}
	}
}

// canonicalizeSigns flips any factor whose loadings sum negative, removing
// the eigenvector sign ambiguity.
func canonicalizeSigns(loadings [][]float64) {
	if len(loadings) == 0 {
		return
	}
	for f := 0; f < len(loadings[0]); f++ {
		var sum float64
		for i := range loadings {
			sum += loadings[i][f]
		}
		if sum < 0 {
			for i := range loadings {
				loadings[i][f] = -loadings[i][f]
			}
		}
	}
}

// orderByVariance sorts factor columns by sum of squared loadings,
// descending, so factor 1 always explains the most variance.
func orderByVariance(loadings [][]float64) {
	if len(loadings) == 0 {
		return
	}
	k := len(loadings[0])
	ss := make([]float64, k)
	for f := 0; f < k; f++ {
		for i := range loadings {
			ss[f] += loadings[i][f] * loadings[i][f]
		}
	}
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return ss[order[a]] > ss[order[b]] })

	for i := range loadings {
		row := make([]float64, k)
		for f, src := range order {
			row[f] = loadings[i][src]
		}
		loadings[i] = row
	}
}

// significantVariables keeps variables loading above the threshold on at
// least one factor, preserving candidate order.
func significantVariables(sol *model.FactorSolution) []string {
	var kept []string
	for i, v := range sol.Variables {
		for _, l := range sol.Loadings[i] {
			if math.Abs(l) > loadingThreshold {
				kept = append(kept, v)
				break
			}
		}
	}
	return kept
}

func difference(all, kept []string) []string {
	in := make(map[string]struct{}, len(kept))
	for _, v := range kept {
		in[v] = struct{}{}
	}
	var out []string
	for _, v := range all {
		if _, ok := in[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// composeFactorScores builds the per-area composite from the terminal
// solution: factor scores weighted by each factor's ratio of variance,
// then min-max scaled, ranked, and converted to percentiles.
func composeFactorScores(areas []string, normalized map[string][]float64, sol *model.FactorSolution) []model.Composite {
	n := len(areas)
	unscaled := make([]float64, n)
	for row := 0; row < n; row++ {
		var composite float64
		for f, st := range sol.Stats {
			var score float64
			for i, v := range sol.Variables {
				score += normalized[v][row] * sol.Loadings[i][f]
			}
			composite += score * st.RatioVariance
		}
		unscaled[row] = composite
	}
	return assembleComposites(unscaled)
}

// assembleComposites derives the scaled/percentile/rank forms shared by
// both estimators from an unscaled score vector.
func assembleComposites(unscaled []float64) []model.Composite {
	scaled := MinMaxScale(unscaled)
	ranks := CompetitionRanks(scaled)
	pcts := Percentiles(ranks)

	out := make([]model.Composite, len(unscaled))
	for i := range out {
		out[i] = model.Composite{
			Unscaled:   unscaled[i],
			Scaled:     scaled[i],
			Percentile: pcts[i],
			Rank:       ranks[i],
		}
	}
	return out
}
