package svi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/svi-cli/internal/model"
)

func tableWith(t *testing.T, areaIDs []string, col string, values map[string]float64) *model.Table {
	t.Helper()
	table := model.NewTable(areaIDs)
	table.AddColumn(col)
	for id, v := range values {
		table.Set(id, col, model.Num(v))
	}
	return table
}

func testHierarchy(areaIDs []string) model.Hierarchy {
	h := model.Hierarchy{}
	for _, id := range areaIDs {
		h[id] = []string{"c1", "s1"}
	}
	return h
}

func testParents(t *testing.T, countyVals, stateVals map[string]float64) []ParentLevel {
	t.Helper()
	return []ParentLevel{
		{Level: model.LevelCounty, Table: tableWith(t, []string{"c1"}, "V", countyVals)},
		{Level: model.LevelState, Table: tableWith(t, []string{"s1"}, "V", stateVals)},
	}
}

func TestCompleteParentFill(t *testing.T) {
	areas := []string{"a", "b"}
	table := tableWith(t, areas, "V", map[string]float64{"b": 0.3})
	parents := testParents(t, map[string]float64{"c1": 0.5}, map[string]float64{"s1": 0.9})

	c := &Completer{Hierarchy: testHierarchy(areas)}
	audit, err := c.Complete(table, parents)
	require.NoError(t, err)

	got := table.Get("a", "V")
	require.True(t, got.Valid)
	assert.InDelta(t, 0.5, got.Float, 1e-9)
	// Valid cells are untouched.
	assert.InDelta(t, 0.3, table.Get("b", "V").Float, 1e-9)

	require.Len(t, audit.Cells, 1)
	assert.Equal(t, model.FillParent, audit.Cells[0].Method)
	assert.Equal(t, "c1", audit.Cells[0].Source)
	assert.Empty(t, audit.Columns)
}

func TestCompleteParentFillSkipsParentHole(t *testing.T) {
	areas := []string{"a", "b"}
	table := tableWith(t, areas, "V", map[string]float64{"b": 0.3})
	// The county cell is itself missing, so the fill comes from the state.
	parents := testParents(t, map[string]float64{}, map[string]float64{"s1": 0.9})

	c := &Completer{Hierarchy: testHierarchy(areas)}
	audit, err := c.Complete(table, parents)
	require.NoError(t, err)

	assert.InDelta(t, 0.9, table.Get("a", "V").Float, 1e-9)
	require.Len(t, audit.Cells, 1)
	assert.Equal(t, "s1", audit.Cells[0].Source)
}

func TestCompleteHierarchyExhausted(t *testing.T) {
	areas := []string{"a", "b"}
	table := tableWith(t, areas, "V", map[string]float64{"b": 0.3})
	parents := testParents(t, map[string]float64{}, map[string]float64{})

	c := &Completer{Hierarchy: testHierarchy(areas)}
	_, err := c.Complete(table, parents)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "V")
}

func TestCompleteColumnFallback(t *testing.T) {
	areas := []string{"a", "b"}
	table := tableWith(t, areas, "V", nil)
	parents := testParents(t, map[string]float64{"c1": 0.4}, map[string]float64{"s1": 0.9})

	c := &Completer{Hierarchy: testHierarchy(areas)}
	audit, err := c.Complete(table, parents)
	require.NoError(t, err)

	for _, id := range areas {
		v := table.Get(id, "V")
		require.True(t, v.Valid)
		assert.InDelta(t, 0.4, v.Float, 1e-9)
	}

	require.Len(t, audit.Columns, 1)
	assert.Equal(t, "V", audit.Columns[0].Variable)
	assert.Equal(t, model.LevelCounty, audit.Columns[0].FilledFrom)
	require.Len(t, audit.Cells, 2)
	for _, cell := range audit.Cells {
		assert.Equal(t, model.FillColumn, cell.Method)
	}
}

func TestCompleteColumnMissingEverywhere(t *testing.T) {
	areas := []string{"a", "b"}
	table := tableWith(t, areas, "V", nil)
	parents := testParents(t, map[string]float64{}, map[string]float64{})

	c := &Completer{Hierarchy: testHierarchy(areas)}
	_, err := c.Complete(table, parents)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every level")
}

func medianTestSpec() *model.DetailSpec {
	return &model.DetailSpec{
		TotalField: "total",
		Bins: []model.DetailBin{
			{Low: 0, High: 10, Fields: []string{"f0"}},
			{Low: 10, High: 20, Fields: []string{"f1"}},
			{Low: 20, High: 30, Fields: []string{"f2"}},
		},
	}
}

func medianCompleter(areas []string, detail model.RawTable) *Completer {
	adj := model.Adjacency{}
	adj.Add("a", "b")
	adj.Add("a", "c")
	return &Completer{
		Interpolate: true,
		Adjacency:   adj,
		Hierarchy:   testHierarchy(areas),
		Detail:      detail,
		Defs: map[string]model.VariableDef{
			"V": {Name: "V", Numerator: []string{"x"}, Detail: medianTestSpec()},
		},
	}
}

func TestCompleteInterpolatesFromNeighbors(t *testing.T) {
	areas := []string{"a", "b", "c"}
	table := tableWith(t, areas, "V", map[string]float64{"b": 12, "c": 18})
	detail := model.RawTable{
		"b": {"total": 30, "f0": 5, "f1": 20, "f2": 5},
		"c": {"total": 30, "f0": 5, "f1": 10, "f2": 15},
	}

	c := medianCompleter(areas, detail)
	audit, err := c.Complete(table, testParents(t, map[string]float64{"c1": 99}, nil))
	require.NoError(t, err)

	// Pooled N=60, half=30: bin 0 holds 10, bin 1 reaches 40, so the
	// median sits (30-10)/30 of the way into [10,20).
	got := table.Get("a", "V")
	require.True(t, got.Valid)
	assert.InDelta(t, 10+10*20.0/30.0, got.Float, 1e-9)

	require.Len(t, audit.Cells, 1)
	assert.Equal(t, model.FillInterpolated, audit.Cells[0].Method)
	assert.Equal(t, "pooled(n=60)", audit.Cells[0].Source)
}

func TestCompleteInterpolationFallsBackWhenPoolTooSmall(t *testing.T) {
	areas := []string{"a", "b", "c"}
	table := tableWith(t, areas, "V", map[string]float64{"b": 12, "c": 18})
	detail := model.RawTable{
		"b": {"total": 15, "f0": 5, "f1": 8, "f2": 2},
		"c": {"total": 15, "f0": 5, "f1": 8, "f2": 2},
	}

	c := medianCompleter(areas, detail)
	audit, err := c.Complete(table, testParents(t, map[string]float64{"c1": 99}, nil))
	require.NoError(t, err)

	// 30 pooled observations is under the 40 minimum.
	assert.InDelta(t, 99, table.Get("a", "V").Float, 1e-9)
	require.Len(t, audit.Cells, 1)
	assert.Equal(t, model.FillParent, audit.Cells[0].Method)
}

func TestCompleteInterpolationFallsBackOnLowestBinMedian(t *testing.T) {
	areas := []string{"a", "b", "c"}
	table := tableWith(t, areas, "V", map[string]float64{"b": 2, "c": 3})
	detail := model.RawTable{
		"b": {"total": 30, "f0": 28, "f1": 1, "f2": 1},
		"c": {"total": 30, "f0": 28, "f1": 1, "f2": 1},
	}

	c := medianCompleter(areas, detail)
	_, err := c.Complete(table, testParents(t, map[string]float64{"c1": 99}, nil))
	require.NoError(t, err)

	// The pooled median lands in the lowest bin, which cannot place it.
	assert.InDelta(t, 99, table.Get("a", "V").Float, 1e-9)
}

func TestCompleteNeighborEligibilityUsesSnapshot(t *testing.T) {
	// Both a and b are missing and adjacent to each other plus to c.
	// Whatever order the cells are repaired in, neither may pool the
	// other's freshly filled value: only c contributes.
	areas := []string{"a", "b", "c"}
	adj := model.Adjacency{}
	adj.Add("a", "b")
	adj.Add("a", "c")
	adj.Add("b", "c")

	detail := model.RawTable{
		"a": {"total": 100, "f0": 10, "f1": 80, "f2": 10},
		"b": {"total": 100, "f0": 10, "f1": 80, "f2": 10},
		"c": {"total": 60, "f0": 10, "f1": 30, "f2": 20},
	}

	build := func() (*model.Table, *Completer) {
		table := tableWith(t, areas, "V", map[string]float64{"c": 18})
		c := medianCompleter(areas, detail)
		c.Adjacency = adj
		return table, c
	}

	first, c1 := build()
	_, err := c1.Complete(first, testParents(t, map[string]float64{"c1": 99}, nil))
	require.NoError(t, err)

	second, c2 := build()
	_, err = c2.Complete(second, testParents(t, map[string]float64{"c1": 99}, nil))
	require.NoError(t, err)

	assert.True(t, first.Equal(second))

	// Only c's 60 observations are pooled for both repairs: half=30,
	// bin 0 holds 10, so the median is 20/30 into [10,20).
	want := 10 + 10*20.0/30.0
	assert.InDelta(t, want, first.Get("a", "V").Float, 1e-9)
	assert.InDelta(t, want, first.Get("b", "V").Float, 1e-9)
}

func TestCompleteCustomMinNeighbors(t *testing.T) {
	areas := []string{"a", "b", "c"}
	table := tableWith(t, areas, "V", map[string]float64{"b": 12, "c": 18})
	detail := model.RawTable{
		"b": {"total": 15, "f0": 5, "f1": 8, "f2": 2},
		"c": {"total": 15, "f0": 5, "f1": 8, "f2": 2},
	}

	c := medianCompleter(areas, detail)
	c.MinNeighbors = 20
	audit, err := c.Complete(table, testParents(t, map[string]float64{"c1": 99}, nil))
	require.NoError(t, err)

	// The lowered threshold admits the 30-observation pool.
	require.Len(t, audit.Cells, 1)
	assert.Equal(t, model.FillInterpolated, audit.Cells[0].Method)
}

func TestCompleteNoHolesNoAudit(t *testing.T) {
	areas := []string{"a", "b"}
	table := tableWith(t, areas, "V", map[string]float64{"a": 1, "b": 2})

	c := &Completer{Hierarchy: testHierarchy(areas)}
	audit, err := c.Complete(table, nil)
	require.NoError(t, err)
	assert.True(t, audit.Empty())
}

func TestGroupedMedian(t *testing.T) {
	bins := medianTestSpec().Bins

	tests := []struct {
		name  string
		freqs []float64
		total float64
		want  float64
		ok    bool
	}{
		{"middle bin", []float64{10, 30, 20}, 60, 10 + 10*20.0/30.0, true},
		{"just past bin edge", []float64{9, 11, 0}, 20, 10 + 10*1.0/11.0, true},
		{"lowest bin", []float64{50, 5, 5}, 60, 0, false},
		{"last bin", []float64{10, 5, 45}, 60, 20 + 10*15.0/45.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := groupedMedian(bins, tt.freqs, tt.total)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
