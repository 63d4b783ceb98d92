package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableSortsAndDedupes(t *testing.T) {
	tbl := NewTable([]string{"b", "a", "c", "a"})
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Areas())
}

func TestTableSetGet(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})

	tbl.Set("a", "V", Num(1.5))
	assert.Equal(t, Num(1.5), tbl.Get("a", "V"))
	assert.Equal(t, Missing, tbl.Get("b", "V"))
	assert.Equal(t, Missing, tbl.Get("unknown", "V"))

	// Unknown areas are dropped silently.
	tbl.Set("unknown", "V", Num(9))
	assert.Equal(t, []string{"a", "b"}, tbl.Areas())
}

func TestTableColumnsInsertionOrder(t *testing.T) {
	tbl := NewTable([]string{"a"})
	tbl.Set("a", "Z", Num(1))
	tbl.Set("a", "A", Num(2))
	tbl.Set("a", "Z", Num(3))

	assert.Equal(t, []string{"Z", "A"}, tbl.Columns())
	assert.True(t, tbl.HasColumn("A"))
	assert.False(t, tbl.HasColumn("Q"))
}

func TestTableColumnAllMissing(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})
	tbl.AddColumn("V")
	assert.True(t, tbl.ColumnAllMissing("V"))

	tbl.Set("b", "V", Num(0))
	assert.False(t, tbl.ColumnAllMissing("V"))
}

func TestTableMissingCellsOrder(t *testing.T) {
	tbl := NewTable([]string{"b", "a"})
	tbl.Set("a", "X", Num(1))
	tbl.AddColumn("Y")
	tbl.Set("b", "Y", Num(2))

	assert.Equal(t, [][2]string{{"b", "X"}, {"a", "Y"}}, tbl.MissingCells())
}

func TestTableCloneIsIndependent(t *testing.T) {
	tbl := NewTable([]string{"a"})
	tbl.Set("a", "V", Num(1))

	c := tbl.Clone()
	require.True(t, tbl.Equal(c))

	c.Set("a", "V", Num(2))
	assert.Equal(t, Num(1), tbl.Get("a", "V"))
	assert.False(t, tbl.Equal(c))
}

func TestRawTableField(t *testing.T) {
	raw := RawTable{
		"a": {"F": 10, "S": -666666666},
	}

	v, ok := raw.Field("a", "F")
	require.True(t, ok)
	assert.Equal(t, 10.0, v)

	_, ok = raw.Field("a", "S")
	assert.False(t, ok, "jam sentinel must read as unavailable")
	_, ok = raw.Field("a", "absent")
	assert.False(t, ok)
	_, ok = raw.Field("missing-area", "F")
	assert.False(t, ok)
}

func TestAdjacencyAdd(t *testing.T) {
	adj := Adjacency{}
	adj.Add("b", "a")
	adj.Add("b", "c")
	adj.Add("b", "a")
	adj.Add("x", "x")

	assert.Equal(t, []string{"a", "c"}, adj.Neighbors("b"))
	assert.Equal(t, []string{"b"}, adj.Neighbors("a"))
	assert.Empty(t, adj.Neighbors("x"), "self loops are ignored")
}

func TestParentLevels(t *testing.T) {
	assert.Equal(t, []Level{LevelTract, LevelCounty, LevelState}, ParentLevels(LevelBlockGroup))
	assert.Equal(t, []Level{LevelState}, ParentLevels(LevelCounty))
	assert.Nil(t, ParentLevels(LevelState))
}
