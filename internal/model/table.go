package model

import "sort"

// Value is a table cell: a float plus a validity marker. Missing cells are
// represented explicitly rather than as zeros.
type Value struct {
	Float float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Missing is the canonical missing cell.
var Missing = Value{}

// Num returns a valid Value.
func Num(v float64) Value { return Value{Float: v, Valid: true} }

// Table is a rectangular (area x column) table of Values. Row order is the
// sorted area ID order and column order is insertion order, so iteration is
// deterministic across runs.
type Table struct {
	areas []string
	cols  []string
	cells map[string]map[string]Value
}

// NewTable creates a Table over the given area IDs. The IDs are copied and
// sorted; duplicates are collapsed.
func NewTable(areaIDs []string) *Table {
	ids := append([]string(nil), areaIDs...)
	sort.Strings(ids)
	uniq := ids[:0]
	for i, id := range ids {
		if i == 0 || ids[i-1] != id {
			uniq = append(uniq, id)
		}
	}
	cells := make(map[string]map[string]Value, len(uniq))
	for _, id := range uniq {
		cells[id] = make(map[string]Value)
	}
	return &Table{areas: uniq, cells: cells}
}

// Areas returns the sorted area IDs. The slice must not be mutated.
func (t *Table) Areas() []string { return t.areas }

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string { return t.cols }

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.cols {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn registers a column. Cells default to Missing. Adding an existing
// column is a no-op.
func (t *Table) AddColumn(col string) {
	if t.HasColumn(col) {
		return
	}
	t.cols = append(t.cols, col)
}

// Set assigns a cell. Unknown areas are ignored; unknown columns are
// registered implicitly.
func (t *Table) Set(areaID, col string, v Value) {
	row, ok := t.cells[areaID]
	if !ok {
		return
	}
	t.AddColumn(col)
	row[col] = v
}

// Get returns the cell for (areaID, col); absent cells are Missing.
func (t *Table) Get(areaID, col string) Value {
	if row, ok := t.cells[areaID]; ok {
		return row[col]
	}
	return Missing
}

// Column returns the column's values in area order.
func (t *Table) Column(col string) []Value {
	out := make([]Value, len(t.areas))
	for i, id := range t.areas {
		out[i] = t.cells[id][col]
	}
	return out
}

// ColumnAllMissing reports whether every cell of the column is missing.
func (t *Table) ColumnAllMissing(col string) bool {
	for _, id := range t.areas {
		if t.cells[id][col].Valid {
			return false
		}
	}
	return true
}

// MissingCells returns the (area, column) pairs that are missing, in
// deterministic column-major order.
func (t *Table) MissingCells() [][2]string {
	var out [][2]string
	for _, col := range t.cols {
		for _, id := range t.areas {
			if !t.cells[id][col].Valid {
				out = append(out, [2]string{id, col})
			}
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		areas: append([]string(nil), t.areas...),
		cols:  append([]string(nil), t.cols...),
		cells: make(map[string]map[string]Value, len(t.areas)),
	}
	for id, row := range t.cells {
		nr := make(map[string]Value, len(row))
		for k, v := range row {
			nr[k] = v
		}
		c.cells[id] = nr
	}
	return c
}

// Equal reports whether two tables have identical areas, columns, and cells.
func (t *Table) Equal(o *Table) bool {
	if len(t.areas) != len(o.areas) || len(t.cols) != len(o.cols) {
		return false
	}
	for i := range t.areas {
		if t.areas[i] != o.areas[i] {
			return false
		}
	}
	for i := range t.cols {
		if t.cols[i] != o.cols[i] {
			return false
		}
	}
	for _, id := range t.areas {
		for _, col := range t.cols {
			if t.cells[id][col] != o.cells[id][col] {
				return false
			}
		}
	}
	return true
}

// RawTable holds raw survey field values per area. A field that is absent or
// carries a negative sentinel is treated as unavailable.
type RawTable map[string]map[string]float64

// Field returns the raw field value for an area and whether it is usable.
// Negative values are ACS jam sentinels and count as unavailable.
func (r RawTable) Field(areaID, field string) (float64, bool) {
	row, ok := r[areaID]
	if !ok {
		return 0, false
	}
	v, ok := row[field]
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

// AreaIDs returns the sorted area IDs present in the raw table.
func (r RawTable) AreaIDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
