package model

import "sort"

// Level identifies one tier of the boundary hierarchy, finest first.
type Level string

const (
	LevelBlockGroup Level = "bg"
	LevelTract      Level = "tract"
	LevelCounty     Level = "county"
	LevelState      Level = "state"
)

// ParentLevels returns the coarser levels above l, nearest first.
func ParentLevels(l Level) []Level {
	switch l {
	case LevelBlockGroup:
		return []Level{LevelTract, LevelCounty, LevelState}
	case LevelTract:
		return []Level{LevelCounty, LevelState}
	case LevelCounty:
		return []Level{LevelState}
	default:
		return nil
	}
}

// Area is a single spatial unit under analysis, identified by its GEOID.
// Ancestors holds the GEOIDs of its containing regions, nearest level first,
// aligned with ParentLevels of the area's level.
type Area struct {
	ID         string   `json:"id"`
	Population float64  `json:"population"`
	Ancestors  []string `json:"ancestors,omitempty"`
}

// Hierarchy maps an area ID to its ancestor chain, nearest parent first.
type Hierarchy map[string][]string

// Adjacency is a symmetric neighbor relation between same-level areas.
type Adjacency map[string][]string

// Neighbors returns the sorted neighbor IDs of the given area.
func (a Adjacency) Neighbors(id string) []string {
	return a[id]
}

// Add records a symmetric adjacency between two areas.
func (a Adjacency) Add(x, y string) {
	if x == y {
		return
	}
	a[x] = insertSorted(a[x], y)
	a[y] = insertSorted(a[y], x)
}

func insertSorted(list []string, v string) []string {
	i := sort.SearchStrings(list, v)
	if i < len(list) && list[i] == v {
		return list
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}
