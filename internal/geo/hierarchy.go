// Package geo derives spatial relations between census areas: the GEOID
// containment hierarchy and boundary-based adjacency.
package geo

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/svi-cli/internal/model"
)

// GEOID prefix lengths per hierarchy level.
var levelIDLen = map[model.Level]int{
	model.LevelBlockGroup: 12,
	model.LevelTract:      11,
	model.LevelCounty:     5,
	model.LevelState:      2,
}

// ParseLevel maps a config string onto a hierarchy level.
func ParseLevel(s string) (model.Level, error) {
	switch model.Level(s) {
	case model.LevelBlockGroup, model.LevelTract, model.LevelCounty, model.LevelState:
		return model.Level(s), nil
	}
	return "", eris.Errorf("geo: unknown level %q", s)
}

// Ancestors returns the containing GEOIDs of an area, nearest level first,
// aligned with model.ParentLevels. GEOIDs nest by prefix: a block group's
// first 11 digits name its tract, the first 5 its county, the first 2 its
// state.
func Ancestors(id string, level model.Level) ([]string, error) {
	want, ok := levelIDLen[level]
	if !ok {
		return nil, eris.Errorf("geo: unknown level %q", level)
	}
	if len(id) != want {
		return nil, eris.Errorf("geo: GEOID %q is not %d digits as %s requires", id, want, level)
	}
	parents := model.ParentLevels(level)
	out := make([]string, len(parents))
	for i, p := range parents {
		out[i] = id[:levelIDLen[p]]
	}
	return out, nil
}

// BuildHierarchy computes the ancestor chain for every area at a level.
func BuildHierarchy(ids []string, level model.Level) (model.Hierarchy, error) {
	h := make(model.Hierarchy, len(ids))
	for _, id := range ids {
		anc, err := Ancestors(id, level)
		if err != nil {
			return nil, err
		}
		h[id] = anc
	}
	return h, nil
}
