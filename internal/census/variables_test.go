package census

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/svi-cli/internal/model"
)

func TestCatalog(t *testing.T) {
	defs := Catalog()
	require.Len(t, defs, 27)

	seen := map[string]bool{}
	for _, d := range defs {
		assert.False(t, seen[d.Name], "duplicate variable %s", d.Name)
		seen[d.Name] = true
		assert.NotEmpty(t, d.Numerator, "%s has no numerator fields", d.Name)
		assert.NotEmpty(t, d.Description, "%s has no description", d.Name)
	}
}

func TestCatalogInverseDefaults(t *testing.T) {
	byName := ByName(Catalog())

	for _, name := range []string{"PERCAP", "QRICH", "MDHSEVAL"} {
		assert.True(t, byName[name].Inverse, "%s should default to inverse", name)
	}
	assert.False(t, byName["QPOVTY"].Inverse)
}

func TestCatalogDetailSpecs(t *testing.T) {
	byName := ByName(Catalog())

	tests := []struct {
		variable   string
		totalField string
		bins       int
	}{
		{"MEDAGE", "B01001_001E", 23},
		{"MDGRENT", "B25063_002E", 24},
		{"MDHSEVAL", "B25075_001E", 26},
	}
	for _, tt := range tests {
		t.Run(tt.variable, func(t *testing.T) {
			d := byName[tt.variable]
			require.NotNil(t, d.Detail)
			assert.Equal(t, tt.totalField, d.Detail.TotalField)
			require.Len(t, d.Detail.Bins, tt.bins)

			for i, bin := range d.Detail.Bins {
				assert.NotEmpty(t, bin.Fields)
				assert.LessOrEqual(t, bin.Low, bin.High, "bin %d inverted", i)
				if i > 0 {
					assert.Greater(t, bin.Low, d.Detail.Bins[i-1].Low, "bins out of order at %d", i)
				}
			}
		})
	}

	assert.Nil(t, byName["QPOVTY"].Detail)
}

func TestMedianAgeDetailPoolsSexes(t *testing.T) {
	spec := MedianAgeDetail()
	for _, bin := range spec.Bins {
		assert.Len(t, bin.Fields, 2, "each age band pools a male and a female field")
	}
}

func TestByName(t *testing.T) {
	defs := []model.VariableDef{{Name: "A"}, {Name: "B", Inverse: true}}
	m := ByName(defs)
	require.Len(t, m, 2)
	assert.True(t, m["B"].Inverse)
}
