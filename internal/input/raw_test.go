package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/svi-cli/internal/model"
)

func TestReadRawTable(t *testing.T) {
	csv := `GEOID,B01003_001E,B17021_002E
010010201001,1200,340
010010201002,800,
010010202001,95,-666666666
`
	raw, err := ReadRawTable(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"010010201001", "010010201002", "010010202001"}, raw.AreaIDs())

	v, ok := raw.Field("010010201001", "B17021_002E")
	require.True(t, ok)
	assert.InDelta(t, 340, v, 1e-9)

	// Blank cell is an unavailable field.
	_, ok = raw.Field("010010201002", "B17021_002E")
	assert.False(t, ok)

	// Jam sentinel parses but stays unavailable.
	_, ok = raw.Field("010010202001", "B17021_002E")
	assert.False(t, ok)
}

func TestReadRawTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{"single column", "GEOID\n01001\n", "at least one field"},
		{"no areas", "GEOID,B01003_001E\n", "no areas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRawTable(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadRawTableSkipsNonNumeric(t *testing.T) {
	csv := "GEOID,B01003_001E\n01001,n/a\n01002,50\n"
	raw, err := ReadRawTable(strings.NewReader(csv))
	require.NoError(t, err)

	_, ok := raw.Field("01001", "B01003_001E")
	assert.False(t, ok)
	v, ok := raw.Field("01002", "B01003_001E")
	require.True(t, ok)
	assert.InDelta(t, 50, v, 1e-9)
}

func TestFilterLowPopulation(t *testing.T) {
	raw := model.RawTable{
		"a": {"POP": 1200},
		"b": {"POP": 40},
		"c": {},
		"d": {"POP": 75},
	}

	dropped := FilterLowPopulation(raw, "POP", 75)

	assert.Equal(t, []string{"b"}, dropped)
	assert.Equal(t, []string{"a", "c", "d"}, raw.AreaIDs())
}

func TestFilterSpecialUse(t *testing.T) {
	raw := model.RawTable{
		"a": {"HH": 2.4},
		"b": {"HH": 0},
		"c": {},
	}

	dropped := FilterSpecialUse(raw, "HH")

	assert.Equal(t, []string{"b"}, dropped)
	assert.Equal(t, []string{"a", "c"}, raw.AreaIDs())
}
