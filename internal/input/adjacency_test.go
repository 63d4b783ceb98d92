package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAdjacency(t *testing.T) {
	csv := "src,dst\n01001,01002\n01002,01003\n01003,01001\n"
	adj, err := ReadAdjacency(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"01002", "01003"}, adj.Neighbors("01001"))
	assert.Equal(t, []string{"01001", "01003"}, adj.Neighbors("01002"))
}

func TestReadAdjacencySymmetric(t *testing.T) {
	// The same pair in both orders collapses to one edge.
	csv := "01001,01002\n01002,01001\n"
	adj, err := ReadAdjacency(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"01002"}, adj.Neighbors("01001"))
	assert.Equal(t, []string{"01001"}, adj.Neighbors("01002"))
}

func TestReadAdjacencyNoHeader(t *testing.T) {
	csv := "01001,01002\n"
	adj, err := ReadAdjacency(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"01002"}, adj.Neighbors("01001"))
}

func TestReadAdjacencyErrors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{"short row", "pair\n01001\n", "two GEOIDs"},
		{"empty geoid", "01001,  \n", "empty GEOID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAdjacency(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
