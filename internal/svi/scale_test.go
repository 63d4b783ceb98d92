package svi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMaxScale(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"spread values", []float64{10, 30, 20}, []float64{0, 1, 0.5}},
		{"already unit", []float64{0, 1}, []float64{0, 1}},
		{"negative range", []float64{-4, -2, 0}, []float64{0, 0.5, 1}},
		{"constant column", []float64{7, 7, 7}, []float64{0, 0, 0}},
		{"single value", []float64{42}, []float64{0}},
		{"empty", nil, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinMaxScale(tt.values)
			assert.Len(t, got, len(tt.values))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestCompetitionRanks(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []int
	}{
		{"distinct values", []float64{10, 30, 20}, []int{3, 1, 2}},
		{"tie at the top", []float64{5, 5, 3}, []int{1, 1, 3}},
		{"tie in the middle", []float64{9, 4, 4, 1}, []int{1, 2, 2, 4}},
		{"all tied", []float64{2, 2, 2}, []int{1, 1, 1}},
		{"single", []float64{1}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompetitionRanks(tt.values))
		})
	}
}

func TestCompetitionRanksGapAfterTie(t *testing.T) {
	// Two areas share rank 1, so rank 2 is never assigned.
	ranks := CompetitionRanks([]float64{8, 8, 5, 2})
	assert.Equal(t, []int{1, 1, 3, 4}, ranks)
	assert.NotContains(t, ranks, 2)
}

func TestPercentiles(t *testing.T) {
	tests := []struct {
		name  string
		ranks []int
		want  []float64
	}{
		{"three areas", []int{3, 1, 2}, []float64{0, 1, 0.5}},
		{"tied areas share", []int{1, 1, 3}, []float64{1, 1, 0}},
		{"single area", []int{1}, []float64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentiles(tt.ranks)
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}
