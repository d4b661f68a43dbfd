package ranks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRank(t *testing.T) {
	tests := []struct {
		points int64
		want   string
	}{
		{points: -5, want: "Brąz"},
		{points: 0, want: "Brąz"},
		{points: 99, want: "Brąz"},
		{points: 100, want: "Srebro"},
		{points: 499, want: "Srebro"},
		{points: 500, want: "Złoto"},
		{points: 1500, want: "Platyna"},
		{points: 4999, want: "Platyna"},
		{points: 5000, want: "Diament"},
		{points: 10000, want: "Mistrz"},
		{points: 25000, want: "Legenda"},
		{points: 30000, want: "Legenda"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Default.CalculateRank(tt.points).Name, "points=%d", tt.points)
	}
}

func TestCalculateRank_Monotonic(t *testing.T) {
	prev := Default.CalculateRank(0)
	for points := int64(1); points <= 30000; points += 7 {
		current := Default.CalculateRank(points)
		assert.GreaterOrEqual(t, current.Ordinal, prev.Ordinal)
		prev = current
	}
}

func TestGetNextRank(t *testing.T) {
	next, ok := Default.GetNextRank(0)
	require.True(t, ok)
	assert.Equal(t, "Srebro", next.Name)

	next, ok = Default.GetNextRank(1499)
	require.True(t, ok)
	assert.Equal(t, "Platyna", next.Name)

	_, ok = Default.GetNextRank(25000)
	assert.False(t, ok)

	assert.Equal(t, int64(1), Default.PointsToNextRank(99))
	assert.Equal(t, int64(0), Default.PointsToNextRank(40000))
}

func TestCheckPromotion(t *testing.T) {
	_, promoted := Default.CheckPromotion(10, 99)
	assert.False(t, promoted)

	tier, promoted := Default.CheckPromotion(99, 100)
	require.True(t, promoted)
	assert.Equal(t, "Srebro", tier.Name)

	// several thresholds in one award report only the final tier
	tier, promoted = Default.CheckPromotion(50, 1600)
	require.True(t, promoted)
	assert.Equal(t, "Platyna", tier.Name)

	_, promoted = Default.CheckPromotion(25000, 90000)
	assert.False(t, promoted)
}

func TestNewTable_Validation(t *testing.T) {
	_, err := NewTable(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = NewTable([]Tier{{Name: "A", Threshold: 5}})
	assert.ErrorIs(t, err, ErrFirstThreshold)

	_, err = NewTable([]Tier{{Name: "A", Threshold: 0}, {Name: "B", Threshold: 10}, {Name: "C", Threshold: 10}})
	assert.ErrorIs(t, err, ErrThresholdsNotAscending)

	table, err := NewTable([]Tier{{Name: "A", Threshold: 0}, {Name: "B", Threshold: 10}})
	require.NoError(t, err)
	assert.Equal(t, 1, table.CalculateRank(10).Ordinal)
}

func TestBounds(t *testing.T) {
	silver, ok := Default.ByName("Srebro")
	require.True(t, ok)

	lower, upper, hasUpper := Default.Bounds(silver)
	assert.Equal(t, int64(100), lower)
	assert.Equal(t, int64(500), upper)
	assert.True(t, hasUpper)

	legend, _ := Default.ByName("Legenda")
	_, _, hasUpper = Default.Bounds(legend)
	assert.False(t, hasUpper)
}
