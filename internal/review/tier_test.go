package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("sss")
	require.NoError(t, err)
	assert.Equal(t, TierSSS, tier)

	tier, err = ParseTier(" a ")
	require.NoError(t, err)
	assert.Equal(t, TierA, tier)

	_, err = ParseTier("F")
	assert.ErrorIs(t, err, ErrInvalidTier)

	_, err = ParseTier("")
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestModeTier(t *testing.T) {
	tests := []struct {
		name  string
		tiers []Tier
		want  Tier
	}{
		{"empty", nil, ""},
		{"single", []Tier{TierB}, TierB},
		{"clear majority", []Tier{TierS, TierA, TierA}, TierA},
		{"tie picks best", []Tier{TierS, TierA}, TierS},
		{"tie is order independent", []Tier{TierA, TierS}, TierS},
		{"three way tie", []Tier{TierE, TierSS, TierC}, TierSS},
		{"unknown ignored", []Tier{"X", "X", TierD}, TierD},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModeTier(tt.tiers))
		})
	}
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.Equal(t, 8.0, AverageRating([]float64{7, 9}))
	assert.Equal(t, 8.3, AverageRating([]float64{8, 8, 9}))
	assert.Equal(t, 7.5, AverageRating([]float64{7.5}))
	assert.Equal(t, 6.7, AverageRating([]float64{5, 7, 8}))
}

func TestValidRating(t *testing.T) {
	assert.True(t, ValidRating(0))
	assert.True(t, ValidRating(10))
	assert.True(t, ValidRating(7.5))
	assert.False(t, ValidRating(-0.1))
	assert.False(t, ValidRating(10.1))
}

func TestAggregated(t *testing.T) {
	agg := Aggregated([]Scored{
		{Tier: TierS, Rating: 9},
		{Tier: TierA, Rating: 8},
		{Tier: TierS, Rating: 9.5},
	})
	assert.Equal(t, TierS, agg.Tier)
	assert.Equal(t, 8.8, agg.Rating)
	assert.Equal(t, 3, agg.ReviewCount)

	empty := Aggregated(nil)
	assert.Equal(t, Tier(""), empty.Tier)
	assert.Equal(t, 0.0, empty.Rating)
	assert.Zero(t, empty.ReviewCount)
}
