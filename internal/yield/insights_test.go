package yield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareRegion(t *testing.T) {
	in := defaultInput()
	in.Country = "brazil"

	cmp := CompareRegion(in)
	assert.True(t, cmp.Matched)
	assert.Equal(t, "Brazil", cmp.Country.Name)
	require.Len(t, cmp.Comparisons, 2)
	assert.Equal(t, Comparison{Name: "Temp (°C)", Local: 20, Regional: 25}, cmp.Comparisons[0])
	assert.InDelta(t, 20.2, cmp.Comparisons[1].Local, 1e-9)
	assert.InDelta(t, 176.1, cmp.Comparisons[1].Regional, 1e-9)
}

func TestCompareRegionUnknownCountryUsesDefault(t *testing.T) {
	in := defaultInput()
	in.Country = "Atlantis"

	cmp := CompareRegion(in)
	assert.False(t, cmp.Matched)
	assert.Equal(t, Countries[0], cmp.Country)
}

func TestNutrientProfile(t *testing.T) {
	axes := NutrientProfile(defaultInput())
	require.Len(t, axes, 6)

	byName := map[string]NutrientAxis{}
	for _, a := range axes {
		byName[a.Subject] = a
	}
	assert.Equal(t, 90.0, byName["N"].Value)
	assert.Equal(t, 205.0, byName["K"].FullMark)
	assert.InDelta(t, 46.428571, byName["pH"].Value, 1e-6)
	assert.InDelta(t, 67.333333, byName["Rain"].Value, 1e-6)
	assert.Equal(t, 82.0, byName["H2O"].Value)
}

func TestProjectFollowsTrend(t *testing.T) {
	est := Estimate{
		YieldPrediction: 4.0,
		MarketAnalysis:  MarketAnalysis{Trend: TrendUp, EstimatedPrice: "$250/ton"},
	}

	// 0.5 maps to zero volatility and a +0.25 yield variation.
	p := Project(est, &seqRand{vals: []float64{0.5}})
	require.Len(t, p.Market, 11)
	require.Len(t, p.Yield, 11)

	assert.Equal(t, Point{Year: 2018, Value: 250}, p.Market[0])
	assert.Equal(t, 2028, p.Market[10].Year)
	for i := 1; i < len(p.Market); i++ {
		assert.Greater(t, p.Market[i].Value, p.Market[i-1].Value)
	}

	assert.Equal(t, Point{Year: 2018, Value: 4.3}, p.Yield[0])
	assert.Equal(t, 6.3, p.Yield[10].Value)
}

func TestProjectStableAndDownTrends(t *testing.T) {
	stable := Project(Estimate{MarketAnalysis: MarketAnalysis{Trend: TrendStable, EstimatedPrice: "$300/ton"}}, &seqRand{vals: []float64{0.5}})
	for _, pt := range stable.Market {
		assert.Equal(t, 300.0, pt.Value)
	}

	down := Project(Estimate{MarketAnalysis: MarketAnalysis{Trend: TrendDown, EstimatedPrice: "$300/ton"}}, &seqRand{vals: []float64{0.5}})
	assert.Less(t, down.Market[10].Value, down.Market[0].Value)

	// Yield never goes negative.
	low := Project(Estimate{YieldPrediction: 0}, &seqRand{vals: []float64{0}})
	assert.Equal(t, 0.0, low.Yield[0].Value)
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 245, ParsePrice("$245/ton"))
	assert.Equal(t, 1200, ParsePrice("USD 1,200 per ton"))
	assert.Equal(t, 500, ParsePrice("unknown"))
	assert.Equal(t, 500, ParsePrice(""))
}

func TestBuildInsights(t *testing.T) {
	rng := NewLockedRand(11)
	est := NewEngine(rng).Estimate(defaultInput())

	ins := BuildInsights(est, rng)
	assert.Equal(t, est, ins.Estimate)
	assert.Equal(t, "India", ins.Regional.Country.Name)
	assert.Len(t, ins.Nutrients, 6)
	assert.Len(t, ins.Projection.Market, 11)
}
