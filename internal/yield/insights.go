package yield

import (
	"math"
	"strconv"
	"strings"
)

// Form maxima used to normalize nutrient readings for display.
const (
	maxNitrogen   = 140.0
	maxPhosphorus = 145.0
	maxPotassium  = 205.0
	maxPH         = 14.0
	maxRainfall   = 300.0
)

const (
	projectionStartYear = 2018
	projectionYears     = 11
	defaultBasePrice    = 500
)

// Comparison pairs a local reading with the regional average.
type Comparison struct {
	Name     string  `json:"name"`
	Local    float64 `json:"local"`
	Regional float64 `json:"regional"`
}

// RegionalComparison sets the field readings against its country's averages.
type RegionalComparison struct {
	Country     Country      `json:"country"`
	Matched     bool         `json:"matched"`
	Comparisons []Comparison `json:"comparisons"`
}

// NutrientAxis is one spoke of the nutrient profile.
type NutrientAxis struct {
	Subject  string  `json:"subject"`
	Value    float64 `json:"value"`
	FullMark float64 `json:"fullMark"`
}

// Point is one year of a projected series.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Projection holds simulated market and yield series around an estimate.
type Projection struct {
	Market []Point `json:"market"`
	Yield  []Point `json:"yield"`
}

// Insights bundles the derived display data for one estimate.
type Insights struct {
	Estimate   Estimate           `json:"estimate"`
	Regional   RegionalComparison `json:"regional"`
	Nutrients  []NutrientAxis     `json:"nutrients"`
	Projection Projection         `json:"projection"`
}

// BuildInsights derives every insight for est.
func BuildInsights(est Estimate, rng Rand) Insights {
	return Insights{
		Estimate:   est,
		Regional:   CompareRegion(est.InputSummary),
		Nutrients:  NutrientProfile(est.InputSummary),
		Projection: Project(est, rng),
	}
}

// CompareRegion compares temperature and rainfall (both rainfall values in
// tens of mm) with the input country's averages.
func CompareRegion(in EnvironmentalInput) RegionalComparison {
	c, ok := LookupCountry(in.Country)
	return RegionalComparison{
		Country: c,
		Matched: ok,
		Comparisons: []Comparison{
			{Name: "Temp (°C)", Local: in.Temperature, Regional: c.AvgTemp},
			{Name: "Rain (mm/10)", Local: in.Rainfall / 10, Regional: c.AvgRain / 10},
		},
	}
}

// NutrientProfile scales readings onto comparable axes. N, P and K keep their
// own units against the form maxima; pH and rainfall become percentages.
func NutrientProfile(in EnvironmentalInput) []NutrientAxis {
	return []NutrientAxis{
		{Subject: "N", Value: in.Nitrogen, FullMark: maxNitrogen},
		{Subject: "P", Value: in.Phosphorus, FullMark: maxPhosphorus},
		{Subject: "K", Value: in.Potassium, FullMark: maxPotassium},
		{Subject: "pH", Value: in.PH / maxPH * 100, FullMark: 100},
		{Subject: "H2O", Value: in.Humidity, FullMark: 100},
		{Subject: "Rain", Value: in.Rainfall / maxRainfall * 100, FullMark: 100},
	}
}

// Project simulates eleven years of market price and yield around est.
func Project(est Estimate, rng Rand) Projection {
	basePrice := float64(ParsePrice(est.MarketAnalysis.EstimatedPrice))

	trendMult := 1.0
	switch est.MarketAnalysis.Trend {
	case TrendUp:
		trendMult = 1.05
	case TrendDown:
		trendMult = 0.95
	}

	p := Projection{
		Market: make([]Point, 0, projectionYears),
		Yield:  make([]Point, 0, projectionYears),
	}
	for i := 0; i < projectionYears; i++ {
		volatility := rng.Float64()*0.2 - 0.1
		value := math.Floor(basePrice * math.Pow(trendMult, float64(i)) * (1 + volatility))
		p.Market = append(p.Market, Point{Year: projectionStartYear + i, Value: value})
	}
	for i := 0; i < projectionYears; i++ {
		variation := rng.Float64()*1.5 - 0.5
		value := math.Max(0, est.YieldPrediction+variation+float64(i)*0.2)
		p.Yield = append(p.Yield, Point{Year: projectionStartYear + i, Value: roundTo(value, 1)})
	}
	return p
}

// ParsePrice extracts the digits of a price label such as "$245/ton".
// Labels without digits give the default base price.
func ParsePrice(label string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, label)
	n, err := strconv.Atoi(digits)
	if err != nil || n == 0 {
		return defaultBasePrice
	}
	return n
}
