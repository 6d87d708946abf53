package yield

import (
	"fmt"
	"math"
)

// Ideal agronomic set points. Each doubles as the half-width of its
// triangular score, except temperature which decays over 15 °C.
const (
	idealNitrogen   = 120.0
	idealPhosphorus = 60.0
	idealPotassium  = 80.0

	idealTemperature     = 25.0
	temperatureTolerance = 15.0
	idealRainfall        = 150.0
)

// Rule thresholds.
const (
	lowNitrogenBelow      = 100.0
	nitrogenLeachingAbove = 150.0
	waterScarcityBelow    = 50.0
	heatStressAbove       = 35.0
)

const (
	FactorLowNitrogen      = "Low Nitrogen"
	FactorNitrogenLeaching = "Nitrogen Leaching Risk"
	FactorWaterScarcity    = "Water Scarcity"
	FactorHeatStress       = "Heat Stress"
	FactorNoneDetected     = "None detected"
)

var (
	recNitrogenDeficiency = Recommendation{
		Title:       "Nitrogen Deficiency",
		Description: "Apply urea or ammonium nitrate to boost vegetative growth.",
		Impact:      ImpactHigh,
		Type:        RecommendationNutrient,
	}
	recDroughtStress = Recommendation{
		Title:       "Drought Stress Mitigation",
		Description: "Implement drip irrigation schedules immediately.",
		Impact:      ImpactHigh,
		Type:        RecommendationIrrigation,
	}
	recHeatShielding = Recommendation{
		Title:       "Heat Shielding",
		Description: "Use mulching to retain soil moisture and reduce root temperature.",
		Impact:      ImpactMedium,
		Type:        RecommendationGeneral,
	}
	recMaintainPractices = Recommendation{
		Title:       "Maintain Current Practices",
		Description: "Conditions are optimal. Continue monitoring soil moisture.",
		Impact:      ImpactLow,
		Type:        RecommendationGeneral,
	}
)

// Engine computes estimates locally from fixed heuristics. It holds no
// mutable state of its own, so one Engine can serve concurrent callers as
// long as its Rand can.
type Engine struct {
	rng Rand
}

// NewEngine returns an Engine drawing its randomized fields from rng.
func NewEngine(rng Rand) *Engine {
	return &Engine{rng: rng}
}

// Name identifies the engine as a prediction source.
func (e *Engine) Name() string {
	return "local-heuristic"
}

// Factors are the normalized adequacy scores behind an estimate.
type Factors struct {
	Nutrient float64 `json:"nutrient"`
	Climate  float64 `json:"climate"`
}

// ScoreFactors computes the nutrient and climate factors, each in [0, 1].
func ScoreFactors(in EnvironmentalInput) Factors {
	n := triangular(in.Nitrogen, idealNitrogen, idealNitrogen)
	p := triangular(in.Phosphorus, idealPhosphorus, idealPhosphorus)
	k := triangular(in.Potassium, idealPotassium, idealPotassium)

	t := triangular(in.Temperature, idealTemperature, temperatureTolerance)
	r := triangular(in.Rainfall, idealRainfall, idealRainfall)

	return Factors{
		Nutrient: (n + p + k) / 3,
		Climate:  (t + r) / 2,
	}
}

// Estimate never fails: every score is clamped, and the ideal constants are
// non-zero so no division can blow up.
func (e *Engine) Estimate(in EnvironmentalInput) Estimate {
	base := BaseYield(in.CropType)
	f := ScoreFactors(in)

	predicted := base * (0.5 + f.Nutrient*0.3 + f.Climate*0.2)
	sustainability := math.Min(100, math.Max(40, f.Nutrient*60+f.Climate*40))
	confidence := int(math.Floor(85 + e.rng.Float64()*10))

	factors, recs := applyRules(in)

	return Estimate{
		YieldPrediction:     roundTo(predicted, 2),
		ConfidenceScore:     confidence,
		SustainabilityScore: int(math.Round(sustainability)),
		LimitingFactors:     factors,
		Recommendations:     recs,
		MarketAnalysis:      e.sampleMarket(),
		InputSummary:        in,
	}
}

func applyRules(in EnvironmentalInput) ([]string, []Recommendation) {
	var (
		factors []string
		recs    []Recommendation
	)

	if in.Nitrogen < lowNitrogenBelow {
		recs = append(recs, recNitrogenDeficiency)
		factors = append(factors, FactorLowNitrogen)
	} else if in.Nitrogen > nitrogenLeachingAbove {
		factors = append(factors, FactorNitrogenLeaching)
	}

	if in.Rainfall < waterScarcityBelow {
		recs = append(recs, recDroughtStress)
		factors = append(factors, FactorWaterScarcity)
	}

	if in.Temperature > heatStressAbove {
		recs = append(recs, recHeatShielding)
		factors = append(factors, FactorHeatStress)
	}

	if len(recs) == 0 {
		recs = append(recs, recMaintainPractices)
	}
	if len(factors) == 0 {
		factors = []string{FactorNoneDetected}
	}
	return factors, recs
}

// sampleMarket draws a market outlook. It is not derived from the input and
// never yields TrendDown.
func (e *Engine) sampleMarket() MarketAnalysis {
	trend := TrendStable
	if e.rng.Float64() > 0.5 {
		trend = TrendUp
	}
	price := int(math.Floor(200 + e.rng.Float64()*100))
	demand := DemandMedium
	if e.rng.Float64() > 0.6 {
		demand = DemandHigh
	}
	return MarketAnalysis{
		Trend:          trend,
		EstimatedPrice: fmt.Sprintf("$%d/ton", price),
		DemandLevel:    demand,
	}
}

// triangular is 1 at ideal and decays linearly to 0 at ideal±width.
// NaN readings score 0.
func triangular(actual, ideal, width float64) float64 {
	if math.IsNaN(actual) {
		return 0
	}
	return math.Max(0, 1-math.Abs(actual-ideal)/width)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
