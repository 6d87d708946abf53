package yield

import (
	"errors"
	"fmt"
	"math"
)

// Impact is the expected effect of acting on a recommendation.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

func (i Impact) valid() bool {
	return i == ImpactHigh || i == ImpactMedium || i == ImpactLow
}

// RecommendationType groups recommendations by the practice they touch.
type RecommendationType string

const (
	RecommendationNutrient   RecommendationType = "nutrient"
	RecommendationIrrigation RecommendationType = "irrigation"
	RecommendationGeneral    RecommendationType = "general"
)

func (t RecommendationType) valid() bool {
	return t == RecommendationNutrient || t == RecommendationIrrigation || t == RecommendationGeneral
}

// Trend is the direction of the crop's market price.
type Trend string

const (
	TrendUp     Trend = "Up"
	TrendDown   Trend = "Down"
	TrendStable Trend = "Stable"
)

func (t Trend) valid() bool {
	return t == TrendUp || t == TrendDown || t == TrendStable
}

// DemandLevel is the market demand for the crop.
type DemandLevel string

const (
	DemandHigh   DemandLevel = "High"
	DemandMedium DemandLevel = "Medium"
	DemandLow    DemandLevel = "Low"
)

func (d DemandLevel) valid() bool {
	return d == DemandHigh || d == DemandMedium || d == DemandLow
}

// EnvironmentalInput holds the soil and climate readings for one field.
// Nutrients are in mg/kg, temperature in °C, humidity in %, rainfall in mm.
type EnvironmentalInput struct {
	Country     string  `json:"country" validate:"required"`
	CropType    string  `json:"cropType,omitempty"`
	Nitrogen    float64 `json:"nitrogen" validate:"gte=0"`
	Phosphorus  float64 `json:"phosphorus" validate:"gte=0"`
	Potassium   float64 `json:"potassium" validate:"gte=0"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity" validate:"gte=0,lte=100"`
	PH          float64 `json:"ph" validate:"gte=0,lte=14"`
	Rainfall    float64 `json:"rainfall" validate:"gte=0"`
}

// Recommendation is a single advisory action.
type Recommendation struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Impact      Impact             `json:"impact"`
	Type        RecommendationType `json:"type"`
}

// MarketAnalysis is a coarse market outlook for the crop.
type MarketAnalysis struct {
	Trend          Trend       `json:"trend"`
	EstimatedPrice string      `json:"estimatedPrice"`
	DemandLevel    DemandLevel `json:"demandLevel"`
}

// Estimate is the prediction returned to callers regardless of which
// predictor produced it.
type Estimate struct {
	YieldPrediction     float64            `json:"yieldPrediction"` // tons/hectare
	ConfidenceScore     int                `json:"confidenceScore"`
	SustainabilityScore int                `json:"sustainabilityScore"`
	LimitingFactors     []string           `json:"limitingFactors"`
	Recommendations     []Recommendation   `json:"recommendations"`
	MarketAnalysis      MarketAnalysis     `json:"marketAnalysis"`
	InputSummary        EnvironmentalInput `json:"inputSummary"`
}

// Validate rejects estimates a remote predictor could not plausibly mean.
func (e Estimate) Validate() error {
	if math.IsNaN(e.YieldPrediction) || math.IsInf(e.YieldPrediction, 0) || e.YieldPrediction < 0 {
		return fmt.Errorf("yieldPrediction out of range: %v", e.YieldPrediction)
	}
	if e.ConfidenceScore < 0 || e.ConfidenceScore > 100 {
		return fmt.Errorf("confidenceScore out of range: %d", e.ConfidenceScore)
	}
	if e.SustainabilityScore < 0 || e.SustainabilityScore > 100 {
		return fmt.Errorf("sustainabilityScore out of range: %d", e.SustainabilityScore)
	}
	for _, r := range e.Recommendations {
		if r.Title == "" {
			return errors.New("recommendation without title")
		}
		if !r.Impact.valid() {
			return fmt.Errorf("recommendation %q: unknown impact %q", r.Title, r.Impact)
		}
		if !r.Type.valid() {
			return fmt.Errorf("recommendation %q: unknown type %q", r.Title, r.Type)
		}
	}
	if !e.MarketAnalysis.Trend.valid() {
		return fmt.Errorf("unknown market trend %q", e.MarketAnalysis.Trend)
	}
	if !e.MarketAnalysis.DemandLevel.valid() {
		return fmt.Errorf("unknown demand level %q", e.MarketAnalysis.DemandLevel)
	}
	if e.MarketAnalysis.EstimatedPrice == "" {
		return errors.New("estimatedPrice missing")
	}
	return nil
}

// WithDefaults fills empty factor and recommendation lists the same way the
// local engine does.
func (e Estimate) WithDefaults() Estimate {
	if len(e.LimitingFactors) == 0 {
		e.LimitingFactors = []string{FactorNoneDetected}
	}
	if len(e.Recommendations) == 0 {
		e.Recommendations = []Recommendation{recMaintainPractices}
	}
	return e
}
