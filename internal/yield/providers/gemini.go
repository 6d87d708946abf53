package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"github.com/i474232898/crop-yield-prediction/internal/common"
	"github.com/i474232898/crop-yield-prediction/internal/yield"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// modelsAPI is the subset of *genai.Models the predictor uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiPredictor implements yield.Predictor on top of the Gemini API using
// structured JSON output.
type GeminiPredictor struct {
	name    string
	model   string
	models  modelsAPI
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewGeminiPredictor creates a predictor for the given model. An empty apiKey
// is not an error: every call then reports yield.ErrMissingCredential.
func NewGeminiPredictor(ctx context.Context, client *http.Client, apiKey, model string) (*GeminiPredictor, error) {
	if apiKey == "" {
		return newGeminiPredictor(nil, model), nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: client,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiPredictor(gc.Models, model), nil
}

func newGeminiPredictor(models modelsAPI, model string) *GeminiPredictor {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiPredictor{
		name:    "gemini",
		model:   model,
		models:  models,
		backoff: DefaultBackoff,
		circuit: newBreaker("gemini"),
	}
}

func (p *GeminiPredictor) Name() string {
	return p.name
}

func (p *GeminiPredictor) BreakerState() string {
	return p.circuit.State().String()
}

func (p *GeminiPredictor) Predict(ctx context.Context, in yield.EnvironmentalInput) (yield.Estimate, error) {
	if p.models == nil {
		return yield.Estimate{}, yield.NewPredictionError(p.name, yield.ErrMissingCredential, errors.New("gemini api key is not configured"))
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   estimateSchema(),
	}

	result, err := executeWithResilience(ctx, p.backoff, p.circuit, func() (interface{}, error) {
		resp, err := p.models.GenerateContent(ctx, p.model, genai.Text(buildPrompt(in)), cfg)
		if err != nil {
			if isCredentialError(err) {
				return nil, permanent(yield.NewPredictionError(p.name, yield.ErrMissingCredential, err))
			}
			return nil, err
		}
		est, err := decodeEstimate(p.name, []byte(resp.Text()))
		if err != nil {
			return nil, permanent(err)
		}
		return est, nil
	})
	if err != nil {
		return yield.Estimate{}, classify(p.name, err)
	}

	est, ok := result.(yield.Estimate)
	if !ok {
		return yield.Estimate{}, yield.NewPredictionError(p.name, yield.ErrMalformedResponse, fmt.Errorf("unexpected result type %T", result))
	}
	return est, nil
}

// Probe fetches the configured model's metadata.
func (p *GeminiPredictor) Probe(ctx context.Context) error {
	if p.models == nil {
		return yield.NewPredictionError(p.name, yield.ErrMissingCredential, errors.New("gemini api key is not configured"))
	}
	if _, err := p.models.Get(ctx, p.model, nil); err != nil {
		if isCredentialError(err) {
			return yield.NewPredictionError(p.name, yield.ErrMissingCredential, err)
		}
		return yield.NewPredictionError(p.name, yield.ErrNetworkFailure, err)
	}
	return nil
}

func isCredentialError(err error) bool {
	msg := strings.ToLower(err.Error())
	return common.HasAny(msg, "api key", "api_key", "permission_denied", "unauthenticated")
}

func buildPrompt(in yield.EnvironmentalInput) string {
	crop := in.CropType
	if crop == "" {
		crop = "Unspecified"
	}
	return fmt.Sprintf(`Act as an advanced agricultural ML model and agronomist for the region of %[1]s.
Analyze the following environmental data for a crop yield prediction task.

Location: %[1]s
Crop: %[2]s
Nitrogen (N): %[3]g
Phosphorus (P): %[4]g
Potassium (K): %[5]g
Temperature: %[6]g°C
Humidity: %[7]g%%
pH Level: %[8]g
Rainfall: %[9]gmm

Based on this data, provide:
1. Predicted Yield (in tons per hectare). Be realistic based on global averages for this crop and region.
2. A confidence score (0-100) based on how optimal these conditions are.
3. A sustainability score (0-100) assessing long-term soil health impact.
4. List of limiting factors (if any).
5. Specific actionable recommendations to improve yield, tailored to %[1]s's typical farming practices if applicable.
6. Brief market analysis (mock data based on general crop trends).

Return ONLY valid JSON.`,
		in.Country, crop, in.Nitrogen, in.Phosphorus, in.Potassium,
		in.Temperature, in.Humidity, in.PH, in.Rainfall)
}

// estimateSchema mirrors yield.Estimate without inputSummary.
func estimateSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"yieldPrediction":     {Type: genai.TypeNumber, Description: "Predicted yield in tons/hectare"},
			"confidenceScore":     {Type: genai.TypeNumber, Description: "Confidence score 0-100"},
			"sustainabilityScore": {Type: genai.TypeNumber, Description: "Sustainability score 0-100"},
			"limitingFactors": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "List of factors limiting growth",
			},
			"recommendations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
						"impact":      {Type: genai.TypeString, Enum: []string{"High", "Medium", "Low"}},
						"type":        {Type: genai.TypeString, Enum: []string{"nutrient", "irrigation", "general"}},
					},
				},
			},
			"marketAnalysis": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"trend":          {Type: genai.TypeString, Enum: []string{"Up", "Down", "Stable"}},
					"estimatedPrice": {Type: genai.TypeString},
					"demandLevel":    {Type: genai.TypeString, Enum: []string{"High", "Medium", "Low"}},
				},
			},
		},
		Required: []string{"yieldPrediction", "confidenceScore", "sustainabilityScore", "limitingFactors", "recommendations", "marketAnalysis"},
	}
}
