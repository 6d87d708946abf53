package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/crop-yield-prediction/internal/yield"
)

// maxResponseBytes caps how much of a model server answer is read.
const maxResponseBytes = 1 << 20

// MLServicePredictor implements yield.Predictor for a self-hosted model
// server that accepts the input as JSON and answers with an estimate.
type MLServicePredictor struct {
	name         string
	baseURL      string
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker
	probeCircuit *gobreaker.CircuitBreaker // health checks only
}

// NewMLServicePredictor creates a predictor for the server at baseURL. An
// empty baseURL makes every call report yield.ErrMissingCredential.
func NewMLServicePredictor(client *http.Client, baseURL string) *MLServicePredictor {
	return &MLServicePredictor{
		name:    "ml-service",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit:      newBreaker("ml-service"),
		probeCircuit: newBreaker("ml-service-health"),
	}
}

func (p *MLServicePredictor) Name() string {
	return p.name
}

func (p *MLServicePredictor) BreakerState() string {
	return p.circuit.State().String()
}

func (p *MLServicePredictor) Predict(ctx context.Context, in yield.EnvironmentalInput) (yield.Estimate, error) {
	if p.baseURL == "" {
		return yield.Estimate{}, yield.NewPredictionError(p.name, yield.ErrMissingCredential, errors.New("ml service url is not configured"))
	}

	body, err := json.Marshal(in)
	if err != nil {
		return yield.Estimate{}, yield.NewPredictionError(p.name, yield.ErrMalformedResponse, err)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return yield.Estimate{}, classify(p.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return yield.Estimate{}, yield.NewPredictionError(p.name, yield.ErrNetworkFailure, err)
	}
	return decodeEstimate(p.name, data)
}

// Probe calls the server's health endpoint.
func (p *MLServicePredictor) Probe(ctx context.Context) error {
	if p.baseURL == "" {
		return yield.NewPredictionError(p.name, yield.ErrMissingCredential, errors.New("ml service url is not configured"))
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.probeCircuit, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	})
	if err != nil {
		return classify(p.name, fmt.Errorf("health check: %w", err))
	}
	resp.Body.Close()
	return nil
}
