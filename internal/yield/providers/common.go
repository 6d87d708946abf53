package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/crop-yield-prediction/internal/common"
	"github.com/i474232898/crop-yield-prediction/internal/yield"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// DefaultBackoff is used by every predictor unless overridden.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

// newBreaker trips on transport and server failures only; permanent errors
// count as successes.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			var perm permanentError
			return err == nil || errors.As(err, &perm)
		},
	})
}

// executeWithResilience runs call through the circuit breaker, retrying with
// exponential backoff until it succeeds, fails permanently, or retries run out.
func executeWithResilience(
	ctx context.Context,
	backoff BackoffConfig,
	cb *gobreaker.CircuitBreaker,
	call func() (interface{}, error),
) (interface{}, error) {
	if backoff.MaxRetries < 0 || backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := cb.Execute(call)
		if err == nil {
			return result, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		var perm permanentError
		if errors.As(err, &perm) || attempt >= backoff.MaxRetries {
			return nil, err
		}

		delay := backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > backoff.MaxInterval && backoff.MaxInterval > 0 {
			delay = backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

// doRequestWithResilience executes the HTTP request with retries, exponential
// backoff, and a circuit breaker. Only 2xx responses are returned; the caller
// owns the body.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}

	result, err := executeWithResilience(ctx, cfg.Backoff, cb, func() (interface{}, error) {
		req, err := buildRequest(ctx)
		if err != nil {
			return nil, permanent(err)
		}

		resp, err := cfg.Client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, errRateLimited
		case resp.StatusCode >= 500:
			return nil, errServerError
		default:
			return nil, permanent(fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode))
		}
	})
	if err != nil {
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// wireEstimate is the JSON shape remote predictors answer with. Scores are
// decoded as floats since models do not reliably emit integers.
type wireEstimate struct {
	YieldPrediction     *float64               `json:"yieldPrediction"`
	ConfidenceScore     *float64               `json:"confidenceScore"`
	SustainabilityScore *float64               `json:"sustainabilityScore"`
	LimitingFactors     []string               `json:"limitingFactors"`
	Recommendations     []yield.Recommendation `json:"recommendations"`
	MarketAnalysis      yield.MarketAnalysis   `json:"marketAnalysis"`
}

// decodeEstimate parses and sanity-checks a remote answer. Any problem is
// reported as ErrMalformedResponse.
func decodeEstimate(provider string, data []byte) (yield.Estimate, error) {
	text := common.StripCodeFence(string(data))
	if text == "" {
		return yield.Estimate{}, yield.NewPredictionError(provider, yield.ErrMalformedResponse, errors.New("empty response"))
	}

	var w wireEstimate
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return yield.Estimate{}, yield.NewPredictionError(provider, yield.ErrMalformedResponse, err)
	}
	switch {
	case w.YieldPrediction == nil:
		return yield.Estimate{}, yield.NewPredictionError(provider, yield.ErrMalformedResponse, errors.New("yieldPrediction missing"))
	case w.ConfidenceScore == nil:
		return yield.Estimate{}, yield.NewPredictionError(provider, yield.ErrMalformedResponse, errors.New("confidenceScore missing"))
	case w.SustainabilityScore == nil:
		return yield.Estimate{}, yield.NewPredictionError(provider, yield.ErrMalformedResponse, errors.New("sustainabilityScore missing"))
	}

	est := yield.Estimate{
		YieldPrediction:     *w.YieldPrediction,
		ConfidenceScore:     int(math.Round(*w.ConfidenceScore)),
		SustainabilityScore: int(math.Round(*w.SustainabilityScore)),
		LimitingFactors:     w.LimitingFactors,
		Recommendations:     w.Recommendations,
		MarketAnalysis:      w.MarketAnalysis,
	}
	if err := est.Validate(); err != nil {
		return yield.Estimate{}, yield.NewPredictionError(provider, yield.ErrMalformedResponse, err)
	}
	return est.WithDefaults(), nil
}

// classify maps a transport-level failure onto a prediction error kind.
func classify(provider string, err error) error {
	var pe *yield.PredictionError
	switch {
	case errors.As(err, &pe):
		return pe
	case errors.Is(err, errUnexpected):
		if common.HasAny(err.Error(), ": 401", ": 403") {
			return yield.NewPredictionError(provider, yield.ErrMissingCredential, err)
		}
		return yield.NewPredictionError(provider, yield.ErrMalformedResponse, err)
	default:
		return yield.NewPredictionError(provider, yield.ErrNetworkFailure, err)
	}
}
