package yield

import (
	"context"
	"time"
)

// Predictor abstracts a remote prediction source (e.g. Gemini, a hosted ML
// model). Implementations return a *PredictionError on failure.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, in EnvironmentalInput) (Estimate, error)
}

// Prober is implemented by predictors that can report availability without
// making a full prediction.
type Prober interface {
	Probe(ctx context.Context) error
}

// BreakerReporter is implemented by predictors guarded by a circuit breaker.
type BreakerReporter interface {
	BreakerState() string
}

// ProbeResult records one availability check of a predictor.
type ProbeResult struct {
	ID           string        `json:"id"`
	Provider     string        `json:"provider"`
	Timestamp    time.Time     `json:"timestamp"` // always UTC
	Available    bool          `json:"available"`
	Kind         string        `json:"kind,omitempty"`
	Error        string        `json:"error,omitempty"`
	Latency      time.Duration `json:"latencyNs"`
	BreakerState string        `json:"breakerState,omitempty"`
}

// StatusStore is the contract the in-memory probe history must satisfy.
type StatusStore interface {
	SaveProbe(result ProbeResult)
	GetLatest(provider string) (ProbeResult, error)
	GetRange(provider string, from, to time.Time) ([]ProbeResult, error)
	Providers() []string
}
