package yield

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictor struct {
	name     string
	est      Estimate
	err      error
	probeErr error
	calls    int
}

func (f *fakePredictor) Name() string { return f.name }

func (f *fakePredictor) Predict(ctx context.Context, in EnvironmentalInput) (Estimate, error) {
	f.calls++
	if f.err != nil {
		return Estimate{}, f.err
	}
	return f.est, nil
}

func (f *fakePredictor) Probe(ctx context.Context) error { return f.probeErr }

func (f *fakePredictor) BreakerState() string { return "closed" }

// sliceStore is a minimal StatusStore for service tests.
type sliceStore struct {
	mu      sync.Mutex
	results []ProbeResult
}

func (s *sliceStore) SaveProbe(r ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

func (s *sliceStore) GetLatest(provider string) (ProbeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.results) - 1; i >= 0; i-- {
		if s.results[i].Provider == provider {
			return s.results[i], nil
		}
	}
	return ProbeResult{}, errors.New("not found")
}

func (s *sliceStore) GetRange(provider string, from, to time.Time) ([]ProbeResult, error) {
	return nil, errors.New("not implemented")
}

func (s *sliceStore) Providers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, r := range s.results {
		if !seen[r.Provider] {
			seen[r.Provider] = true
			out = append(out, r.Provider)
		}
	}
	sort.Strings(out)
	return out
}

func remoteEstimate() Estimate {
	return Estimate{
		YieldPrediction:     3.9,
		ConfidenceScore:     70,
		SustainabilityScore: 55,
		LimitingFactors:     []string{"Low Organic Matter"},
		Recommendations:     []Recommendation{{Title: "Add compost", Impact: ImpactMedium, Type: RecommendationNutrient}},
		MarketAnalysis:      MarketAnalysis{Trend: TrendDown, EstimatedPrice: "$180/ton", DemandLevel: DemandLow},
	}
}

func TestPredictUsesFirstSuccessfulRemote(t *testing.T) {
	failing := &fakePredictor{name: "gemini", err: NewPredictionError("gemini", ErrNetworkFailure, errors.New("timeout"))}
	ok := &fakePredictor{name: "ml-service", est: remoteEstimate()}
	svc := NewService(NewEngine(NewLockedRand(1)), []Predictor{failing, ok}, nil)

	in := defaultInput()
	out := svc.Predict(context.Background(), in)

	assert.False(t, out.Fallback)
	assert.Equal(t, "ml-service", out.Source)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, 3.9, out.Estimate.YieldPrediction)
	assert.Equal(t, in, out.Estimate.InputSummary)
	require.Len(t, out.Attempts, 2)
	assert.ErrorIs(t, out.Attempts[0].Err, ErrNetworkFailure)
	assert.NoError(t, out.Attempts[1].Err)
}

func TestPredictFallsBackOnEveryErrorKind(t *testing.T) {
	kinds := []error{ErrMissingCredential, ErrNetworkFailure, ErrMalformedResponse}
	for _, kind := range kinds {
		t.Run(kind.Error(), func(t *testing.T) {
			remote := &fakePredictor{name: "gemini", err: NewPredictionError("gemini", kind, nil)}
			engine := NewEngine(NewLockedRand(1))
			svc := NewService(engine, []Predictor{remote}, nil)

			in := defaultInput()
			out := svc.Predict(context.Background(), in)

			assert.True(t, out.Fallback)
			assert.Equal(t, engine.Name(), out.Source)
			assert.Equal(t, 1, remote.calls)

			want := NewEngine(NewLockedRand(1)).Estimate(in)
			assert.Equal(t, want, out.Estimate)
		})
	}
}

func TestPredictWithoutRemotePredictors(t *testing.T) {
	svc := NewService(NewEngine(NewLockedRand(1)), nil, nil)
	out := svc.Predict(context.Background(), defaultInput())

	assert.True(t, out.Fallback)
	assert.Empty(t, out.Attempts)
	assert.Equal(t, 4.15, out.Estimate.YieldPrediction)
}

func TestPredictCancelledContextStillAnswers(t *testing.T) {
	remote := &fakePredictor{name: "gemini", est: remoteEstimate()}
	svc := NewService(NewEngine(NewLockedRand(1)), []Predictor{remote}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := svc.Predict(ctx, defaultInput())
	assert.True(t, out.Fallback)
	assert.Zero(t, remote.calls)
	assert.Equal(t, 4.15, out.Estimate.YieldPrediction)
}

func TestProbeRecordsResults(t *testing.T) {
	up := &fakePredictor{name: "ml-service"}
	down := &fakePredictor{name: "gemini", probeErr: NewPredictionError("gemini", ErrMissingCredential, nil)}
	st := &sliceStore{}
	svc := NewService(NewEngine(NewLockedRand(1)), []Predictor{down, up}, st)

	results := svc.Probe(context.Background())
	require.Len(t, results, 2)

	status := svc.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "gemini", status[0].Provider)
	assert.False(t, status[0].Available)
	assert.Equal(t, ErrMissingCredential.Error(), status[0].Kind)
	assert.Equal(t, "closed", status[0].BreakerState)
	assert.NotEmpty(t, status[0].ID)

	assert.Equal(t, "ml-service", status[1].Provider)
	assert.True(t, status[1].Available)
	assert.Empty(t, status[1].Kind)
}

func TestStatusWithoutStore(t *testing.T) {
	svc := NewService(NewEngine(NewLockedRand(1)), nil, nil)
	assert.Nil(t, svc.Status())
	_, err := svc.History("gemini", time.Time{}, time.Now())
	assert.Error(t, err)
}

func TestPredictionErrorMatching(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewPredictionError("ml-service", ErrNetworkFailure, cause)

	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, "ml-service: network failure: dial tcp: connection refused", err.Error())

	var pe *PredictionError
	require.ErrorAs(t, errors.Join(errors.New("other"), err), &pe)
	assert.Equal(t, "ml-service", pe.Provider)

	assert.Equal(t, ErrMalformedResponse, KindOf(NewPredictionError("x", ErrMalformedResponse, nil)))
	assert.Equal(t, ErrNetworkFailure, KindOf(errors.New("boom")))
	assert.Nil(t, KindOf(nil))
}

func TestEstimateValidateAndDefaults(t *testing.T) {
	est := remoteEstimate()
	assert.NoError(t, est.Validate())
	assert.NoError(t, NewEngine(NewLockedRand(1)).Estimate(defaultInput()).Validate())

	est.ConfidenceScore = 120
	assert.Error(t, est.Validate())

	est = remoteEstimate()
	est.YieldPrediction = -1
	assert.Error(t, est.Validate())

	est = remoteEstimate()
	est.MarketAnalysis.Trend = "Sideways"
	assert.Error(t, est.Validate())

	est = remoteEstimate()
	est.MarketAnalysis.EstimatedPrice = ""
	assert.Error(t, est.Validate())

	est = remoteEstimate()
	est.Recommendations[0].Impact = "Critical"
	assert.Error(t, est.Validate())

	filled := Estimate{}.WithDefaults()
	assert.Equal(t, []string{FactorNoneDetected}, filled.LimitingFactors)
	assert.Equal(t, []Recommendation{recMaintainPractices}, filled.Recommendations)
}
