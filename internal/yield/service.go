package yield

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Attempt records one remote predictor call made for an outcome.
type Attempt struct {
	Provider string
	Err      error
	Latency  time.Duration
}

// Outcome is the result of a prediction request. Estimate is always set.
type Outcome struct {
	ID       string
	Estimate Estimate
	Source   string
	Fallback bool
	Attempts []Attempt
}

// Service orchestrates remote predictors, the local engine and the probe
// status store.
type Service struct {
	engine     *Engine
	predictors []Predictor
	store      StatusStore
}

// NewService creates a new Service. predictors are tried in order.
func NewService(engine *Engine, predictors []Predictor, store StatusStore) *Service {
	return &Service{
		engine:     engine,
		predictors: predictors,
		store:      store,
	}
}

// Insights derives the dashboard data for an estimate using the engine's
// generator.
func (s *Service) Insights(est Estimate) Insights {
	return BuildInsights(est, s.engine.rng)
}

// Predict asks each remote predictor in turn and falls back to the local
// engine when none succeeds. It never fails.
func (s *Service) Predict(ctx context.Context, in EnvironmentalInput) Outcome {
	out := Outcome{ID: uuid.NewString()}

	est, source, err := s.predictRemote(ctx, in, &out.Attempts)
	if err != nil {
		log.Printf("WARN: prediction %s: remote predictors unavailable (%v); using %s", out.ID, err, s.engine.Name())
		est = s.engine.Estimate(in)
		source = s.engine.Name()
		out.Fallback = true
	}

	est.InputSummary = in
	out.Estimate = est
	out.Source = source
	return out
}

// predictRemote returns the first successful remote estimate, or the joined
// errors of every attempt.
func (s *Service) predictRemote(ctx context.Context, in EnvironmentalInput, attempts *[]Attempt) (Estimate, string, error) {
	if len(s.predictors) == 0 {
		return Estimate{}, "", NewPredictionError("remote", ErrMissingCredential, errors.New("no remote predictors configured"))
	}

	var errs []error
	for _, p := range s.predictors {
		if ctx.Err() != nil {
			errs = append(errs, NewPredictionError(p.Name(), ErrNetworkFailure, ctx.Err()))
			break
		}

		start := time.Now()
		est, err := p.Predict(ctx, in)
		*attempts = append(*attempts, Attempt{Provider: p.Name(), Err: err, Latency: time.Since(start)})
		if err == nil {
			return est, p.Name(), nil
		}

		log.Printf("WARN: provider %s prediction failed: %v", p.Name(), err)
		errs = append(errs, err)
	}
	return Estimate{}, "", errors.Join(errs...)
}

// Probe checks every predictor that supports it concurrently and records the
// results in the status store.
func (s *Service) Probe(ctx context.Context) []ProbeResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []ProbeResult
	)

	for _, p := range s.predictors {
		prober, ok := p.(Prober)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(p Predictor, prober Prober) {
			defer wg.Done()

			start := time.Now()
			err := prober.Probe(ctx)
			res := ProbeResult{
				ID:        uuid.NewString(),
				Provider:  p.Name(),
				Timestamp: time.Now().UTC(),
				Available: err == nil,
				Latency:   time.Since(start),
			}
			if err != nil {
				res.Kind = KindOf(err).Error()
				res.Error = err.Error()
				log.Printf("provider %s probe failed: %v", p.Name(), err)
			}
			if br, ok := p.(BreakerReporter); ok {
				res.BreakerState = br.BreakerState()
			}

			if s.store != nil {
				s.store.SaveProbe(res)
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(p, prober)
	}

	wg.Wait()
	return results
}

// Status returns the latest probe result for every provider that has one.
func (s *Service) Status() []ProbeResult {
	if s.store == nil {
		return nil
	}
	var out []ProbeResult
	for _, name := range s.store.Providers() {
		res, err := s.store.GetLatest(name)
		if err != nil {
			continue
		}
		out = append(out, res)
	}
	return out
}

// History delegates to the underlying store.
func (s *Service) History(provider string, from, to time.Time) ([]ProbeResult, error) {
	if s.store == nil {
		return nil, errors.New("status store not configured")
	}
	return s.store.GetRange(provider, from, to)
}
