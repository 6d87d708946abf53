package yield

import (
	"errors"
	"fmt"
)

// Failure kinds a remote predictor may report. The orchestrator treats all
// of them the same way: the local engine answers instead.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrNetworkFailure    = errors.New("network failure")
	ErrMalformedResponse = errors.New("malformed response")
)

// PredictionError describes why a remote predictor produced no estimate.
type PredictionError struct {
	Provider string
	Kind     error
	Err      error
}

// NewPredictionError wraps err as a failure of the given kind.
func NewPredictionError(provider string, kind, err error) *PredictionError {
	return &PredictionError{Provider: provider, Kind: kind, Err: err}
}

func (e *PredictionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *PredictionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the failure kind of err, defaulting to ErrNetworkFailure for
// errors that did not come from a predictor.
func KindOf(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMissingCredential):
		return ErrMissingCredential
	case errors.Is(err, ErrMalformedResponse):
		return ErrMalformedResponse
	default:
		return ErrNetworkFailure
	}
}
